// SPDX-License-Identifier: Apache-2.0
/*
 * mcard: a content-addressed store for binary cards
 * Copyright (C) 2023-2026 Ben Koo
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package sqlitestore implements the reference relational engine on top
// of a SQLite database file. Rows live in a single card table keyed by
// hash; insertion order is the implicit rowid order, which SQLite keeps
// stable across reads in the absence of writes.
package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/apex/log"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/benkoo/mcard"
	"github.com/benkoo/mcard/store"
)

// URIScheme prefixes driver URIs for this engine, as in
// "sqlite:/var/lib/mcard/cards.db".
const URIScheme = "sqlite:"

// schema is the persisted layout. The trigger duplicates the primary-key
// uniqueness guard so that the conflict surfaces with a stable message
// even if the table is recreated without the constraint.
const schema = `
CREATE TABLE IF NOT EXISTS card (
	hash    TEXT PRIMARY KEY,
	g_time  TEXT NOT NULL,
	content BLOB NOT NULL
);
CREATE TRIGGER IF NOT EXISTS ensure_unique_hash
BEFORE INSERT ON card
FOR EACH ROW
WHEN EXISTS (SELECT 1 FROM card WHERE hash = NEW.hash)
BEGIN
	SELECT RAISE(ABORT, 'Card with this hash already exists');
END;
`

// Engine is a SQLite-backed store.
type Engine struct {
	path string
	db   *sql.DB
}

var _ store.Engine = (*Engine)(nil)

// Open opens (creating if necessary) the SQLite store at path.
func Open(path string) (*Engine, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite store %s: %w", path, err)
	}
	// A single connection serializes Add at the engine boundary, so two
	// racing inserts of the same hash cannot both pass the uniqueness
	// guard.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema: %w", err)
	}
	return &Engine{path: path, db: db}, nil
}

// Add inserts the card's row. A uniqueness violation, whether from the
// primary key or the ensure_unique_hash trigger, surfaces as
// ErrHashConflict.
func (e *Engine) Add(ctx context.Context, card *mcard.Card) error {
	_, err := e.db.ExecContext(ctx,
		`INSERT INTO card (hash, g_time, content) VALUES (?, ?, ?)`,
		card.Hash(), card.GTime(), card.Bytes())
	if err != nil {
		if isConflict(err) {
			return fmt.Errorf("add %s: %w", card.Hash(), store.ErrHashConflict)
		}
		return fmt.Errorf("add %s: %w", card.Hash(), err)
	}
	return nil
}

func isConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "already exists") ||
		strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "constraint failed")
}

// Get reconstructs the card stored under hash.
func (e *Engine) Get(ctx context.Context, hash string) (*mcard.Card, error) {
	var gTime string
	var content []byte
	err := e.db.QueryRowContext(ctx,
		`SELECT g_time, content FROM card WHERE hash = ?`, hash).
		Scan(&gTime, &content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", hash, store.ErrNotExist)
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", hash, err)
	}
	return mcard.FromRow(content, hash, gTime)
}

// Delete removes the row under hash, reporting whether it existed.
func (e *Engine) Delete(ctx context.Context, hash string) (bool, error) {
	res, err := e.db.ExecContext(ctx, `DELETE FROM card WHERE hash = ?`, hash)
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", hash, err)
	}
	return n > 0, nil
}

// Update replaces the content bytes bound to hash without re-digesting.
func (e *Engine) Update(ctx context.Context, hash string, content []byte) (bool, error) {
	res, err := e.db.ExecContext(ctx,
		`UPDATE card SET content = ? WHERE hash = ?`, content, hash)
	if err != nil {
		return false, fmt.Errorf("update %s: %w", hash, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update %s: %w", hash, err)
	}
	return n > 0, nil
}

// Count returns the number of stored rows.
func (e *Engine) Count(ctx context.Context) (int, error) {
	var n int
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// Clear removes all rows.
func (e *Engine) Clear(ctx context.Context) error {
	if _, err := e.db.ExecContext(ctx, `DELETE FROM card`); err != nil {
		return fmt.Errorf("clear cards: %w", err)
	}
	return nil
}

// GetPage returns one page of cards in insertion (rowid) order.
func (e *Engine) GetPage(ctx context.Context, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	return e.page(ctx, pageNumber, pageSize, nil)
}

// GetAll is an alias for GetPage.
func (e *Engine) GetAll(ctx context.Context, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	return e.GetPage(ctx, pageNumber, pageSize)
}

// SearchByContent returns the page of cards whose content contains query.
// Matching happens on the raw blob, so the query bytes match regardless
// of whether the stored content is valid UTF-8.
func (e *Engine) SearchByContent(ctx context.Context, query string, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	return e.page(ctx, pageNumber, pageSize, []byte(query))
}

// page runs the shared count + window query. A nil needle selects every
// row.
func (e *Engine) page(ctx context.Context, pageNumber, pageSize int, needle []byte) (*store.Page[*mcard.Card], error) {
	if err := store.CheckPageArgs(pageNumber, pageSize); err != nil {
		return nil, err
	}

	where := ""
	countArgs := []any{}
	if needle != nil {
		where = ` WHERE instr(content, ?) > 0`
		countArgs = append(countArgs, needle)
	}

	var total int
	if err := e.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM card`+where, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count matching cards: %w", err)
	}
	if err := store.CheckPageRange(total, pageNumber, pageSize); err != nil {
		return nil, err
	}

	args := append(countArgs, pageSize, (pageNumber-1)*pageSize)
	rows, err := e.db.QueryContext(ctx,
		`SELECT hash, g_time, content FROM card`+where+` ORDER BY rowid LIMIT ? OFFSET ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("select card page: %w", err)
	}
	defer rows.Close()

	var cards []*mcard.Card
	for rows.Next() {
		var hash, gTime string
		var content []byte
		if err := rows.Scan(&hash, &gTime, &content); err != nil {
			return nil, fmt.Errorf("scan card row: %w", err)
		}
		card, err := mcard.FromRow(content, hash, gTime)
		if err != nil {
			return nil, fmt.Errorf("reconstruct %s: %w", hash, err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate card rows: %w", err)
	}
	return store.NewPage(cards, total, pageNumber, pageSize), nil
}

// Close closes the underlying database.
func (e *Engine) Close() error {
	if err := e.db.Close(); err != nil {
		return fmt.Errorf("close sqlite store %s: %w", e.path, err)
	}
	log.Debugf("closed sqlite store %s", e.path)
	return nil
}

type sqliteDriver struct{}

func (sqliteDriver) Supported(uri string) bool {
	return strings.HasPrefix(uri, URIScheme)
}

func (sqliteDriver) Open(uri string) (store.Engine, error) {
	return Open(strings.TrimPrefix(uri, URIScheme))
}

func (sqliteDriver) Create(uri string) error {
	engine, err := Open(strings.TrimPrefix(uri, URIScheme))
	if err != nil {
		return err
	}
	return engine.Close()
}

func init() {
	store.RegisterDriver(sqliteDriver{})
}
