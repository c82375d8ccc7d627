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

// Package memory implements an in-process store engine. It is the engine
// of choice for tests and for hosts that do not need persistence.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sync"

	"github.com/benkoo/mcard"
	"github.com/benkoo/mcard/store"
)

// URI is the driver URI of the memory engine.
const URI = "mem:"

type row struct {
	gTime   string
	content []byte
}

// Engine is a map-backed store. Rows are kept in insertion order; every
// read sees a point-in-time snapshot taken under the read lock.
type Engine struct {
	mu    sync.RWMutex
	rows  map[string]*row
	order []string
}

var _ store.Engine = (*Engine)(nil)

// New returns an empty memory engine.
func New() *Engine {
	return &Engine{rows: make(map[string]*row)}
}

// Add inserts the card's row, failing with ErrHashConflict if the hash is
// already present.
func (e *Engine) Add(_ context.Context, card *mcard.Card) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[card.Hash()]; ok {
		return fmt.Errorf("add %s: %w", card.Hash(), store.ErrHashConflict)
	}
	e.rows[card.Hash()] = &row{
		gTime:   card.GTime(),
		content: append([]byte(nil), card.Bytes()...),
	}
	e.order = append(e.order, card.Hash())
	return nil
}

// Get reconstructs the card stored under hash.
func (e *Engine) Get(_ context.Context, hash string) (*mcard.Card, error) {
	e.mu.RLock()
	r, ok := e.rows[hash]
	var content []byte
	var gTime string
	if ok {
		content, gTime = r.content, r.gTime
	}
	e.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("get %s: %w", hash, store.ErrNotExist)
	}
	return mcard.FromRow(content, hash, gTime)
}

// Delete removes the row under hash, reporting whether it existed.
func (e *Engine) Delete(_ context.Context, hash string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.rows[hash]; !ok {
		return false, nil
	}
	delete(e.rows, hash)
	for i, h := range e.order {
		if h == hash {
			e.order = append(e.order[:i], e.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// Update replaces the content bytes bound to hash without re-digesting.
func (e *Engine) Update(_ context.Context, hash string, content []byte) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	r, ok := e.rows[hash]
	if !ok {
		return false, nil
	}
	r.content = append([]byte(nil), content...)
	return true, nil
}

// Count returns the number of stored rows.
func (e *Engine) Count(_ context.Context) (int, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.order), nil
}

// Clear removes all rows.
func (e *Engine) Clear(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = make(map[string]*row)
	e.order = nil
	return nil
}

// GetPage returns one page of cards in insertion order.
func (e *Engine) GetPage(_ context.Context, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	cards, err := e.snapshot(nil)
	if err != nil {
		return nil, err
	}
	return store.Paginate(cards, pageNumber, pageSize)
}

// GetAll is an alias for GetPage.
func (e *Engine) GetAll(ctx context.Context, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	return e.GetPage(ctx, pageNumber, pageSize)
}

// SearchByContent returns the page of cards whose bytes contain query.
func (e *Engine) SearchByContent(_ context.Context, query string, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	needle := []byte(query)
	cards, err := e.snapshot(func(content []byte) bool {
		return bytes.Contains(content, needle)
	})
	if err != nil {
		return nil, err
	}
	return store.Paginate(cards, pageNumber, pageSize)
}

// Close is a no-op for the memory engine.
func (e *Engine) Close() error {
	return nil
}

// snapshot reconstructs the matching cards in insertion order under the
// read lock.
func (e *Engine) snapshot(match func([]byte) bool) ([]*mcard.Card, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	cards := make([]*mcard.Card, 0, len(e.order))
	for _, hash := range e.order {
		r := e.rows[hash]
		if match != nil && !match(r.content) {
			continue
		}
		card, err := mcard.FromRow(r.content, hash, r.gTime)
		if err != nil {
			return nil, fmt.Errorf("reconstruct %s: %w", hash, err)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

type memoryDriver struct{}

func (memoryDriver) Supported(uri string) bool {
	return uri == URI
}

func (memoryDriver) Open(string) (store.Engine, error) {
	return New(), nil
}

func (memoryDriver) Create(string) error {
	return nil
}

func init() {
	store.RegisterDriver(memoryDriver{})
}
