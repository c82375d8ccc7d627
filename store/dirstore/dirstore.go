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

// Package dirstore implements a directory-backed store engine. Every card
// lives in its own blob file under cards/<algorithm>/<hash>; insertion
// order is kept in an index file that is only ever replaced atomically,
// so readers always see either the old or the new index, never a torn
// one. An advisory file lock serializes writers, which keeps the
// engine's uniqueness guard meaningful across processes on one machine.
package dirstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/apex/log"
	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/gofrs/flock"

	"github.com/benkoo/mcard"
	"github.com/benkoo/mcard/gtime"
	"github.com/benkoo/mcard/store"
)

const (
	// layoutFile identifies a directory as an mcard store and records the
	// layout version.
	layoutFile = "mcard-layout"

	// indexFile holds the insertion-order index of stored cards.
	indexFile = "index.json"

	// cardsDirectory is the directory that contains the blob files.
	cardsDirectory = "cards"

	// lockFile is the advisory lock serializing writers.
	lockFile = ".mcard-lock"

	// layoutVersion is written into layoutFile on Create.
	layoutVersion = "1.0.0"
)

// ErrInvalidLayout is returned when a directory is not an mcard store.
var ErrInvalidLayout = errors.New("invalid mcard store layout")

type layout struct {
	Version string `json:"version"`
}

// indexEntry is one row of the store index. The blob path is derived from
// the g_time's algorithm field and the hash.
type indexEntry struct {
	Hash     string `json:"hash"`
	GTime    string `json:"g_time"`
	Compress string `json:"compress"`
}

type index struct {
	Entries []indexEntry `json:"entries"`
}

// Option configures a directory engine.
type Option func(*Engine)

// WithCompressor selects the codec used for newly written blobs. Already
// stored blobs keep the codec recorded in the index. Defaults to Noop.
func WithCompressor(codec Compressor) Option {
	return func(e *Engine) {
		e.codec = codec
	}
}

// Engine is a directory-backed store.
type Engine struct {
	path  string
	lock  *flock.Flock
	codec Compressor
}

var _ store.Engine = (*Engine)(nil)

// Create initializes an empty store at path. The directory is created if
// it does not exist and must not already contain a store.
func Create(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	layoutPath := filepath.Join(path, layoutFile)
	if _, err := os.Stat(layoutPath); err == nil {
		return fmt.Errorf("create store %s: layout file already exists", path)
	}
	data, err := json.Marshal(layout{Version: layoutVersion})
	if err != nil {
		return fmt.Errorf("serialize layout: %w", err)
	}
	if err := os.WriteFile(layoutPath, data, 0o644); err != nil {
		return fmt.Errorf("write layout file: %w", err)
	}
	if err := writeFileAtomic(path, filepath.Join(path, indexFile), mustMarshalIndex(index{})); err != nil {
		return fmt.Errorf("write empty index: %w", err)
	}
	if err := os.MkdirAll(filepath.Join(path, cardsDirectory), 0o755); err != nil {
		return fmt.Errorf("create cards directory: %w", err)
	}
	return nil
}

// Open opens the store at path, which must have been initialized by
// Create.
func Open(path string, opts ...Option) (*Engine, error) {
	data, err := os.ReadFile(filepath.Join(path, layoutFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrInvalidLayout
		}
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	var l layout
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("open store %s: parse layout: %w", path, err)
	}
	if l.Version != layoutVersion {
		return nil, fmt.Errorf("open store %s: %w: unsupported version %q", path, ErrInvalidLayout, l.Version)
	}
	e := &Engine{
		path:  path,
		lock:  flock.New(filepath.Join(path, lockFile)),
		codec: Noop,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Add writes the card's blob and appends it to the index, failing with
// ErrHashConflict if the hash is already indexed.
func (e *Engine) Add(_ context.Context, card *mcard.Card) error {
	return e.withWriteLock(func() error {
		idx, err := e.loadIndex()
		if err != nil {
			return err
		}
		for _, entry := range idx.Entries {
			if entry.Hash == card.Hash() {
				return fmt.Errorf("add %s: %w", card.Hash(), store.ErrHashConflict)
			}
		}
		if err := e.writeBlob(string(card.Algorithm()), card.Hash(), card.Bytes(), e.codec); err != nil {
			return err
		}
		idx.Entries = append(idx.Entries, indexEntry{
			Hash:     card.Hash(),
			GTime:    card.GTime(),
			Compress: e.codec.Name(),
		})
		return e.saveIndex(idx)
	})
}

// Get reconstructs the card stored under hash.
func (e *Engine) Get(_ context.Context, hash string) (card *mcard.Card, err error) {
	err = e.withReadLock(func() error {
		idx, err := e.loadIndex()
		if err != nil {
			return err
		}
		entry, ok := findEntry(idx, hash)
		if !ok {
			return fmt.Errorf("get %s: %w", hash, store.ErrNotExist)
		}
		card, err = e.readCard(entry)
		return err
	})
	return card, err
}

// Delete removes the blob and index entry under hash, reporting whether
// it existed.
func (e *Engine) Delete(_ context.Context, hash string) (existed bool, err error) {
	err = e.withWriteLock(func() error {
		idx, err := e.loadIndex()
		if err != nil {
			return err
		}
		var removed indexEntry
		var found bool
		kept := make([]indexEntry, 0, len(idx.Entries))
		for _, entry := range idx.Entries {
			if entry.Hash == hash && !found {
				removed, found = entry, true
				continue
			}
			kept = append(kept, entry)
		}
		if !found {
			return nil
		}
		existed = true
		idx.Entries = kept
		if err := e.saveIndex(idx); err != nil {
			return err
		}
		blobPath, err := e.blobPath(gtime.AlgorithmOf(removed.GTime), hash)
		if err != nil {
			return err
		}
		if err := os.Remove(blobPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			// The index no longer references the blob, so a leftover file
			// is garbage rather than corruption.
			log.Warnf("failed to remove blob %s: %v", blobPath, err)
		}
		return nil
	})
	return existed, err
}

// Update replaces the blob bound to hash without re-digesting. The index
// entry keeps its position and codec.
func (e *Engine) Update(_ context.Context, hash string, content []byte) (existed bool, err error) {
	err = e.withWriteLock(func() error {
		idx, err := e.loadIndex()
		if err != nil {
			return err
		}
		entry, ok := findEntry(idx, hash)
		if !ok {
			return nil
		}
		existed = true
		codec := GetCompressor(entry.Compress)
		if codec == nil {
			return fmt.Errorf("update %s: unknown blob compressor %q", hash, entry.Compress)
		}
		return e.writeBlob(gtime.AlgorithmOf(entry.GTime), hash, content, codec)
	})
	return existed, err
}

// Count returns the number of indexed cards.
func (e *Engine) Count(_ context.Context) (n int, err error) {
	err = e.withReadLock(func() error {
		idx, err := e.loadIndex()
		if err != nil {
			return err
		}
		n = len(idx.Entries)
		return nil
	})
	return n, err
}

// Clear removes every card and resets the index.
func (e *Engine) Clear(_ context.Context) error {
	return e.withWriteLock(func() error {
		if err := e.saveIndex(index{}); err != nil {
			return err
		}
		cardsPath := filepath.Join(e.path, cardsDirectory)
		if err := os.RemoveAll(cardsPath); err != nil {
			return fmt.Errorf("remove cards directory: %w", err)
		}
		if err := os.MkdirAll(cardsPath, 0o755); err != nil {
			return fmt.Errorf("recreate cards directory: %w", err)
		}
		return nil
	})
}

// GetPage returns one page of cards in insertion order. Only blobs inside
// the requested window are read from disk.
func (e *Engine) GetPage(_ context.Context, pageNumber, pageSize int) (page *store.Page[*mcard.Card], err error) {
	err = e.withReadLock(func() error {
		idx, err := e.loadIndex()
		if err != nil {
			return err
		}
		entryPage, err := store.Paginate(idx.Entries, pageNumber, pageSize)
		if err != nil {
			return err
		}
		cards := make([]*mcard.Card, 0, len(entryPage.Items))
		for _, entry := range entryPage.Items {
			card, err := e.readCard(entry)
			if err != nil {
				return err
			}
			cards = append(cards, card)
		}
		page = store.NewPage(cards, entryPage.TotalItems, pageNumber, pageSize)
		return nil
	})
	return page, err
}

// GetAll is an alias for GetPage.
func (e *Engine) GetAll(ctx context.Context, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	return e.GetPage(ctx, pageNumber, pageSize)
}

// SearchByContent returns the page of cards whose bytes contain query.
// Every blob has to be read to decide membership; only the matches are
// kept.
func (e *Engine) SearchByContent(_ context.Context, query string, pageNumber, pageSize int) (page *store.Page[*mcard.Card], err error) {
	needle := []byte(query)
	err = e.withReadLock(func() error {
		idx, err := e.loadIndex()
		if err != nil {
			return err
		}
		var matches []*mcard.Card
		for _, entry := range idx.Entries {
			card, err := e.readCard(entry)
			if err != nil {
				return err
			}
			if bytes.Contains(card.Bytes(), needle) {
				matches = append(matches, card)
			}
		}
		page, err = store.Paginate(matches, pageNumber, pageSize)
		return err
	})
	return page, err
}

// Close releases the engine. The advisory lock is per-operation, so there
// is nothing to unlock here.
func (e *Engine) Close() error {
	log.Debugf("closed directory store %s", e.path)
	return nil
}

func (e *Engine) withWriteLock(fn func() error) error {
	if err := e.lock.Lock(); err != nil {
		return fmt.Errorf("lock store %s: %w", e.path, err)
	}
	defer func() {
		if err := e.lock.Unlock(); err != nil {
			log.Warnf("failed to unlock store %s: %v", e.path, err)
		}
	}()
	return fn()
}

func (e *Engine) withReadLock(fn func() error) error {
	if err := e.lock.RLock(); err != nil {
		return fmt.Errorf("lock store %s: %w", e.path, err)
	}
	defer func() {
		if err := e.lock.Unlock(); err != nil {
			log.Warnf("failed to unlock store %s: %v", e.path, err)
		}
	}()
	return fn()
}

func (e *Engine) loadIndex() (index, error) {
	data, err := os.ReadFile(filepath.Join(e.path, indexFile))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrInvalidLayout
		}
		return index{}, fmt.Errorf("read index: %w", err)
	}
	var idx index
	if err := json.Unmarshal(data, &idx); err != nil {
		return index{}, fmt.Errorf("parse index: %w", err)
	}
	return idx, nil
}

// saveIndex replaces the index atomically: encode to a temporary file in
// the store root, then rename over the old index.
func (e *Engine) saveIndex(idx index) error {
	data, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("serialize index: %w", err)
	}
	if err := writeFileAtomic(e.path, filepath.Join(e.path, indexFile), data); err != nil {
		return fmt.Errorf("write index: %w", err)
	}
	return nil
}

func (e *Engine) blobPath(algorithm, hash string) (string, error) {
	path, err := securejoin.SecureJoin(e.path, filepath.Join(cardsDirectory, algorithm, hash))
	if err != nil {
		return "", fmt.Errorf("resolve blob path for %s: %w", hash, err)
	}
	return path, nil
}

func (e *Engine) writeBlob(algorithm, hash string, content []byte, codec Compressor) error {
	blobPath, err := e.blobPath(algorithm, hash)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(blobPath), 0o755); err != nil {
		return fmt.Errorf("create blob directory: %w", err)
	}
	compressed, err := codec.Compress(content)
	if err != nil {
		return fmt.Errorf("compress blob %s: %w", hash, err)
	}
	if err := writeFileAtomic(e.path, blobPath, compressed); err != nil {
		return fmt.Errorf("write blob %s: %w", hash, err)
	}
	return nil
}

func (e *Engine) readCard(entry indexEntry) (*mcard.Card, error) {
	blobPath, err := e.blobPath(gtime.AlgorithmOf(entry.GTime), entry.Hash)
	if err != nil {
		return nil, err
	}
	compressed, err := os.ReadFile(blobPath)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", entry.Hash, err)
	}
	codec := GetCompressor(entry.Compress)
	if codec == nil {
		return nil, fmt.Errorf("blob %s: unknown compressor %q", entry.Hash, entry.Compress)
	}
	content, err := codec.Decompress(compressed)
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", entry.Hash, err)
	}
	return mcard.FromRow(content, entry.Hash, entry.GTime)
}

func findEntry(idx index, hash string) (indexEntry, bool) {
	for _, entry := range idx.Entries {
		if entry.Hash == hash {
			return entry, true
		}
	}
	return indexEntry{}, false
}

// writeFileAtomic writes data to a temporary file in dir and renames it
// over path.
func writeFileAtomic(dir, path string, data []byte) error {
	fh, err := os.CreateTemp(dir, ".mcard-tmp-")
	if err != nil {
		return fmt.Errorf("create temporary file: %w", err)
	}
	tempPath := fh.Name()
	if _, err := fh.Write(data); err != nil {
		_ = fh.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("write temporary file: %w", err)
	}
	if err := fh.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("close temporary file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("rename temporary file: %w", err)
	}
	return nil
}

func mustMarshalIndex(idx index) []byte {
	data, err := json.Marshal(idx)
	if err != nil {
		panic(err)
	}
	return data
}
