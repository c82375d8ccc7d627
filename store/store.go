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

// Package store defines the narrow persistence contract the collection
// relies on, the pagination envelope returned by enumeration, and a
// registry of engine drivers. Implementations may persist in any medium
// provided they keep rows keyed uniquely by hash, make writes durable
// before Add returns, and enumerate in stable insertion order.
package store

import (
	"context"
	"errors"

	"github.com/benkoo/mcard"
)

// Exposed errors.
var (
	// ErrNotExist is returned by Get when no row is stored under the
	// requested hash.
	ErrNotExist = errors.New("card does not exist in store")

	// ErrHashConflict is returned by Add when a row with the same hash is
	// already present. Interpreting the conflict (duplicate vs collision)
	// is the collection's job, not the engine's.
	ErrHashConflict = errors.New("card with this hash already exists")

	// ErrPageOutOfRange is returned when a page number exceeds the total
	// number of pages of a non-empty result.
	ErrPageOutOfRange = errors.New("page number is out of range")
)

// Engine is the persistence back-end for a card collection. All
// operations may cross an I/O boundary and therefore take a context;
// engines must serialize Add so that racing inserts of the same hash
// cannot both succeed.
type Engine interface {
	// Add inserts the card's (hash, g_time, content) row. The write is
	// durable before Add returns. Returns ErrHashConflict if a row with
	// the same hash already exists.
	Add(ctx context.Context, card *mcard.Card) error

	// Get returns the card reconstructed from the stored row, or
	// ErrNotExist.
	Get(ctx context.Context, hash string) (*mcard.Card, error)

	// Delete removes the row. It is idempotent: deleting a missing hash
	// returns false, not an error.
	Delete(ctx context.Context, hash string) (bool, error)

	// Update replaces the content bytes bound to hash, leaving the hash
	// key untouched. The digest is not re-verified; the stored row no
	// longer satisfies the digest invariant afterwards. Returns false if
	// no such row exists.
	Update(ctx context.Context, hash string, content []byte) (bool, error)

	// Count returns the exact number of stored rows.
	Count(ctx context.Context) (int, error)

	// Clear removes all rows.
	Clear(ctx context.Context) error

	// GetPage returns the requested page of cards in insertion order. The
	// order is stable across calls in the absence of writes.
	GetPage(ctx context.Context, pageNumber, pageSize int) (*Page[*mcard.Card], error)

	// GetAll is an alias for GetPage kept for collection usage.
	GetAll(ctx context.Context, pageNumber, pageSize int) (*Page[*mcard.Card], error)

	// SearchByContent returns the page of cards whose content bytes
	// contain query as a substring.
	SearchByContent(ctx context.Context, query string, pageNumber, pageSize int) (*Page[*mcard.Card], error)

	// Close releases all resources held by the engine. Subsequent
	// operations may fail.
	Close() error
}
