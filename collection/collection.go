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

// Package collection enforces the ingestion invariants of the card store
// on top of a store engine: duplicate detection, collision detection with
// automatic algorithm upgrade, and emission of event cards recording both
// occurrences.
package collection

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"

	"github.com/benkoo/mcard"
	"github.com/benkoo/mcard/digest"
	"github.com/benkoo/mcard/event"
	"github.com/benkoo/mcard/store"
)

// ErrUpgradeFailed is returned when the configured algorithm hierarchy
// produced an upgrade whose digest is not strictly longer than the
// colliding one.
var ErrUpgradeFailed = errors.New("algorithm upgrade did not produce a stronger digest")

// searchChunkSize is the page size used internally when scanning the
// engine for hash matches.
const searchChunkSize = 250

// Option configures a collection.
type Option func(*Collection)

// WithRemoveWeakerOnCollision makes the collision branch delete the
// original weaker-algorithm card once the upgraded card and its event
// card are durably stored. By default both versions of the content remain
// discoverable under their respective digests.
func WithRemoveWeakerOnCollision(remove bool) Option {
	return func(c *Collection) {
		c.removeWeaker = remove
	}
}

// Collection wraps a store engine with the ingestion protocol. It holds
// no mutable state of its own beyond the engine reference.
type Collection struct {
	engine       store.Engine
	removeWeaker bool
}

// New returns a collection over engine.
func New(engine store.Engine, opts ...Option) *Collection {
	c := &Collection{engine: engine}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open opens an engine for uri via the registered store drivers and wraps
// it in a collection.
func Open(uri string, opts ...Option) (*Collection, error) {
	engine, err := store.Open(uri)
	if err != nil {
		return nil, err
	}
	return New(engine, opts...), nil
}

// Add ingests card and returns the hash the caller should remember:
// the card's own hash when it was inserted, or the hash of the event card
// recording a duplicate or collision. On any error no event card has been
// written for this attempt.
func (c *Collection) Add(ctx context.Context, card *mcard.Card) (string, error) {
	if card == nil {
		return "", fmt.Errorf("%w: no card given", mcard.ErrInvalidArgument)
	}
	existing, err := c.engine.Get(ctx, card.Hash())
	if errors.Is(err, store.ErrNotExist) {
		return c.insert(ctx, card)
	}
	if err != nil {
		return "", fmt.Errorf("look up %s: %w", card.Hash(), err)
	}
	if bytes.Equal(existing.Bytes(), card.Bytes()) {
		return c.recordDuplicate(ctx, existing)
	}
	return c.recordCollision(ctx, card, existing)
}

// insert writes card through the engine. The engine's uniqueness guard is
// redundant with the lookup in Add but must agree with it: a conflict
// here means a racing writer got there first, so the ingestion is
// re-dispatched against the now-existing row.
func (c *Collection) insert(ctx context.Context, card *mcard.Card) (string, error) {
	if err := c.engine.Add(ctx, card); err != nil {
		if errors.Is(err, store.ErrHashConflict) {
			return c.Add(ctx, card)
		}
		return "", fmt.Errorf("store %s: %w", card.Hash(), err)
	}
	return card.Hash(), nil
}

// recordDuplicate stores a duplicate event card referencing existing and
// returns the event card's hash. The stored card is untouched.
func (c *Collection) recordDuplicate(ctx context.Context, existing *mcard.Card) (string, error) {
	log.Debugf("duplicate content for card %s", existing.Hash())
	payload, err := event.Duplicate(existing)
	if err != nil {
		return "", err
	}
	eventCard, err := mcard.New(mcard.Bytes(payload))
	if err != nil {
		return "", fmt.Errorf("wrap duplicate event: %w", err)
	}
	return c.insert(ctx, eventCard)
}

// recordCollision handles two different byte strings sharing a digest:
// the incoming content is re-stored under the next stronger algorithm,
// then a collision event card referencing both versions is written. The
// event card is written strictly after the upgraded card, so a
// cancellation in between leaves an upgraded card with no event record,
// which is permitted.
func (c *Collection) recordCollision(ctx context.Context, incoming, existing *mcard.Card) (string, error) {
	log.Warnf("hash collision on %s under %s", existing.Hash(), existing.Algorithm())

	upgradedAlg, err := digest.Upgrade(incoming.Algorithm())
	if err != nil {
		return "", err
	}
	upgraded, err := mcard.NewWithAlgorithm(mcard.Bytes(incoming.Bytes()), upgradedAlg)
	if err != nil {
		return "", fmt.Errorf("re-digest under %s: %w", upgradedAlg, err)
	}
	// Guard against an ill-configured hierarchy: the upgrade must change
	// the algorithm and strictly lengthen the digest.
	if upgraded.Algorithm() == incoming.Algorithm() ||
		upgraded.Algorithm().Size() <= incoming.Algorithm().Size() {
		return "", fmt.Errorf("%w: %s -> %s", ErrUpgradeFailed, incoming.Algorithm(), upgraded.Algorithm())
	}

	if err := c.engine.Add(ctx, upgraded); err != nil {
		if errors.Is(err, store.ErrHashConflict) {
			return c.Add(ctx, upgraded)
		}
		return "", fmt.Errorf("store upgraded card %s: %w", upgraded.Hash(), err)
	}

	payload, err := event.Collision(upgraded, existing)
	if err != nil {
		return "", err
	}
	eventCard, err := mcard.New(mcard.Bytes(payload))
	if err != nil {
		return "", fmt.Errorf("wrap collision event: %w", err)
	}
	eventHash, err := c.insert(ctx, eventCard)
	if err != nil {
		return "", err
	}

	if c.removeWeaker {
		if _, err := c.engine.Delete(ctx, existing.Hash()); err != nil {
			// Both versions plus the event card are durably stored at this
			// point; a failed cleanup loses nothing.
			log.Warnf("failed to remove weaker card %s: %v", existing.Hash(), err)
		}
	}
	return eventHash, nil
}

// Get returns the card stored under hash.
func (c *Collection) Get(ctx context.Context, hash string) (*mcard.Card, error) {
	return c.engine.Get(ctx, hash)
}

// Delete removes the card stored under hash, reporting whether it
// existed.
func (c *Collection) Delete(ctx context.Context, hash string) (bool, error) {
	return c.engine.Delete(ctx, hash)
}

// Update replaces the content bound to hash without re-digesting. The
// stored row no longer satisfies the digest invariant afterwards; the
// operation exists for host-application convenience and should be used
// with care.
func (c *Collection) Update(ctx context.Context, hash string, content []byte) (bool, error) {
	return c.engine.Update(ctx, hash, content)
}

// Count returns the number of stored cards, event cards included.
func (c *Collection) Count(ctx context.Context) (int, error) {
	return c.engine.Count(ctx)
}

// Clear removes all stored cards.
func (c *Collection) Clear(ctx context.Context) error {
	return c.engine.Clear(ctx)
}

// GetPage returns one page of cards in insertion order.
func (c *Collection) GetPage(ctx context.Context, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	if err := store.CheckPageArgs(pageNumber, pageSize); err != nil {
		return nil, err
	}
	return c.engine.GetPage(ctx, pageNumber, pageSize)
}

// GetAll is an alias for GetPage.
func (c *Collection) GetAll(ctx context.Context, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	return c.GetPage(ctx, pageNumber, pageSize)
}

// SearchByHash returns the page of stored cards whose hash equals hash.
// The filtering happens collection-side over the engine's enumeration.
func (c *Collection) SearchByHash(ctx context.Context, hash string, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	if hash == "" {
		return nil, fmt.Errorf("%w: empty hash", mcard.ErrInvalidArgument)
	}
	if err := store.CheckPageArgs(pageNumber, pageSize); err != nil {
		return nil, err
	}
	var matches []*mcard.Card
	for chunk := 1; ; chunk++ {
		page, err := c.engine.GetAll(ctx, chunk, searchChunkSize)
		if err != nil {
			return nil, fmt.Errorf("scan page %d: %w", chunk, err)
		}
		for _, card := range page.Items {
			if card.Hash() == hash {
				matches = append(matches, card)
			}
		}
		if !page.HasNext {
			break
		}
	}
	return store.Paginate(matches, pageNumber, pageSize)
}

// SearchByContent returns the page of cards whose content bytes contain
// query.
func (c *Collection) SearchByContent(ctx context.Context, query string, pageNumber, pageSize int) (*store.Page[*mcard.Card], error) {
	if query == "" {
		return nil, fmt.Errorf("%w: empty search string", mcard.ErrInvalidArgument)
	}
	if err := store.CheckPageArgs(pageNumber, pageSize); err != nil {
		return nil, err
	}
	return c.engine.SearchByContent(ctx, query, pageNumber, pageSize)
}
