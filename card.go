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

// Package mcard implements the card model of a content-addressed store. A
// card binds three pieces: the canonical content bytes, a hex digest of
// those bytes under a named algorithm, and a global-time stamp that
// records both the algorithm and the moment of ingestion.
package mcard

import (
	"fmt"
	"strings"

	"github.com/benkoo/mcard/digest"
	"github.com/benkoo/mcard/gtime"
)

// Card is an immutable content-addressed record. Cards are constructed by
// New/NewWithAlgorithm for fresh content or by FromRow when loading a
// persisted row; they are never modified afterwards.
type Card struct {
	content     []byte
	hash        string
	algorithm   digest.Algorithm
	gTime       string
	contentType string // detected on reconstruction only
	textual     bool
}

// New constructs a card from content under the default algorithm.
func New(content Content) (*Card, error) {
	return NewWithAlgorithm(content, digest.Default)
}

// NewWithAlgorithm normalizes content to bytes, digests it under alg and
// stamps the card with the current wall clock.
func NewWithAlgorithm(content Content, alg digest.Algorithm) (*Card, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: no content given", ErrInvalidContent)
	}
	data, err := content.normalize()
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: content normalized to zero bytes", ErrEmptyContent)
	}
	if !digest.Valid(alg) {
		return nil, fmt.Errorf("%w: %q", digest.ErrUnknownAlgorithm, alg)
	}
	sum, err := digest.Sum(alg, data)
	if err != nil {
		return nil, fmt.Errorf("digest content: %w", err)
	}
	stamp, err := gtime.Stamp(alg)
	if err != nil {
		return nil, fmt.Errorf("stamp card: %w", err)
	}
	_, textual := content.(Text)
	return &Card{
		content:   append([]byte(nil), data...),
		hash:      sum,
		algorithm: alg,
		gTime:     stamp,
		textual:   textual,
	}, nil
}

// FromRow reconstructs a card from a persisted row. The stored hash and
// stamp are taken as authoritative; the content is not re-digested. A
// coarse content type is detected from the bytes and attached.
func FromRow(content []byte, hash, gTime string) (*Card, error) {
	if content == nil {
		return nil, fmt.Errorf("%w: row content must be a byte string", ErrInvalidContent)
	}
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: row content is empty", ErrInvalidContent)
	}
	if hash == "" {
		return nil, fmt.Errorf("%w: row has no hash", ErrInvalidArgument)
	}
	if gTime == "" {
		return nil, fmt.Errorf("%w: row has no g_time", ErrInvalidArgument)
	}
	alg, _, _, err := gtime.Parse(gTime)
	if err != nil {
		return nil, fmt.Errorf("%w: parse g_time: %v", ErrInvalidArgument, err)
	}
	return &Card{
		content:     append([]byte(nil), content...),
		hash:        hash,
		algorithm:   alg,
		gTime:       gTime,
		contentType: DetectContentType(content),
	}, nil
}

// Bytes returns the canonical content bytes. The returned slice is shared
// with the card and must not be modified.
func (c *Card) Bytes() []byte {
	return c.content
}

// Text returns the content decoded as text. It succeeds only when the
// card was constructed from text or its detected content type is text/*.
func (c *Card) Text() (string, error) {
	if c.textual || strings.HasPrefix(c.contentType, "text/") {
		return string(c.content), nil
	}
	return "", fmt.Errorf("%w: content type %q", ErrNotText, c.contentType)
}

// Hash returns the lowercase hex digest of the content bytes.
func (c *Card) Hash() string {
	return c.hash
}

// Algorithm returns the algorithm the content was digested under.
func (c *Card) Algorithm() digest.Algorithm {
	return c.algorithm
}

// GTime returns the card's global-time stamp. Its algorithm field always
// equals Algorithm().
func (c *Card) GTime() string {
	return c.gTime
}

// ContentType returns the detected MIME tag for reconstructed cards, or
// "" for freshly constructed ones.
func (c *Card) ContentType() string {
	return c.contentType
}

// Equals reports digest equality. Two cards with the same hash are
// considered equal even though a cryptographic collision could make their
// bytes differ; resolving that case is the collection's job.
func (c *Card) Equals(other *Card) bool {
	return other != nil && c.hash == other.hash
}

// ToMap returns the card as a plain map, suitable for serialization. The
// content is included as a string when it is textual and as raw bytes
// otherwise.
func (c *Card) ToMap() map[string]any {
	m := map[string]any{
		"hash":           c.hash,
		"hash_algorithm": string(c.algorithm),
		"g_time":         c.gTime,
	}
	if text, err := c.Text(); err == nil {
		m["content"] = text
	} else {
		m["content"] = c.content
	}
	if c.contentType != "" {
		m["content_type"] = c.contentType
	}
	return m
}
