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

// Package digest implements the closed set of hash algorithms used to
// address cards, ordered by digest length so that a collision against one
// algorithm can be escaped by upgrading to the next stronger one. The
// strongest algorithm, sha512, has no upgrade.
package digest

import (
	"crypto"
	"encoding/hex"
	"errors"
	"fmt"

	// Link in the implementations for every algorithm in the closed set.
	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"
)

// Algorithm is the name of a supported digest algorithm.
type Algorithm string

const (
	MD5    Algorithm = "md5"
	SHA1   Algorithm = "sha1"
	SHA224 Algorithm = "sha224"
	SHA256 Algorithm = "sha256"
	SHA384 Algorithm = "sha384"
	SHA512 Algorithm = "sha512"
)

// Default is the algorithm used when the caller does not pick one.
const Default = SHA256

// Exposed errors.
var (
	// ErrUnknownAlgorithm is returned when an algorithm name is outside
	// the closed set.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")

	// ErrNoStrongerAlgorithm is returned by Upgrade when there is nothing
	// stronger left to upgrade to.
	ErrNoStrongerAlgorithm = errors.New("no stronger hash algorithm available")
)

// hierarchy is the total order over the closed set, weakest first. The
// position in this slice is the source of truth for Upgrade.
var hierarchy = []Algorithm{MD5, SHA1, SHA224, SHA256, SHA384, SHA512}

var hashes = map[Algorithm]crypto.Hash{
	MD5:    crypto.MD5,
	SHA1:   crypto.SHA1,
	SHA224: crypto.SHA224,
	SHA256: crypto.SHA256,
	SHA384: crypto.SHA384,
	SHA512: crypto.SHA512,
}

// Valid returns whether a names an algorithm in the closed set.
func Valid(a Algorithm) bool {
	_, ok := hashes[a]
	return ok
}

// Size returns the digest length of a in bytes, or 0 if a is not a
// supported algorithm.
func (a Algorithm) Size() int {
	h, ok := hashes[a]
	if !ok {
		return 0
	}
	return h.Size()
}

// Sum computes the lowercase hex digest of data under a.
func Sum(a Algorithm, data []byte) (string, error) {
	h, ok := hashes[a]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, a)
	}
	hasher := h.New()
	_, _ = hasher.Write(data)
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// Upgrade returns the next stronger algorithm after a, or
// ErrNoStrongerAlgorithm if a is already the strongest in the hierarchy.
func Upgrade(a Algorithm) (Algorithm, error) {
	for i, candidate := range hierarchy {
		if candidate != a {
			continue
		}
		if i == len(hierarchy)-1 {
			return "", fmt.Errorf("%w: %q is the strongest algorithm", ErrNoStrongerAlgorithm, a)
		}
		return hierarchy[i+1], nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, a)
}

// Algorithms returns the closed set in hierarchy order, weakest first.
func Algorithms() []Algorithm {
	algs := make([]Algorithm, len(hierarchy))
	copy(algs, hierarchy)
	return algs
}
