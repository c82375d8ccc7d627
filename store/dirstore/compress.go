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

package dirstore

import (
	"fmt"
	"sync"
)

// Compressor is a card-blob compression codec. The codec used for a blob
// is recorded in the store index so that any registered codec can be
// decoded later, regardless of the engine's current write configuration.
type Compressor interface {
	// Name is the codec name recorded in the index.
	Name() string

	// Compress returns the on-disk representation of plain.
	Compress(plain []byte) ([]byte, error)

	// Decompress returns the card bytes for the on-disk representation.
	Decompress(compressed []byte) ([]byte, error)
}

var (
	compressorsMu sync.RWMutex
	compressors   = map[string]Compressor{}
)

// RegisterCompressor adds codec to the set the engine can decode. Returns
// an error if a codec with the same name is already registered.
func RegisterCompressor(codec Compressor) error {
	compressorsMu.Lock()
	defer compressorsMu.Unlock()
	if _, ok := compressors[codec.Name()]; ok {
		return fmt.Errorf("blob compressor %s already registered", codec.Name())
	}
	compressors[codec.Name()] = codec
	return nil
}

// MustRegisterCompressor is like RegisterCompressor but panics on error.
// Intended for use in init functions.
func MustRegisterCompressor(codec Compressor) {
	if err := RegisterCompressor(codec); err != nil {
		panic(err)
	}
}

// GetCompressor looks up a registered codec by name, returning nil if
// none is registered under that name.
func GetCompressor(name string) Compressor {
	compressorsMu.RLock()
	defer compressorsMu.RUnlock()
	return compressors[name]
}

// Noop stores blobs verbatim. It is the default for new stores, since
// card content is served byte-for-byte and is usually small.
var Noop Compressor = noopCodec{}

type noopCodec struct{}

func (noopCodec) Name() string { return "none" }

func (noopCodec) Compress(plain []byte) ([]byte, error) { return plain, nil }

func (noopCodec) Decompress(compressed []byte) ([]byte, error) { return compressed, nil }

func init() {
	MustRegisterCompressor(Noop)
}
