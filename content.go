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

package mcard

import (
	"encoding/json"
	"fmt"
)

// Content is the tagged input accepted by the card constructor. All
// variants normalize to a canonical byte string before any digesting or
// stamping happens.
type Content interface {
	// normalize returns the canonical byte representation of the content.
	// It does not enforce non-emptiness; the constructor does.
	normalize() ([]byte, error)
}

// Bytes is raw binary content, used as-is.
type Bytes []byte

func (b Bytes) normalize() ([]byte, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil byte content", ErrInvalidContent)
	}
	return b, nil
}

// Text is textual content, normalized to its UTF-8 encoding.
type Text string

func (t Text) normalize() ([]byte, error) {
	return []byte(t), nil
}

// Object is structured content, normalized to JSON with a canonical key
// order that is stable across runs. Empty objects are rejected.
type Object struct {
	Value any
}

func (o Object) normalize() ([]byte, error) {
	if o.Value == nil {
		return nil, fmt.Errorf("%w: nil object content", ErrInvalidContent)
	}
	data, err := json.Marshal(o.Value)
	if err != nil {
		return nil, fmt.Errorf("%w: serialize object: %v", ErrInvalidContent, err)
	}
	switch string(data) {
	case "null":
		return nil, fmt.Errorf("%w: object serializes to null", ErrInvalidContent)
	case "{}":
		return nil, fmt.Errorf("%w: empty object", ErrInvalidContent)
	}
	return data, nil
}
