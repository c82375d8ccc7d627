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

// Package event produces the JSON payloads recorded when the collection
// detects a duplicate ingestion or a digest collision. Payloads carry the
// hashes and algorithms needed to trace the occurrence but never any raw
// content bytes.
package event

import (
	"encoding/json"
	"fmt"

	"github.com/benkoo/mcard"
	"github.com/benkoo/mcard/gtime"
)

// Type names an event kind.
type Type string

const (
	// TypeDuplicate records an ingestion attempt whose content was
	// byte-identical to an already stored card.
	TypeDuplicate Type = "duplicate"

	// TypeCollision records two different byte strings producing the same
	// digest under the same algorithm.
	TypeCollision Type = "collision"
)

// Payload is the wire form of an event. Algorithm is set for duplicate
// events, Algorithms for collision events.
type Payload struct {
	EventType  Type     `json:"event_type"`
	Timestamp  string   `json:"timestamp"`
	Hashes     []string `json:"hashes"`
	Algorithm  string   `json:"algorithm,omitempty"`
	Algorithms []string `json:"algorithms,omitempty"`
	Context    string   `json:"context"`
}

// Duplicate produces the payload for a duplicate ingestion of original.
func Duplicate(original *mcard.Card) ([]byte, error) {
	if original == nil {
		return nil, fmt.Errorf("%w: duplicate event needs the original card", mcard.ErrInvalidArgument)
	}
	return marshal(Payload{
		EventType: TypeDuplicate,
		Timestamp: gtime.NowISO(),
		Hashes:    []string{original.Hash()},
		Algorithm: string(original.Algorithm()),
		Context:   fmt.Sprintf("duplicate content for card %s", original.Hash()),
	})
}

// Collision produces the payload for a collision between existing and the
// card stored under the upgraded algorithm.
func Collision(upgraded, existing *mcard.Card) ([]byte, error) {
	if upgraded == nil || existing == nil {
		return nil, fmt.Errorf("%w: collision event needs both cards", mcard.ErrInvalidArgument)
	}
	return marshal(Payload{
		EventType:  TypeCollision,
		Timestamp:  gtime.NowISO(),
		Hashes:     []string{existing.Hash(), upgraded.Hash()},
		Algorithms: []string{string(existing.Algorithm()), string(upgraded.Algorithm())},
		Context:    fmt.Sprintf("hash collision under %s, content re-stored under %s", existing.Algorithm(), upgraded.Algorithm()),
	})
}

func marshal(p Payload) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("serialize %s event: %w", p.EventType, err)
	}
	return data, nil
}
