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

package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benkoo/mcard"
	"github.com/benkoo/mcard/digest"
	"github.com/benkoo/mcard/gtime"
)

func TestDuplicate(t *testing.T) {
	original, err := mcard.New(mcard.Text("some secret payload"))
	require.NoError(t, err)

	data, err := Duplicate(original)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, TypeDuplicate, payload.EventType)
	assert.True(t, gtime.IsISOFormat(payload.Timestamp))
	assert.Equal(t, []string{original.Hash()}, payload.Hashes)
	assert.Equal(t, "sha256", payload.Algorithm)
	assert.Empty(t, payload.Algorithms)
	assert.NotEmpty(t, payload.Context)

	assert.NotContains(t, string(data), "some secret payload",
		"payloads must not leak raw content bytes")
}

func TestCollision(t *testing.T) {
	existing, err := mcard.FromRow([]byte("first body"), "deadbeef", "sha256|2023-01-01T12:00:00.000000Z|UTC")
	require.NoError(t, err)
	upgraded, err := mcard.NewWithAlgorithm(mcard.Bytes("second body"), digest.SHA384)
	require.NoError(t, err)

	data, err := Collision(upgraded, existing)
	require.NoError(t, err)

	var payload Payload
	require.NoError(t, json.Unmarshal(data, &payload))
	assert.Equal(t, TypeCollision, payload.EventType)
	assert.True(t, gtime.IsISOFormat(payload.Timestamp))
	assert.Equal(t, []string{existing.Hash(), upgraded.Hash()}, payload.Hashes)
	assert.Equal(t, []string{"sha256", "sha384"}, payload.Algorithms)
	assert.Empty(t, payload.Algorithm)
	assert.NotEmpty(t, payload.Context)

	assert.NotContains(t, string(data), "first body")
	assert.NotContains(t, string(data), "second body")
}

func TestEventNilCards(t *testing.T) {
	_, err := Duplicate(nil)
	assert.ErrorIs(t, err, mcard.ErrInvalidArgument)

	card, err := mcard.New(mcard.Text("x"))
	require.NoError(t, err)
	_, err = Collision(nil, card)
	assert.ErrorIs(t, err, mcard.ErrInvalidArgument)
	_, err = Collision(card, nil)
	assert.ErrorIs(t, err, mcard.ErrInvalidArgument)
}

func TestPayloadRequiredFields(t *testing.T) {
	original, err := mcard.New(mcard.Text("field check"))
	require.NoError(t, err)
	data, err := Duplicate(original)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, field := range []string{"event_type", "timestamp", "hashes", "algorithm", "context"} {
		assert.Contains(t, raw, field)
	}
}
