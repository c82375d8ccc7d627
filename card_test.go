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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benkoo/mcard/digest"
	"github.com/benkoo/mcard/gtime"
)

func TestNewTextCard(t *testing.T) {
	card, err := NewWithAlgorithm(Text("Hello, World!"), digest.SHA256)
	require.NoError(t, err)

	assert.Equal(t, []byte("Hello, World!"), card.Bytes())
	assert.Equal(t, "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f", card.Hash())
	assert.Len(t, card.Hash(), 64)
	assert.Equal(t, digest.SHA256, card.Algorithm())
	assert.True(t, strings.HasPrefix(card.GTime(), "sha256|"), "g_time %q should begin with the algorithm", card.GTime())

	text, err := card.Text()
	require.NoError(t, err)
	assert.Equal(t, "Hello, World!", text)
}

func TestNewObjectCard(t *testing.T) {
	card, err := New(Object{Value: map[string]string{"key": "value"}})
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"key":"value"}`), card.Bytes())
	assert.Equal(t, digest.Default, card.Algorithm())
}

func TestNewObjectCardCanonicalOrder(t *testing.T) {
	first, err := New(Object{Value: map[string]int{"b": 2, "a": 1, "c": 3}})
	require.NoError(t, err)
	second, err := New(Object{Value: map[string]int{"c": 3, "a": 1, "b": 2}})
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1,"b":2,"c":3}`), first.Bytes())
	assert.Equal(t, first.Hash(), second.Hash(), "key order must be canonical across runs")
}

func TestNewCardErrors(t *testing.T) {
	for _, test := range []struct {
		name        string
		content     Content
		algorithm   digest.Algorithm
		expectedErr error
	}{
		{"NilContent", nil, digest.Default, ErrInvalidContent},
		{"NilBytes", Bytes(nil), digest.Default, ErrInvalidContent},
		{"EmptyObject", Object{Value: map[string]string{}}, digest.Default, ErrInvalidContent},
		{"NilObjectValue", Object{}, digest.Default, ErrInvalidContent},
		{"EmptyText", Text(""), digest.Default, ErrEmptyContent},
		{"EmptyBytes", Bytes{}, digest.Default, ErrEmptyContent},
		{"UnknownAlgorithm", Text("data"), "sha3-512", digest.ErrUnknownAlgorithm},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := NewWithAlgorithm(test.content, test.algorithm)
			assert.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestNewCardDeterministicDigest(t *testing.T) {
	for _, alg := range digest.Algorithms() {
		t.Run(string(alg), func(t *testing.T) {
			first, err := NewWithAlgorithm(Bytes("same input"), alg)
			require.NoError(t, err)
			second, err := NewWithAlgorithm(Bytes("same input"), alg)
			require.NoError(t, err)
			assert.Equal(t, first.Hash(), second.Hash())
			assert.Equal(t, first.Algorithm(), second.Algorithm())
		})
	}
}

func TestCardStampMatchesAlgorithm(t *testing.T) {
	card, err := NewWithAlgorithm(Text("invariant"), digest.SHA1)
	require.NoError(t, err)
	assert.Equal(t, string(card.Algorithm()), gtime.AlgorithmOf(card.GTime()))
}

func TestCardEquals(t *testing.T) {
	a, err := New(Text("same"))
	require.NoError(t, err)
	b, err := New(Text("same"))
	require.NoError(t, err)
	c, err := New(Text("different"))
	require.NoError(t, err)

	assert.True(t, a.Equals(b), "equality is digest equality")
	assert.True(t, b.Equals(a))
	assert.False(t, a.Equals(c))
	assert.False(t, a.Equals(nil))
}

func TestCardTextOnBinary(t *testing.T) {
	card, err := New(Bytes{0x00, 0x01, 0x02})
	require.NoError(t, err)
	_, err = card.Text()
	assert.ErrorIs(t, err, ErrNotText)
}

func TestFromRow(t *testing.T) {
	card, err := FromRow([]byte("hello row"), "abc123", "md5|2023-01-01T12:00:00.000000Z|UTC")
	require.NoError(t, err)

	assert.Equal(t, []byte("hello row"), card.Bytes())
	assert.Equal(t, "abc123", card.Hash())
	assert.Equal(t, digest.MD5, card.Algorithm(), "algorithm comes from the stamp, not from re-digesting")
	assert.Equal(t, "md5|2023-01-01T12:00:00.000000Z|UTC", card.GTime())
	assert.Equal(t, "text/plain", card.ContentType())

	text, err := card.Text()
	require.NoError(t, err)
	assert.Equal(t, "hello row", text)
}

func TestFromRowDetectsMagic(t *testing.T) {
	content := append([]byte("\x89PNG\r\n\x1a\n"), []byte("fake image payload")...)
	card, err := FromRow(content, "abc", "md5|2023-01-01T12:00:00.000000Z|REGION")
	require.NoError(t, err)
	assert.Equal(t, "image/png", card.ContentType())

	_, err = card.Text()
	assert.ErrorIs(t, err, ErrNotText)
}

func TestFromRowErrors(t *testing.T) {
	for _, test := range []struct {
		name        string
		content     []byte
		hash        string
		gTime       string
		expectedErr error
	}{
		{"NilContent", nil, "abc", "md5|2023-01-01T12:00:00.000000Z|UTC", ErrInvalidContent},
		{"EmptyContent", []byte{}, "abc", "md5|2023-01-01T12:00:00.000000Z|UTC", ErrInvalidContent},
		{"EmptyHash", []byte("data"), "", "md5|2023-01-01T12:00:00.000000Z|UTC", ErrInvalidArgument},
		{"EmptyGTime", []byte("data"), "abc", "", ErrInvalidArgument},
		{"MalformedGTime", []byte("data"), "abc", "md5|not-a-time|UTC", ErrInvalidArgument},
		{"UnknownStampAlgorithm", []byte("data"), "abc", "rot13|2023-01-01T12:00:00.000000Z|UTC", ErrInvalidArgument},
	} {
		t.Run(test.name, func(t *testing.T) {
			_, err := FromRow(test.content, test.hash, test.gTime)
			assert.ErrorIs(t, err, test.expectedErr)
		})
	}
}

func TestCardToMap(t *testing.T) {
	t.Run("Text", func(t *testing.T) {
		card, err := New(Text("mapped"))
		require.NoError(t, err)
		m := card.ToMap()
		assert.Equal(t, "mapped", m["content"])
		assert.Equal(t, card.Hash(), m["hash"])
		assert.Equal(t, "sha256", m["hash_algorithm"])
		assert.Equal(t, card.GTime(), m["g_time"])
		assert.NotContains(t, m, "content_type")
	})
	t.Run("Reconstructed", func(t *testing.T) {
		card, err := FromRow([]byte{0x1f, 0x8b, 0x08, 0x00}, "abc", "sha256|2023-01-01T12:00:00.000000Z|UTC")
		require.NoError(t, err)
		m := card.ToMap()
		assert.Equal(t, "application/gzip", m["content_type"])
		assert.Equal(t, []byte{0x1f, 0x8b, 0x08, 0x00}, m["content"])
	})
}
