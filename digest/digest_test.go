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

package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizes(t *testing.T) {
	for _, test := range []struct {
		algorithm Algorithm
		size      int
	}{
		{MD5, 16},
		{SHA1, 20},
		{SHA224, 28},
		{SHA256, 32},
		{SHA384, 48},
		{SHA512, 64},
	} {
		t.Run(string(test.algorithm), func(t *testing.T) {
			assert.Equal(t, test.size, test.algorithm.Size())
			assert.True(t, Valid(test.algorithm))
		})
	}
	assert.Equal(t, 0, Algorithm("crc32").Size())
	assert.False(t, Valid("crc32"))
}

func TestSum(t *testing.T) {
	for _, test := range []struct {
		name      string
		algorithm Algorithm
		data      string
		expected  string
	}{
		{"Sha256HelloWorld", SHA256, "Hello, World!", "dffd6021bb2bd5b0af676290809ec3a53191dd81c7f70a4b28688a362182986f"},
		{"Md5Abc", MD5, "abc", "900150983cd24fb0d6963f7d28e17f72"},
	} {
		t.Run(test.name, func(t *testing.T) {
			sum, err := Sum(test.algorithm, []byte(test.data))
			require.NoError(t, err)
			assert.Equal(t, test.expected, sum)
			assert.Len(t, sum, 2*test.algorithm.Size())
		})
	}
}

func TestSumDeterministic(t *testing.T) {
	for _, alg := range Algorithms() {
		t.Run(string(alg), func(t *testing.T) {
			first, err := Sum(alg, []byte("same bytes"))
			require.NoError(t, err)
			second, err := Sum(alg, []byte("same bytes"))
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestSumUnknownAlgorithm(t *testing.T) {
	_, err := Sum("blake2b", []byte("data"))
	assert.ErrorIs(t, err, ErrUnknownAlgorithm)
}

func TestUpgrade(t *testing.T) {
	for _, test := range []struct {
		from, to Algorithm
	}{
		{MD5, SHA1},
		{SHA1, SHA224},
		{SHA224, SHA256},
		{SHA256, SHA384},
		{SHA384, SHA512},
	} {
		t.Run(string(test.from), func(t *testing.T) {
			upgraded, err := Upgrade(test.from)
			require.NoError(t, err)
			assert.Equal(t, test.to, upgraded)
			assert.Greater(t, upgraded.Size(), test.from.Size(), "upgrade must strictly lengthen the digest")
		})
	}

	t.Run("Strongest", func(t *testing.T) {
		_, err := Upgrade(SHA512)
		assert.ErrorIs(t, err, ErrNoStrongerAlgorithm)
	})
	t.Run("Unknown", func(t *testing.T) {
		_, err := Upgrade("whirlpool")
		assert.ErrorIs(t, err, ErrUnknownAlgorithm)
	})
}

func TestAlgorithmsOrder(t *testing.T) {
	algs := Algorithms()
	require.Len(t, algs, 6)
	for i := 1; i < len(algs); i++ {
		assert.Greater(t, algs[i].Size(), algs[i-1].Size(), "%s should be stronger than %s", algs[i], algs[i-1])
	}
	assert.Equal(t, SHA256, Default)
}
