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

package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benkoo/mcard"
)

func TestNewPageMath(t *testing.T) {
	for _, test := range []struct {
		name                 string
		totalItems           int
		pageNumber, pageSize int
		totalPages           int
		hasNext, hasPrevious bool
	}{
		{"Empty", 0, 1, 10, 0, false, false},
		{"SinglePartialPage", 3, 1, 10, 1, false, false},
		{"ExactPage", 10, 1, 10, 1, false, false},
		{"FirstOfMany", 25, 1, 10, 3, true, false},
		{"Middle", 25, 2, 10, 3, true, true},
		{"Last", 25, 3, 10, 3, false, true},
		{"SizeOne", 2, 1, 1, 2, true, false},
	} {
		t.Run(test.name, func(t *testing.T) {
			page := NewPage([]string{}, test.totalItems, test.pageNumber, test.pageSize)
			assert.Equal(t, test.totalPages, page.TotalPages)
			assert.Equal(t, test.hasNext, page.HasNext)
			assert.Equal(t, test.hasPrevious, page.HasPrevious)
			if test.hasNext {
				require.NotNil(t, page.NextPage)
				assert.Equal(t, test.pageNumber+1, *page.NextPage)
			} else {
				assert.Nil(t, page.NextPage)
			}
			if test.hasPrevious {
				require.NotNil(t, page.PreviousPage)
				assert.Equal(t, test.pageNumber-1, *page.PreviousPage)
			} else {
				assert.Nil(t, page.PreviousPage)
			}
		})
	}
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("FirstPage", func(t *testing.T) {
		page, err := Paginate(items, 1, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, page.Items)
		assert.Equal(t, 7, page.TotalItems)
		assert.Equal(t, 3, page.TotalPages)
	})
	t.Run("LastPartialPage", func(t *testing.T) {
		page, err := Paginate(items, 3, 3)
		require.NoError(t, err)
		assert.Equal(t, []int{7}, page.Items)
		assert.False(t, page.HasNext)
		assert.True(t, page.HasPrevious)
	})
	t.Run("OutOfRange", func(t *testing.T) {
		_, err := Paginate(items, 4, 3)
		assert.ErrorIs(t, err, ErrPageOutOfRange)
	})
	t.Run("EmptyAnyPage", func(t *testing.T) {
		page, err := Paginate([]int{}, 5, 3)
		require.NoError(t, err, "out-of-range only applies to non-empty results")
		assert.Empty(t, page.Items)
		assert.Equal(t, 0, page.TotalPages)
	})
	t.Run("BadPageNumber", func(t *testing.T) {
		_, err := Paginate(items, 0, 3)
		assert.ErrorIs(t, err, mcard.ErrInvalidArgument)
	})
	t.Run("BadPageSize", func(t *testing.T) {
		_, err := Paginate(items, 1, 0)
		assert.ErrorIs(t, err, mcard.ErrInvalidArgument)
	})
}
