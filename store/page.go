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
	"fmt"

	"github.com/benkoo/mcard"
)

// Page is the pagination envelope returned by enumeration and search.
// The derived fields always satisfy:
//
//	TotalPages  = ceil(TotalItems/PageSize) when TotalItems > 0, else 0
//	HasNext     iff PageNumber < TotalPages
//	HasPrevious iff PageNumber > 1
type Page[T any] struct {
	Items        []T  `json:"items"`
	TotalItems   int  `json:"total_items"`
	PageNumber   int  `json:"page_number"`
	PageSize     int  `json:"page_size"`
	TotalPages   int  `json:"total_pages"`
	HasNext      bool `json:"has_next"`
	HasPrevious  bool `json:"has_previous"`
	NextPage     *int `json:"next_page"`
	PreviousPage *int `json:"previous_page"`
}

// NewPage builds the envelope for one page of items, computing every
// derived field from totalItems, pageNumber and pageSize.
func NewPage[T any](items []T, totalItems, pageNumber, pageSize int) *Page[T] {
	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + pageSize - 1) / pageSize
	}
	p := &Page[T]{
		Items:       items,
		TotalItems:  totalItems,
		PageNumber:  pageNumber,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		HasNext:     pageNumber < totalPages,
		HasPrevious: pageNumber > 1,
	}
	if p.HasNext {
		next := pageNumber + 1
		p.NextPage = &next
	}
	if p.HasPrevious {
		previous := pageNumber - 1
		p.PreviousPage = &previous
	}
	return p
}

// Paginate slices one page out of items. Page arguments below 1 fail with
// ErrInvalidArgument; a page number past the end of a non-empty slice
// fails with ErrPageOutOfRange.
func Paginate[T any](items []T, pageNumber, pageSize int) (*Page[T], error) {
	if err := CheckPageArgs(pageNumber, pageSize); err != nil {
		return nil, err
	}
	total := len(items)
	if err := CheckPageRange(total, pageNumber, pageSize); err != nil {
		return nil, err
	}
	start := (pageNumber - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return NewPage(items[start:end], total, pageNumber, pageSize), nil
}

// CheckPageArgs validates that pagination arguments are at least 1.
func CheckPageArgs(pageNumber, pageSize int) error {
	if pageNumber < 1 {
		return fmt.Errorf("%w: page number %d", mcard.ErrInvalidArgument, pageNumber)
	}
	if pageSize < 1 {
		return fmt.Errorf("%w: page size %d", mcard.ErrInvalidArgument, pageSize)
	}
	return nil
}

// CheckPageRange validates pageNumber against the total item count.
func CheckPageRange(totalItems, pageNumber, pageSize int) error {
	if totalItems == 0 {
		return nil
	}
	totalPages := (totalItems + pageSize - 1) / pageSize
	if pageNumber > totalPages {
		return fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageNumber, totalPages)
	}
	return nil
}
