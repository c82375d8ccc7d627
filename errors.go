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

import "errors"

// Exposed errors.
var (
	// ErrInvalidContent is returned when card content is missing, of an
	// unsupported kind, or serializes to an empty object.
	ErrInvalidContent = errors.New("invalid card content")

	// ErrEmptyContent is returned when content normalizes to zero bytes.
	ErrEmptyContent = errors.New("card content is empty")

	// ErrInvalidArgument is returned for malformed caller arguments such
	// as an empty hash, an empty search string, or page arguments below 1.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNotText is returned by Card.Text for cards whose content is not
	// textual.
	ErrNotText = errors.New("card content is not text")
)
