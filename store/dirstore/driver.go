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
	"os"

	"github.com/benkoo/mcard/store"
)

// Driver is the store.Driver for directory-backed stores. A URI is
// supported if it names a directory, or nothing at all (Create makes the
// directory).
var Driver store.Driver = dirDriver{}

type dirDriver struct{}

func (dirDriver) Supported(uri string) bool {
	fi, err := os.Stat(uri)
	if err != nil {
		return os.IsNotExist(err)
	}
	return fi.IsDir()
}

func (dirDriver) Open(uri string) (store.Engine, error) {
	return Open(uri)
}

func (dirDriver) Create(uri string) error {
	return Create(uri)
}

func init() {
	store.RegisterDriver(Driver)
}
