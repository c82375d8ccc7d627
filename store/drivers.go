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
	"sync"
)

// Driver describes an engine back-end that can be selected by URI. The
// intention is for hosts to open whatever engine a configuration string
// names without linking the decision into their own code.
type Driver interface {
	// Supported returns whether the resource at the given URI is
	// supported by the driver (used for auto-detection). If two drivers
	// support the same URI, the earliest registered driver takes
	// precedence.
	//
	// Note that this is not a validation of the URI -- if the URI refers
	// to an invalid or non-existent resource it is expected that the URI
	// is "supported".
	Supported(uri string) bool

	// Open opens an engine for the given URI.
	Open(uri string) (Engine, error)

	// Create initializes a new empty store at the given URI.
	Create(uri string) error
}

var (
	driversMu sync.RWMutex
	drivers   []Driver
)

// RegisterDriver adds a driver to the global set. This is intended to be
// called from the init function of packages that implement Engine,
// similar to the database/sql drivers.
func RegisterDriver(driver Driver) {
	driversMu.Lock()
	drivers = append(drivers, driver)
	driversMu.Unlock()
}

func findSupported(uri string) Driver {
	driversMu.RLock()
	defer driversMu.RUnlock()
	for _, driver := range drivers {
		if driver.Supported(uri) {
			return driver
		}
	}
	return nil
}

// Open returns an engine created by the first registered driver that
// supports uri.
func Open(uri string) (Engine, error) {
	driver := findSupported(uri)
	if driver == nil {
		return nil, fmt.Errorf("drivers: unsupported uri: %s", uri)
	}
	return driver.Open(uri)
}

// Create initializes a new store via the first registered driver that
// supports uri.
func Create(uri string) error {
	driver := findSupported(uri)
	if driver == nil {
		return fmt.Errorf("drivers: unsupported uri: %s", uri)
	}
	return driver.Create(uri)
}
