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

// Package gtime produces and parses the global-time stamps attached to
// cards. A stamp has the exact wire form
//
//	ALG|YYYY-MM-DDTHH:MM:SS.ffffffZ|REGION
//
// where ALG is the algorithm the card's content was digested under. For a
// fixed algorithm, lexicographic order of the ISO field is chronological
// order.
package gtime

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/benkoo/mcard/digest"
)

// Separator splits the three stamp fields. Parsers split on the first two
// separators only; the region tag may not contain one.
const Separator = "|"

// isoLayout is the canonical timestamp layout: microsecond precision,
// trailing Z for UTC.
const isoLayout = "2006-01-02T15:04:05.000000Z07:00"

// regionEnv optionally overrides the process-wide region tag at startup.
const regionEnv = "MCARD_REGION"

// ErrMalformed is returned when a stamp does not have three fields.
var ErrMalformed = errors.New("malformed g_time stamp")

var (
	regionMu sync.RWMutex
	region   = "UTC"
)

func init() {
	if v := os.Getenv(regionEnv); v != "" {
		region = v
	}
}

// Region returns the process-wide region tag.
func Region() string {
	regionMu.RLock()
	defer regionMu.RUnlock()
	return region
}

// SetRegion replaces the process-wide region tag used by Stamp. The tag
// must not contain the field separator.
func SetRegion(tag string) error {
	if strings.Contains(tag, Separator) {
		return fmt.Errorf("region tag %q must not contain %q", tag, Separator)
	}
	regionMu.Lock()
	region = tag
	regionMu.Unlock()
	return nil
}

// NowISO returns the current UTC wall clock in the canonical ISO layout.
func NowISO() string {
	return time.Now().UTC().Format(isoLayout)
}

// Stamp returns a stamp for alg using the current wall clock and the
// process-wide region tag.
func Stamp(alg digest.Algorithm) (string, error) {
	if !digest.Valid(alg) {
		return "", fmt.Errorf("%w: %q", digest.ErrUnknownAlgorithm, alg)
	}
	return string(alg) + Separator + NowISO() + Separator + Region(), nil
}

// Parse splits g into its three fields and validates them.
func Parse(g string) (alg digest.Algorithm, timestamp, regionTag string, err error) {
	fields := strings.SplitN(g, Separator, 3)
	if len(fields) != 3 {
		return "", "", "", fmt.Errorf("%w: %q", ErrMalformed, g)
	}
	alg = digest.Algorithm(fields[0])
	if !digest.Valid(alg) {
		return "", "", "", fmt.Errorf("%w: %q", digest.ErrUnknownAlgorithm, fields[0])
	}
	if !IsISOFormat(fields[1]) {
		return "", "", "", fmt.Errorf("%w: bad timestamp %q", ErrMalformed, fields[1])
	}
	return alg, fields[1], fields[2], nil
}

// AlgorithmOf returns the algorithm field of g, or "" if g has fewer than
// three fields.
func AlgorithmOf(g string) string {
	return fieldOf(g, 0)
}

// TimestampOf returns the ISO timestamp field of g, or "" if g has fewer
// than three fields.
func TimestampOf(g string) string {
	return fieldOf(g, 1)
}

// RegionOf returns the region field of g, or "" if g has fewer than three
// fields.
func RegionOf(g string) string {
	return fieldOf(g, 2)
}

func fieldOf(g string, i int) string {
	fields := strings.SplitN(g, Separator, 3)
	if len(fields) != 3 {
		return ""
	}
	return fields[i]
}

// IsISOFormat reports whether t is in the canonical
// YYYY-MM-DDTHH:MM:SS.ffffffZ form.
func IsISOFormat(t string) bool {
	if len(t) != len("2006-01-02T15:04:05.000000Z") || !strings.HasSuffix(t, "Z") {
		return false
	}
	_, err := time.Parse(isoLayout, t)
	return err == nil
}

// IsValidHashFunction reports whether name is an algorithm a stamp may
// carry.
func IsValidHashFunction(name string) bool {
	return digest.Valid(digest.Algorithm(name))
}
