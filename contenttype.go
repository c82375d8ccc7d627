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

import "bytes"

// signature is a magic-byte rule. When set, prefix must match at offset 0
// and sub must match at subOffset. First matching rule wins.
type signature struct {
	prefix    []byte
	sub       []byte
	subOffset int
	mediaType string
}

var signatures = []signature{
	{prefix: []byte("\x89PNG\r\n\x1a\n"), mediaType: "image/png"},
	{prefix: []byte{0xff, 0xd8, 0xff}, mediaType: "image/jpeg"},
	{prefix: []byte("GIF87a"), mediaType: "image/gif"},
	{prefix: []byte("GIF89a"), mediaType: "image/gif"},
	{prefix: []byte("RIFF"), sub: []byte("WEBP"), subOffset: 8, mediaType: "image/webp"},
	{prefix: []byte("RIFF"), sub: []byte("WAVE"), subOffset: 8, mediaType: "audio/x-wav"},
	{prefix: []byte("BM"), mediaType: "image/bmp"},
	{prefix: []byte("%PDF-"), mediaType: "application/pdf"},
	{prefix: []byte("ID3"), mediaType: "audio/mpeg"},
	{prefix: []byte{0xff, 0xfb}, mediaType: "audio/mpeg"},
	{sub: []byte("ftyp"), subOffset: 4, mediaType: "video/mp4"},
	{prefix: []byte{0x1a, 0x45, 0xdf, 0xa3}, mediaType: "video/webm"},
	{prefix: []byte("PK\x03\x04"), mediaType: "application/zip"},
	{prefix: []byte{0x1f, 0x8b}, mediaType: "application/gzip"},
}

// DetectContentType classifies data into a coarse MIME tag. Known
// magic-byte prefixes win; otherwise data consisting of printable ASCII
// and common whitespace with no NUL is text/plain, and anything else is
// application/octet-stream.
func DetectContentType(data []byte) string {
	for _, sig := range signatures {
		if sig.prefix != nil && !bytes.HasPrefix(data, sig.prefix) {
			continue
		}
		if sig.sub != nil {
			end := sig.subOffset + len(sig.sub)
			if len(data) < end || !bytes.Equal(data[sig.subOffset:end], sig.sub) {
				continue
			}
		}
		return sig.mediaType
	}
	if isPrintableText(data) {
		return "text/plain"
	}
	return "application/octet-stream"
}

func isPrintableText(data []byte) bool {
	for _, b := range data {
		switch {
		case b == 0x00:
			return false
		case b >= 0x20 && b <= 0x7e:
		case b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f':
		default:
			return false
		}
	}
	return true
}
