// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP response helpers for the launcher's
// outbound probes.
//
// ReadResponse, DecodeResponse, and ErrorBody bound every response body
// read at MaxResponseSize. The probes only ever read short JSON
// documents or error bodies; a server that streams more than that is
// misbehaving and is cut off rather than buffered.
//
// Truncate shortens a response body for inclusion in a log line or an
// error message.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// MaxResponseSize is the bound on response body reads: 1 MB.
const MaxResponseSize int64 = 1 << 20

// MaxErrorBodyLength is the number of bytes of an error response body
// kept in diagnostic messages.
const MaxErrorBodyLength = 512

// ReadResponse reads a response body up to MaxResponseSize bytes.
// Use instead of io.ReadAll when reading HTTP response bodies.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON response body (up to MaxResponseSize
// bytes) and JSON-decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorBody reads an HTTP error response body and returns it, trimmed
// and truncated to MaxErrorBodyLength, for diagnostic error messages.
// Read errors are ignored: a partial or empty body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := io.ReadAll(io.LimitReader(body, MaxResponseSize))
	return Truncate(strings.TrimSpace(string(data)), MaxErrorBodyLength)
}

// Truncate returns s cut to at most limit bytes, on a rune boundary,
// with "..." appended when anything was removed.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
