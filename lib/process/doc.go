// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides entrypoint helpers for the launcher binary.
// It centralizes the two raw I/O patterns that exist outside the
// structured logger:
//
//   - Fatal error reporting to stderr before the logger is configured.
//   - Mapping an error to the process exit status.
//
// Errors that know their own exit status implement [ExitCoder]. Every
// other non-nil error maps to 1.
package process
