// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package preflight provides the checklist infrastructure behind
// "mg-launch check".
//
// Each check produces a [Result] with a status and a message. The
// package provides:
//
//   - [Result] type with status and message
//   - Constructors: [Pass], [Fail], [Warn], [Skip]
//   - [PrintChecklist] for human-readable output
//   - [BuildJSON] for machine-readable output
//
// What to check lives in cmd/mg-launch. This package only formats and
// aggregates.
package preflight
