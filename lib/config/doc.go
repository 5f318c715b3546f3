// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides launcher settings and the catalogue of
// variables the Marketing Generator API server depends on.
//
// Settings come from a single optional file named by the
// MG_LAUNCH_CONFIG variable (via [Load]) or a --config flag (via
// [LoadFile]). YAML (.yaml, .yml) and JSON with comments (.json,
// .jsonc) are both accepted; unknown fields are rejected. When no file
// is named, [Default] describes the standard container image: gunicorn
// running app:app with the uvicorn ASGI worker.
//
// The file may contain environment-specific sections (development,
// staging, production). [Settings.ApplyEnvironment] applies the section
// that matches the resolved ENVIRONMENT tag.
//
// Key exports:
//
//   - [Settings] -- required variable list, server invocation, smoke-check and health probe settings
//   - [DefaultRequired] -- the six credential and endpoint variables
//   - [Environment] and [ParseEnvironment] -- the deployment tag
//   - [Duration] -- duration strings in YAML and JSON
//
// [Settings.Validate] reports every problem at once via errors.Join.
package config
