// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch validates the API server's configuration, resolves
// defaults into an immutable [Spec], and replaces the current process
// with the production server manager.
//
// The startup sequence is strictly linear:
//
//	VALIDATING → RESOLVING_DEFAULTS → [SMOKE_CHECKING] → LAUNCHING
//
// Any failure moves to ABORTED and is terminal: the server process is
// never started while a required variable is missing, an optional
// variable is malformed, or the smoke-check fails. [Sequence] drives
// the phases; [Validate], [Resolve], and [Launcher] are usable on
// their own.
//
// Launching uses exec(2), not fork. The server manager inherits the
// launcher's PID, so the container runtime's SIGTERM reaches gunicorn
// directly and in-flight requests drain within --graceful-timeout.
// Signal handlers installed by the launcher are reset before the exec
// so the new image starts with default dispositions.
//
// Every failure is a typed error carrying ExitCode():
//
//   - [MissingKeysError] -- 1, one or more required variables absent
//   - [InvalidValueError] -- 1, an optional variable cannot be parsed
//   - [ExecError] -- 127 when the executable is not found, 126 when exec fails
package launch
