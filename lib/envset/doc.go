// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envset captures the process environment into an immutable
// [Set] at startup.
//
// The launcher reads configuration exactly once: [FromEnviron] snapshots
// os.Environ (or any KEY=value slice), and [Set.Supplement] layers a
// dotenv file underneath it. Values already present in the process
// environment always win over the dotenv file, matching the behavior of
// the API server's own dotenv loading. After capture, the Set is passed
// explicitly to validation, default resolution, and the launcher; nothing
// downstream calls os.Getenv.
//
// A key counts as present only when its value is non-empty. An exported
// but empty variable (FOO=) is treated the same as an unset one, since
// the container runtime frequently materializes unset template variables
// as empty strings.
package envset
