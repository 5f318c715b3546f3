// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content digests for executable files.
//
// The launcher logs the digest of the server executable immediately
// before exec(). Container images are rebuilt frequently and PATH
// resolution can pick up a different gunicorn than expected (a venv
// versus the system interpreter); the digest in the startup log ties a
// running container to the exact bytes it is executing.
//
//   - [HashFile] -- streams a file through BLAKE3 with constant memory
//   - [FormatDigest] -- the canonical hex form used in log output
package binhash
