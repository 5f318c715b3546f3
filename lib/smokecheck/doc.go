// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package smokecheck verifies that the Supabase backend is reachable
// and accepts the configured service key before the API server starts.
//
// The check is a single bounded request:
//
//	GET {SUPABASE_URL}/rest/v1/{table}?select=count&limit=1
//	apikey: {SUPABASE_SERVICE_KEY}
//	Authorization: Bearer {SUPABASE_SERVICE_KEY}
//
// Any 2xx response passes. A transport error, a timeout, or any other
// status fails with an [*Error]. The check is never retried: a
// container that cannot reach its database on the first attempt exits
// and is restarted by the orchestrator.
package smokecheck
