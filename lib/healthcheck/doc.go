// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package healthcheck queries the API server's health endpoint for the
// container health check.
//
// The server reports an overall status and a status per component
// (database, configuration, modules). A 200 response is healthy or
// degraded; a 503 means at least one component is unhealthy. [Probe]
// returns a [*Result] for a 200 and an [*Error] for anything else, so
// the caller maps healthy and degraded to exit 0 and everything else
// to exit 1.
package healthcheck
