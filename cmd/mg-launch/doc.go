// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// mg-launch is the container entrypoint for the Marketing Generator API.
//
// "mg-launch run" confirms that every required environment variable is
// set, resolves defaults for the optional ones, optionally smoke-checks
// Supabase, and then exec()s gunicorn in its own place so the server
// keeps the container's PID and receives its termination signal
// directly. Nothing listens on a port until every check has passed.
//
// The remaining commands support operators and the container runtime:
//
//	mg-launch check          report every configuration problem at once
//	mg-launch healthcheck    probe the running server's /health endpoint
//	mg-launch print-config   print the resolved launch parameters
//	mg-launch version        print build information
//
// Exit status: 0 on success, 1 for configuration, smoke-check, or
// health failures, 2 for usage errors, 126 when the server cannot be
// exec'd, and 127 when it cannot be found.
package main
