// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preflight

// Status is the outcome of a single check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusSkip Status = "skip"
)

// Result holds the outcome of a single check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Pass creates a passing check result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Fail creates a failing check result.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// Warn creates a warning check result. Warnings do not cause the check
// command to exit with a non-zero status.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// Skip creates a skipped check result. Checks are skipped when a
// prerequisite check failed (e.g., the smoke-check skips when required
// variables are missing) or when they were not requested.
func Skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// Failed reports whether any result failed.
func Failed(results []Result) bool {
	for _, result := range results {
		if result.Status == StatusFail {
			return true
		}
	}
	return false
}

// JSONOutput is the JSON output structure for the check command.
type JSONOutput struct {
	Checks []Result `json:"checks"`
	OK     bool     `json:"ok"`
}

// BuildJSON aggregates results for --json output.
func BuildJSON(results []Result) JSONOutput {
	checks := results
	if checks == nil {
		checks = []Result{}
	}
	return JSONOutput{Checks: checks, OK: !Failed(results)}
}
