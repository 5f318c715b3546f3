// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"fmt"
	"strings"
)

// Exit statuses for launch failures. ExitNotFound and ExitNotExecutable
// follow the shell convention for command lookup and exec failures.
const (
	ExitInvalidConfiguration = 1
	ExitNotExecutable        = 126
	ExitNotFound             = 127
)

// MissingKeysError reports required variables that are absent or
// empty. Keys preserves the order of the required list.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Keys, ", "))
}

// ExitCode returns ExitInvalidConfiguration.
func (e *MissingKeysError) ExitCode() int {
	return ExitInvalidConfiguration
}

// InvalidValueError reports an optional variable whose supplied value
// cannot be used.
type InvalidValueError struct {
	Key    string
	Value  string
	Reason string
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("invalid %s=%q: %s", e.Key, e.Value, e.Reason)
}

// ExitCode returns ExitInvalidConfiguration.
func (e *InvalidValueError) ExitCode() int {
	return ExitInvalidConfiguration
}

// ExecError reports a failure to find or exec the server executable.
type ExecError struct {
	// Path is the executable as configured (NotFound) or as resolved.
	Path string

	// NotFound is true when PATH lookup failed and exec was never
	// attempted.
	NotFound bool

	Err error
}

func (e *ExecError) Error() string {
	if e.NotFound {
		return fmt.Sprintf("server executable %s not found: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("exec %s: %v", e.Path, e.Err)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}

// ExitCode returns ExitNotFound or ExitNotExecutable.
func (e *ExecError) ExitCode() int {
	if e.NotFound {
		return ExitNotFound
	}
	return ExitNotExecutable
}
