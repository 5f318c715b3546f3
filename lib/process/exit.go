// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"errors"
	"fmt"
	"os"
)

// ExitCoder is implemented by errors that determine the process exit
// status, such as the launcher's missing-variable and exec errors.
type ExitCoder interface {
	error
	ExitCode() int
}

// ExitCode returns the exit status for err: 0 for nil, the code of the
// first ExitCoder in err's chain, or 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return 1
}

// Fatal writes "error: err" to stderr and exits with ExitCode(err), or
// 1 if that would be 0. Use it in main() for errors that occur before
// the structured logger is initialized.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	code := ExitCode(err)
	if code == 0 {
		code = 1
	}
	os.Exit(code)
}
