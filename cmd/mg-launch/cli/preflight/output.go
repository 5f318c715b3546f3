// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package preflight

import (
	"fmt"
	"io"
	"strings"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
)

// PrintChecklist writes results to w as a human-readable checklist,
// followed by a summary line. It returns an [*cli.ExitError] with code
// 1 when any check failed, so the caller can return it directly.
func PrintChecklist(w io.Writer, results []Result) error {
	failed := 0
	warned := 0
	for _, result := range results {
		prefix := strings.ToUpper(string(result.Status))
		fmt.Fprintf(w, "[%-5s]  %-32s  %s\n", prefix, result.Name, result.Message)
		switch result.Status {
		case StatusFail:
			failed++
		case StatusWarn:
			warned++
		}
	}

	fmt.Fprintln(w)

	if failed > 0 {
		fmt.Fprintf(w, "%d check(s) failed. The server would not be started.\n", failed)
		return &cli.ExitError{Code: 1}
	}
	if warned > 0 {
		fmt.Fprintf(w, "All checks passed with %d warning(s).\n", warned)
		return nil
	}
	fmt.Fprintln(w, "All checks passed.")
	return nil
}
