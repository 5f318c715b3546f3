// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
	"github.com/marketing-generator/mg-launch/lib/process"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newApp(ctx).root().Execute(os.Args[1:])
	stop()
	if err != nil {
		// Commands that print their own report (run, check,
		// healthcheck) return an ExitError carrying the status. Don't
		// print a redundant "error:" line for those.
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		process.Fatal(err)
	}
}
