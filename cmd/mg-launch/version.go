// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
	"github.com/marketing-generator/mg-launch/lib/version"
)

func (a *app) versionCommand() *cli.Command {
	var output cli.JSONOutput

	return &cli.Command{
		Name:    "version",
		Summary: "Print version information",
		Usage:   "mg-launch version [flags]",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("version", pflag.ContinueOnError)
			output.AddFlag(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			if done, err := output.EmitJSON(a.stdout, version.Build()); done {
				return err
			}
			_, err := fmt.Fprintln(a.stdout, version.Full())
			return err
		},
	}
}
