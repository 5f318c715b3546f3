// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/envset"
	"github.com/marketing-generator/mg-launch/lib/launch"
	"github.com/marketing-generator/mg-launch/lib/process"
	"github.com/marketing-generator/mg-launch/lib/smokecheck"
)

type runParams struct {
	commonParams
	smokeCheck        bool
	smokeCheckTimeout time.Duration
	dryRun            bool
}

func (a *app) runCommand() *cli.Command {
	var params runParams

	return &cli.Command{
		Name:    "run",
		Summary: "Validate configuration and exec the API server",
		Description: `Validate the environment and replace this process with the API server.

Startup stops before any port is opened if a required variable is
missing or empty, if an optional variable has an invalid value, or if
the dependency smoke-check is enabled and fails. On success the server
manager (gunicorn by default) takes over this process's PID.`,
		Usage: "mg-launch run [flags]",
		Examples: []cli.Example{
			{
				Description: "Start with defaults and a Supabase reachability check",
				Command:     "mg-launch run --smoke-check --smoke-check-timeout 5s",
			},
			{
				Description: "Show the server command line without starting it",
				Command:     "mg-launch run --dry-run",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("run", pflag.ContinueOnError)
			params.addFlags(flagSet)
			flagSet.BoolVar(&params.smokeCheck, "smoke-check", false,
				"probe Supabase before starting (also $"+config.SmokeCheckVariable+" or smoke_check.enabled)")
			flagSet.DurationVar(&params.smokeCheckTimeout, "smoke-check-timeout", 0,
				"bound on the smoke-check request (default smoke_check.timeout, 10s)")
			flagSet.BoolVar(&params.dryRun, "dry-run", false,
				"print the server command line and environment keys instead of exec'ing")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Usage("unexpected argument: %s", args[0])
			}
			return a.run(params)
		},
	}
}

func (a *app) run(params runParams) error {
	logger, err := params.logger(a, "run")
	if err != nil {
		return err
	}
	if params.smokeCheckTimeout < 0 {
		return cli.Usage("--smoke-check-timeout must not be negative")
	}

	loaded, err := a.loadEnvironment(params.commonParams)
	if err != nil {
		logger.Error("cannot load launcher configuration", "error", err)
		return err
	}
	if loaded.dotenvFound {
		logger.Info("supplemented environment from dotenv file",
			"path", loaded.dotenvPath, "added", len(loaded.dotenvAdded))
	}

	sequence := &launch.Sequence{
		Settings:        loaded.settings,
		SmokeCheck:      a.smokeChecker(params.smokeCheckTimeout),
		ForceSmokeCheck: params.smokeCheck,
		DryRun:          params.dryRun,
		Launcher:        a.newLauncher(logger),
		Report:          launch.NewReport(a.stdout),
		Logger:          logger,
	}
	spec, err := sequence.Run(a.ctx, loaded.set)
	if err != nil {
		// The report and the log already describe the failure.
		return &cli.ExitError{Code: process.ExitCode(err)}
	}

	if params.dryRun {
		a.printDryRun(spec, loaded.set)
	}
	return nil
}

// smokeChecker returns the factory the launch sequence uses to build
// the Supabase probe. A positive timeout overrides the settings.
func (a *app) smokeChecker(timeout time.Duration) launch.NewChecker {
	return func(settings config.SmokeCheckSettings) launch.Checker {
		if timeout > 0 {
			settings.Timeout = config.Duration(timeout)
		}
		checker := smokecheck.New(settings)
		checker.Client = a.httpClient
		return checker
	}
}

// printDryRun writes the exec arguments and the names (never the
// values) of the variables the server would receive.
func (a *app) printDryRun(spec launch.Spec, set envset.Set) {
	fmt.Fprintf(a.stdout, "argv: %s\n", strings.Join(spec.Args(), " "))
	keys := envset.FromEnviron(spec.Environ(set)).Keys()
	fmt.Fprintf(a.stdout, "environment keys (%d): %s\n", len(keys), strings.Join(keys, ", "))
}
