// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
	"github.com/marketing-generator/mg-launch/lib/healthcheck"
	"github.com/marketing-generator/mg-launch/lib/launch"
)

type healthcheckParams struct {
	commonParams
	cli.JSONOutput
	port    int
	timeout time.Duration
}

func (a *app) healthcheckCommand() *cli.Command {
	var params healthcheckParams

	return &cli.Command{
		Name:    "healthcheck",
		Summary: "Probe the running server's health endpoint",
		Description: `Send one GET to the API server's health endpoint on the loopback interface.

Exits 0 when the server reports healthy or degraded (degraded components
are logged as a warning) and 1 when it reports unhealthy, answers with
any other status, or does not answer within the timeout. Intended for
the container HEALTHCHECK instruction.`,
		Usage: "mg-launch healthcheck [flags]",
		Examples: []cli.Example{
			{
				Description: "Container health check",
				Command:     "mg-launch healthcheck",
			},
			{
				Description: "Print the server's health report",
				Command:     "mg-launch healthcheck --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("healthcheck", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.AddFlag(flagSet)
			flagSet.IntVar(&params.port, "port", 0, "server port (default $PORT, 5000)")
			flagSet.DurationVar(&params.timeout, "timeout", 0, "bound on the probe (default health.timeout, 5s)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Usage("unexpected argument: %s", args[0])
			}
			return a.healthcheck(params)
		},
	}
}

func (a *app) healthcheck(params healthcheckParams) error {
	logger, err := params.logger(a, "healthcheck")
	if err != nil {
		return err
	}
	if params.port < 0 || params.port > 65535 {
		return cli.Usage("--port must be between 1 and 65535")
	}

	loaded, err := a.loadEnvironment(params.commonParams)
	if err != nil {
		logger.Error("cannot load launcher configuration", "error", err)
		return err
	}

	port := params.port
	if port == 0 {
		spec, err := launch.Resolve(loaded.set, loaded.settings)
		if err != nil {
			logger.Error("cannot resolve server port", "error", err)
			return &cli.ExitError{Code: 1}
		}
		port = spec.Port
	}
	timeout := params.timeout
	if timeout <= 0 {
		timeout = loaded.settings.Health.Timeout.Std()
	}

	url := healthcheck.LocalURL(port, loaded.settings.Health.Path)
	result, err := healthcheck.Probe(a.ctx, a.httpClient, url, timeout)
	if err != nil {
		logger.Error("server is unhealthy", "url", url, "error", err)
		return &cli.ExitError{Code: 1}
	}

	if done, err := params.EmitJSON(a.stdout, result.Report); done && err != nil {
		return err
	}
	if result.Degraded() {
		logger.Warn("server is degraded",
			"url", url,
			"status", result.Report.Status,
			"components", result.DegradedComponents(),
		)
		return nil
	}
	logger.Debug("server is healthy", "url", url, "version", result.Report.Version)
	return nil
}
