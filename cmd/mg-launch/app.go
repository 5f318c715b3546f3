// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/pflag"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/envset"
	"github.com/marketing-generator/mg-launch/lib/launch"
)

// app carries the process-level collaborators shared by every command.
// Tests replace them to run commands against a fixed environment and
// captured output.
type app struct {
	ctx    context.Context
	stdout io.Writer
	stderr io.Writer

	// environ captures the configuration set. Called once per command.
	environ func() envset.Set

	newLogger   func(level slog.Level) *slog.Logger
	newLauncher func(logger *slog.Logger) *launch.Launcher

	// httpClient is used by the smoke-check and the health probe. Nil
	// means http.DefaultClient; both bound requests by context.
	httpClient *http.Client
}

func newApp(ctx context.Context) *app {
	return &app{
		ctx:         ctx,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		environ:     envset.Capture,
		newLogger:   cli.NewCommandLogger,
		newLauncher: launch.NewLauncher,
	}
}

func (a *app) root() *cli.Command {
	return &cli.Command{
		Name:    "mg-launch",
		Summary: "Validate configuration and launch the Marketing Generator API",
		Description: `Startup validator and launcher for the Marketing Generator API.

mg-launch runs before the API server opens any port. It verifies that
every required environment variable is set, applies documented defaults
to optional ones, optionally checks that Supabase is reachable, and then
replaces itself with gunicorn so the server keeps the container's PID.`,
		Subcommands: []*cli.Command{
			a.runCommand(),
			a.checkCommand(),
			a.healthcheckCommand(),
			a.printConfigCommand(),
			a.versionCommand(),
		},
		Examples: []cli.Example{
			{
				Description: "Container entrypoint",
				Command:     "mg-launch run",
			},
			{
				Description: "Diagnose a deployment without starting anything",
				Command:     "mg-launch check --smoke-check",
			},
		},
	}
}

// commonParams are the flags shared by commands that load the
// launcher's configuration.
type commonParams struct {
	configPath string
	logLevel   string
}

func (p *commonParams) addFlags(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&p.configPath, "config", "", "launcher settings file, YAML or JSONC (default $"+config.ConfigFileVariable+")")
	flagSet.StringVar(&p.logLevel, "log-level", "info", "launcher log level: debug, info, warning, error")
}

func (p *commonParams) logger(a *app, command string) (*slog.Logger, error) {
	level, err := cli.ParseLevel(p.logLevel)
	if err != nil {
		return nil, cli.Usage("--log-level: %v", err)
	}
	return a.newLogger(level).With("command", command), nil
}

// environment is the configuration every command starts from: the
// captured set supplemented by the dotenv file, and the validated
// launcher settings.
type environment struct {
	set envset.Set

	dotenvPath  string
	dotenvFound bool
	dotenvAdded []string

	settings     *config.Settings
	settingsPath string
}

// loadEnvironment captures the environment, supplements it from the
// dotenv file, and loads the settings named by --config or
// MG_LAUNCH_CONFIG. Process environment values always win over the
// dotenv file.
func (a *app) loadEnvironment(params commonParams) (*environment, error) {
	loaded := &environment{set: a.environ()}

	loaded.dotenvPath = config.DefaultDotenvPath
	if path, ok := loaded.set.Lookup(config.DotenvVariable); ok {
		loaded.dotenvPath = path
	}
	values, found, err := envset.ReadDotenv(loaded.dotenvPath)
	if err != nil {
		return nil, err
	}
	loaded.dotenvFound = found
	loaded.set, loaded.dotenvAdded = loaded.set.Supplement(values)

	if params.configPath != "" {
		loaded.settingsPath = params.configPath
		loaded.settings, err = config.LoadFile(params.configPath)
	} else {
		loaded.settingsPath = loaded.set.Get(config.ConfigFileVariable)
		loaded.settings, err = config.Load(loaded.set)
	}
	if err != nil {
		return nil, err
	}
	if err := loaded.settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings%s: %w", describePath(loaded.settingsPath), err)
	}
	return loaded, nil
}

func describePath(path string) string {
	if path == "" {
		return ""
	}
	return " in " + path
}
