// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli"
	"github.com/marketing-generator/mg-launch/cmd/mg-launch/cli/preflight"
	"github.com/marketing-generator/mg-launch/lib/binhash"
	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/launch"
)

type checkParams struct {
	commonParams
	cli.JSONOutput
	showValues        bool
	smokeCheck        bool
	smokeCheckTimeout time.Duration
}

func (a *app) checkCommand() *cli.Command {
	var params checkParams

	return &cli.Command{
		Name:    "check",
		Summary: "Report configuration problems without launching",
		Description: `Run every startup check and report all results at once.

Unlike "run", which stops at the first failure, "check" reports each
required variable, the optional values, the server executable, and
(when enabled) the Supabase smoke-check. Nothing is exec'd. The exit
status is 1 if any check fails.

Secret values are never printed. With --show-values, required values
are shown masked to their last four characters.`,
		Usage: "mg-launch check [flags]",
		Examples: []cli.Example{
			{
				Description: "Check a deployment, including Supabase reachability",
				Command:     "mg-launch check --smoke-check",
			},
			{
				Description: "Machine-readable output",
				Command:     "mg-launch check --json",
			},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
			params.addFlags(flagSet)
			params.AddFlag(flagSet)
			flagSet.BoolVar(&params.showValues, "show-values", false,
				"show required values masked to their last four characters")
			flagSet.BoolVar(&params.smokeCheck, "smoke-check", false,
				"include the Supabase smoke-check")
			flagSet.DurationVar(&params.smokeCheckTimeout, "smoke-check-timeout", 0,
				"bound on the smoke-check request (default smoke_check.timeout, 10s)")
			return flagSet
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Usage("unexpected argument: %s", args[0])
			}
			return a.check(params)
		},
	}
}

func (a *app) check(params checkParams) error {
	logger, err := params.logger(a, "check")
	if err != nil {
		return err
	}

	results := a.checkResults(params, logger)
	if done, err := params.EmitJSON(a.stdout, preflight.BuildJSON(results)); done {
		if err != nil {
			return err
		}
		if preflight.Failed(results) {
			return &cli.ExitError{Code: 1}
		}
		return nil
	}

	checklistErr := preflight.PrintChecklist(a.stdout, results)
	if checklistErr != nil {
		logger.Warn("configuration check failed")
	}
	return checklistErr
}

// checkResults runs each startup check in order. A check whose
// prerequisite failed is skipped rather than omitted, so the list of
// names is stable across runs.
func (a *app) checkResults(params checkParams, logger *slog.Logger) []preflight.Result {
	const (
		nameSettings   = "settings"
		nameDotenv     = "dotenv file"
		nameOptional   = "optional variables"
		nameExecutable = "server executable"
		nameSmokeCheck = "supabase smoke-check"
	)

	var results []preflight.Result
	loaded, err := a.loadEnvironment(params.commonParams)
	if err != nil {
		return append(results,
			preflight.Fail(nameSettings, err.Error()),
			preflight.Skip("required variables", "settings did not load"),
			preflight.Skip(nameOptional, "settings did not load"),
			preflight.Skip(nameExecutable, "settings did not load"),
			preflight.Skip(nameSmokeCheck, "settings did not load"),
		)
	}

	if loaded.settingsPath == "" {
		results = append(results, preflight.Pass(nameSettings, "built-in defaults"))
	} else {
		results = append(results, preflight.Pass(nameSettings, "loaded from "+loaded.settingsPath))
	}
	switch {
	case loaded.dotenvPath == "":
		results = append(results, preflight.Skip(nameDotenv, "disabled by "+config.DotenvVariable))
	case !loaded.dotenvFound:
		results = append(results, preflight.Skip(nameDotenv, loaded.dotenvPath+" not present"))
	default:
		results = append(results, preflight.Pass(nameDotenv,
			fmt.Sprintf("%s added %d variable(s)", loaded.dotenvPath, len(loaded.dotenvAdded))))
	}

	set := loaded.set
	requiredOK := true
	for _, key := range loaded.settings.Required {
		if !set.Has(key) {
			requiredOK = false
			results = append(results, preflight.Fail(key, "missing or empty"))
			continue
		}
		message := "set"
		if params.showValues {
			message = "set (" + mask(set.Get(key)) + ")"
		}
		results = append(results, preflight.Pass(key, message))
	}

	spec, resolveErr := launch.Resolve(set, loaded.settings)
	if resolveErr != nil {
		results = append(results, preflight.Fail(nameOptional, resolveErr.Error()))
	} else {
		message := fmt.Sprintf("%s on %s, %d worker(s), log level %s",
			spec.Environment, spec.Bind(), spec.Workers, spec.LogLevel)
		if len(spec.Defaulted) > 0 {
			message += "; defaults for " + strings.Join(spec.Defaulted, ", ")
		}
		results = append(results, preflight.Pass(nameOptional, message))
	}

	if resolveErr != nil {
		results = append(results, preflight.Skip(nameExecutable, "optional variables are invalid"))
	} else {
		results = append(results, a.checkExecutable(spec, logger))
	}

	requested, requestErr := config.SmokeCheckRequested(set)
	effective := loaded.settings
	if resolveErr == nil {
		effective = loaded.settings.ForEnvironment(spec.Environment)
	}
	switch {
	case requestErr != nil:
		results = append(results, preflight.Fail(nameSmokeCheck, requestErr.Error()))
	case !params.smokeCheck && !requested && !effective.SmokeCheck.Enabled:
		results = append(results, preflight.Skip(nameSmokeCheck, "not enabled"))
	case !requiredOK:
		results = append(results, preflight.Skip(nameSmokeCheck, "required variables are missing"))
	default:
		checker := a.smokeChecker(params.smokeCheckTimeout)(effective.SmokeCheck)
		if err := checker.Check(a.ctx, set); err != nil {
			results = append(results, preflight.Fail(nameSmokeCheck, err.Error()))
		} else {
			results = append(results, preflight.Pass(nameSmokeCheck, "table "+effective.SmokeCheck.Table+" reachable"))
		}
	}

	return results
}

func (a *app) checkExecutable(spec launch.Spec, logger *slog.Logger) preflight.Result {
	const name = "server executable"

	launcher := a.newLauncher(logger)
	path, err := launcher.ResolveExecutable(spec)
	if err != nil {
		var execErr *launch.ExecError
		if errors.As(err, &execErr) && execErr.NotFound {
			return preflight.Fail(name, fmt.Sprintf("%s not found on PATH", spec.Executable))
		}
		return preflight.Fail(name, err.Error())
	}
	digest, err := binhash.HashFile(path)
	if err != nil {
		return preflight.Warn(name, fmt.Sprintf("%s (cannot hash: %v)", path, err))
	}
	return preflight.Pass(name, fmt.Sprintf("%s (blake3 %s)", path, binhash.FormatDigest(digest)[:16]))
}

// mask hides all but the last four characters of value.
func mask(value string) string {
	runes := []rune(value)
	if len(runes) <= 4 {
		return "****"
	}
	return "****" + string(runes[len(runes)-4:])
}
