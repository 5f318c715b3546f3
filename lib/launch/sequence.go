// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/envset"
)

// Phase names a step of the startup sequence. Phases appear in log
// lines so a failed container start shows where it stopped.
type Phase string

const (
	PhaseValidating    Phase = "validating"
	PhaseResolving     Phase = "resolving_defaults"
	PhaseSmokeChecking Phase = "smoke_checking"
	PhaseLaunching     Phase = "launching"
	PhaseAborted       Phase = "aborted"
)

// Checker probes a downstream dependency using the captured
// configuration. Implementations must honor ctx cancellation and must
// not retry.
type Checker interface {
	Check(ctx context.Context, set envset.Set) error
}

// NewChecker builds a Checker from the environment-specific smoke-check
// settings.
type NewChecker func(settings config.SmokeCheckSettings) Checker

// Sequence runs the startup phases in order and stops at the first
// failure.
type Sequence struct {
	// Settings describes the required list and the server invocation.
	Settings *config.Settings

	// SmokeCheck builds the dependency probe. When nil, the probe is
	// never run regardless of what the settings request.
	SmokeCheck NewChecker

	// ForceSmokeCheck enables the probe even when the settings and the
	// STARTUP_SMOKE_CHECK variable do not (the --smoke-check flag).
	ForceSmokeCheck bool

	// DryRun stops before LAUNCHING; Run returns the resolved Spec.
	DryRun bool

	Launcher *Launcher
	Report   *Report
	Logger   *slog.Logger
}

// Run executes VALIDATING → RESOLVING_DEFAULTS → [SMOKE_CHECKING] →
// LAUNCHING against set. When the launch succeeds Run does not return.
// Otherwise it returns the Spec resolved so far and the error that
// aborted the sequence; that error carries ExitCode().
func (s *Sequence) Run(ctx context.Context, set envset.Set) (Spec, error) {
	logger := s.Logger

	logger.Info("validating configuration", "phase", PhaseValidating, "required", len(s.Settings.Required))
	if err := Validate(set, s.Settings.Required); err != nil {
		var missing *MissingKeysError
		if errors.As(err, &missing) {
			s.Report.Missing(missing.Keys)
			logger.Error("configuration validation failed", "phase", PhaseAborted, "missing", missing.Keys)
		}
		return Spec{}, err
	}
	s.Report.Valid(len(s.Settings.Required))

	logger.Info("resolving defaults", "phase", PhaseResolving)
	spec, err := Resolve(set, s.Settings)
	if err != nil {
		s.Report.Invalid(err)
		logger.Error("configuration resolution failed", "phase", PhaseAborted, "error", err)
		return Spec{}, err
	}
	logger.Info("configuration resolved",
		"environment", spec.Environment,
		"bind", spec.Bind(),
		"workers", spec.Workers,
		"log_level", spec.LogLevel,
		"defaulted", spec.Defaulted,
	)
	s.Report.Banner(spec)

	effective := s.Settings.ForEnvironment(spec.Environment)
	requested, err := config.SmokeCheckRequested(set)
	if err != nil {
		invalid := &InvalidValueError{Key: config.SmokeCheckVariable, Value: set.Get(config.SmokeCheckVariable),
			Reason: "must be a boolean"}
		s.Report.Invalid(invalid)
		logger.Error("configuration resolution failed", "phase", PhaseAborted, "error", invalid)
		return spec, invalid
	}
	if s.SmokeCheck != nil && (s.ForceSmokeCheck || requested || effective.SmokeCheck.Enabled) {
		logger.Info("running dependency smoke-check",
			"phase", PhaseSmokeChecking,
			"timeout", effective.SmokeCheck.Timeout.Std(),
		)
		checkErr := s.SmokeCheck(effective.SmokeCheck).Check(ctx, set)
		s.Report.SmokeCheck(checkErr)
		if checkErr != nil {
			logger.Error("CRITICAL: dependency smoke-check failed, not starting server",
				"phase", PhaseAborted, "error", checkErr)
			return spec, checkErr
		}
	}

	if s.DryRun {
		logger.Info("dry run, not exec()'ing server", "argv", spec.Args())
		return spec, nil
	}

	logger.Info("launching server", "phase", PhaseLaunching)
	if err := s.Launcher.Launch(spec, spec.Environ(set)); err != nil {
		return spec, err
	}
	return spec, nil
}
