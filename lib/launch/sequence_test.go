// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/envset"
)

// fakeChecker counts probes and returns a fixed result.
type fakeChecker struct {
	err      error
	calls    int
	settings config.SmokeCheckSettings
}

func (f *fakeChecker) Check(ctx context.Context, set envset.Set) error {
	f.calls++
	return f.err
}

func newTestSequence(t *testing.T, checker *fakeChecker) (*Sequence, *[]execCall, *bytes.Buffer) {
	t.Helper()
	launcher, calls := recordingLauncher(t, nil)
	var output bytes.Buffer
	sequence := &Sequence{
		Settings: config.Default(),
		Launcher: launcher,
		Report:   PlainReport(&output),
		Logger:   discardLogger(),
	}
	if checker != nil {
		sequence.SmokeCheck = func(settings config.SmokeCheckSettings) Checker {
			checker.settings = settings
			return checker
		}
	}
	return sequence, calls, &output
}

func TestSequence_LaunchesWithDefaults(t *testing.T) {
	sequence, calls, output := newTestSequence(t, nil)

	spec, err := sequence.Run(context.Background(), completeEnvironment(nil))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if spec.Port != 5000 || spec.Workers != 2 {
		t.Errorf("Port=%d Workers=%d, want 5000 and 2", spec.Port, spec.Workers)
	}
	if len(*calls) != 1 {
		t.Fatalf("exec called %d times, want 1", len(*calls))
	}
	if !strings.Contains(output.String(), "[ OK ] All 6 required environment variables are set") {
		t.Errorf("report missing validation line:\n%s", output)
	}
	if !strings.Contains(output.String(), "0.0.0.0:5000") {
		t.Errorf("banner missing bind address:\n%s", output)
	}
}

func TestSequence_MissingKeyNeverLaunches(t *testing.T) {
	checker := &fakeChecker{}
	sequence, calls, output := newTestSequence(t, checker)
	sequence.ForceSmokeCheck = true

	_, err := sequence.Run(context.Background(), completeEnvironment(map[string]string{"OPENAI_API_KEY": ""}))

	var missing *MissingKeysError
	if !errors.As(err, &missing) {
		t.Fatalf("Run() = %v, want *MissingKeysError", err)
	}
	if missing.ExitCode() != ExitInvalidConfiguration {
		t.Errorf("ExitCode() = %d, want %d", missing.ExitCode(), ExitInvalidConfiguration)
	}
	if len(*calls) != 0 {
		t.Errorf("exec called %d times with a missing variable", len(*calls))
	}
	if checker.calls != 0 {
		t.Errorf("smoke-check ran %d times before validation passed", checker.calls)
	}
	if !strings.Contains(output.String(), "- OPENAI_API_KEY") {
		t.Errorf("report does not list the missing key:\n%s", output)
	}
}

func TestSequence_InvalidOptionalNeverLaunches(t *testing.T) {
	sequence, calls, output := newTestSequence(t, nil)

	_, err := sequence.Run(context.Background(), completeEnvironment(map[string]string{"WORKERS": "many"}))

	var invalid *InvalidValueError
	if !errors.As(err, &invalid) || invalid.Key != KeyWorkers {
		t.Fatalf("Run() = %v, want *InvalidValueError for WORKERS", err)
	}
	if len(*calls) != 0 {
		t.Errorf("exec called %d times with an invalid value", len(*calls))
	}
	if !strings.Contains(output.String(), "Invalid configuration") {
		t.Errorf("report missing invalid line:\n%s", output)
	}
}

func TestSequence_SmokeCheckFailureNeverLaunches(t *testing.T) {
	unreachable := errors.New("dial tcp: connection refused")
	checker := &fakeChecker{err: unreachable}
	sequence, calls, output := newTestSequence(t, checker)

	set := completeEnvironment(map[string]string{config.SmokeCheckVariable: "true"})
	_, err := sequence.Run(context.Background(), set)

	if !errors.Is(err, unreachable) {
		t.Fatalf("Run() = %v, want the smoke-check failure", err)
	}
	if checker.calls != 1 {
		t.Errorf("smoke-check ran %d times, want 1 (no retry)", checker.calls)
	}
	if len(*calls) != 0 {
		t.Errorf("exec called %d times after a failed smoke-check", len(*calls))
	}
	if !strings.Contains(output.String(), "CRITICAL") {
		t.Errorf("report missing CRITICAL line:\n%s", output)
	}
}

func TestSequence_SmokeCheckPassLaunches(t *testing.T) {
	checker := &fakeChecker{}
	sequence, calls, _ := newTestSequence(t, checker)
	sequence.ForceSmokeCheck = true

	if _, err := sequence.Run(context.Background(), completeEnvironment(nil)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if checker.calls != 1 || len(*calls) != 1 {
		t.Errorf("smoke-check calls=%d exec calls=%d, want 1 and 1", checker.calls, len(*calls))
	}
	if checker.settings.Table != "marketing_generations" {
		t.Errorf("checker built with table %q", checker.settings.Table)
	}
}

func TestSequence_SmokeCheckOffByDefault(t *testing.T) {
	checker := &fakeChecker{err: errors.New("should not run")}
	sequence, calls, _ := newTestSequence(t, checker)

	if _, err := sequence.Run(context.Background(), completeEnvironment(nil)); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if checker.calls != 0 {
		t.Errorf("smoke-check ran %d times without being enabled", checker.calls)
	}
	if len(*calls) != 1 {
		t.Errorf("exec called %d times, want 1", len(*calls))
	}
}

func TestSequence_SmokeCheckEnabledPerEnvironment(t *testing.T) {
	checker := &fakeChecker{}
	sequence, _, _ := newTestSequence(t, checker)
	enabled := true
	sequence.Settings.Staging = &config.Overrides{
		SmokeCheck: &config.SmokeCheckOverrides{Enabled: &enabled, Table: "health_probe"},
	}

	if _, err := sequence.Run(context.Background(), completeEnvironment(map[string]string{"ENVIRONMENT": "staging"})); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if checker.calls != 1 {
		t.Errorf("smoke-check ran %d times, want 1", checker.calls)
	}
	if checker.settings.Table != "health_probe" {
		t.Errorf("checker built with table %q, want staging override", checker.settings.Table)
	}
}

func TestSequence_InvalidSmokeCheckVariable(t *testing.T) {
	sequence, calls, _ := newTestSequence(t, &fakeChecker{})

	_, err := sequence.Run(context.Background(), completeEnvironment(map[string]string{config.SmokeCheckVariable: "sometimes"}))

	var invalid *InvalidValueError
	if !errors.As(err, &invalid) || invalid.Key != config.SmokeCheckVariable {
		t.Fatalf("Run() = %v, want *InvalidValueError for %s", err, config.SmokeCheckVariable)
	}
	if len(*calls) != 0 {
		t.Errorf("exec called %d times", len(*calls))
	}
}

func TestSequence_DryRun(t *testing.T) {
	sequence, calls, _ := newTestSequence(t, nil)
	sequence.DryRun = true

	spec, err := sequence.Run(context.Background(), completeEnvironment(map[string]string{"PORT": "8080"}))
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if spec.Port != 8080 {
		t.Errorf("Port = %d, want 8080", spec.Port)
	}
	if len(*calls) != 0 {
		t.Errorf("exec called %d times in dry-run mode", len(*calls))
	}
}
