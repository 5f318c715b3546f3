// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/envset"
)

// execCall records the arguments of one ExecFunc invocation.
type execCall struct {
	argv0 string
	argv  []string
	envv  []string
}

// recordingLauncher returns a Launcher whose exec is captured instead
// of replacing the test process. The fake exec returns execErr, so the
// launcher takes the "process was not replaced" path when it is set.
func recordingLauncher(t *testing.T, execErr error) (*Launcher, *[]execCall) {
	t.Helper()

	executable := filepath.Join(t.TempDir(), "gunicorn")
	if err := os.WriteFile(executable, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("writing fake executable: %v", err)
	}

	var calls []execCall
	launcher := &Launcher{
		logger: discardLogger(),
		execFunc: func(argv0 string, argv []string, envv []string) error {
			calls = append(calls, execCall{argv0: argv0, argv: argv, envv: envv})
			return execErr
		},
		lookPath: func(file string) (string, error) {
			if file != "gunicorn" {
				return "", fmt.Errorf("exec: %q: executable file not found in $PATH", file)
			}
			return executable, nil
		},
	}
	return launcher, &calls
}

func TestLauncher_ExecsResolvedServer(t *testing.T) {
	launcher, calls := recordingLauncher(t, nil)
	set := completeEnvironment(map[string]string{"PORT": "8080", "WORKERS": "4"})
	spec, err := Resolve(set, config.Default())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	if err := launcher.Launch(spec, spec.Environ(set)); err != nil {
		t.Fatalf("Launch() error: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("exec called %d times, want 1", len(*calls))
	}
	call := (*calls)[0]
	if filepath.Base(call.argv0) != "gunicorn" || !filepath.IsAbs(call.argv0) {
		t.Errorf("argv0 = %q, want absolute path to gunicorn", call.argv0)
	}
	if !reflect.DeepEqual(call.argv, spec.Args()) {
		t.Errorf("argv = %v, want %v", call.argv, spec.Args())
	}

	environ := envset.FromEnviron(call.envv)
	if environ.Get("PORT") != "8080" || environ.Get("WORKERS") != "4" {
		t.Errorf("PORT=%q WORKERS=%q in exec environment", environ.Get("PORT"), environ.Get("WORKERS"))
	}
	if environ.Get("SUPABASE_SERVICE_KEY") != "service-role-key" {
		t.Error("required variable not passed through to the server")
	}
	if environ.Get("LOG_LEVEL") != "info" {
		t.Errorf("LOG_LEVEL = %q, want exported default", environ.Get("LOG_LEVEL"))
	}
}

func TestLauncher_ExecutableNotFound(t *testing.T) {
	launcher, calls := recordingLauncher(t, nil)
	settings := config.Default()
	settings.Server.Executable = "uvicorn"
	spec, err := Resolve(completeEnvironment(nil), settings)
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	err = launcher.Launch(spec, nil)

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Launch() = %v, want *ExecError", err)
	}
	if !execErr.NotFound || execErr.ExitCode() != ExitNotFound {
		t.Errorf("NotFound=%v ExitCode=%d, want true and %d", execErr.NotFound, execErr.ExitCode(), ExitNotFound)
	}
	if len(*calls) != 0 {
		t.Errorf("exec called %d times after a failed lookup", len(*calls))
	}
}

func TestLauncher_ExecFailure(t *testing.T) {
	permissionDenied := errors.New("permission denied")
	launcher, calls := recordingLauncher(t, permissionDenied)
	spec, err := Resolve(completeEnvironment(nil), config.Default())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	err = launcher.Launch(spec, nil)

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Launch() = %v, want *ExecError", err)
	}
	if execErr.NotFound || execErr.ExitCode() != ExitNotExecutable {
		t.Errorf("NotFound=%v ExitCode=%d, want false and %d", execErr.NotFound, execErr.ExitCode(), ExitNotExecutable)
	}
	if !errors.Is(err, permissionDenied) {
		t.Errorf("error %v does not wrap the exec failure", err)
	}
	if len(*calls) != 1 {
		t.Errorf("exec called %d times, want 1", len(*calls))
	}
}

func TestLauncher_WithExec(t *testing.T) {
	var called bool
	base := NewLauncher(discardLogger())
	launcher := base.WithExec(func(argv0 string, argv []string, envv []string) error {
		called = true
		return errors.New("exec not permitted in test")
	}, func(file string) (string, error) {
		return "/bin/true", nil
	})

	spec, err := Resolve(completeEnvironment(nil), config.Default())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}
	if err := launcher.Launch(spec, nil); err == nil {
		t.Fatal("Launch() = nil, want the fake exec error")
	}
	if !called {
		t.Error("substituted exec function was not used")
	}
	if base.lookPath == nil || base.execFunc == nil {
		t.Error("WithExec modified the original launcher")
	}
}
