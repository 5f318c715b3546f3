// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"log/slog"
	"os/exec"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/marketing-generator/mg-launch/lib/binhash"
)

// ExecFunc replaces the current process image. It has the signature of
// unix.Exec and, on success, never returns.
type ExecFunc func(argv0 string, argv []string, envv []string) error

// Launcher turns a [Spec] into a running server by replacing the
// current process.
type Launcher struct {
	logger *slog.Logger

	// execFunc and lookPath default to unix.Exec and exec.LookPath.
	// Tests substitute them to observe the exec call without losing
	// the test process.
	execFunc ExecFunc
	lookPath func(file string) (string, error)
}

// NewLauncher returns a Launcher that execs via unix.Exec.
func NewLauncher(logger *slog.Logger) *Launcher {
	return &Launcher{
		logger:   logger,
		execFunc: unix.Exec,
		lookPath: exec.LookPath,
	}
}

// WithExec returns a copy of l that replaces the process with execFunc
// and resolves executables with lookPath. A nil argument keeps l's
// function. Callers outside this package use it to observe a launch
// without losing their own process.
func (l *Launcher) WithExec(execFunc ExecFunc, lookPath func(file string) (string, error)) *Launcher {
	copied := *l
	if execFunc != nil {
		copied.execFunc = execFunc
	}
	if lookPath != nil {
		copied.lookPath = lookPath
	}
	return &copied
}

// ResolveExecutable returns the absolute path of the configured executable,
// searching PATH when it is a bare name.
func (l *Launcher) ResolveExecutable(spec Spec) (string, error) {
	lookPath := l.lookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	path, err := lookPath(spec.Executable)
	if err != nil {
		return "", &ExecError{Path: spec.Executable, NotFound: true, Err: err}
	}
	return path, nil
}

// Launch replaces the current process with the server described by
// spec, running with environ as its environment. On success it never
// returns: the server inherits this PID and receives the container's
// termination signal directly. On failure it returns an [ExecError]
// and the current process continues.
func (l *Launcher) Launch(spec Spec, environ []string) error {
	path, err := l.ResolveExecutable(spec)
	if err != nil {
		l.logger.Error("server executable not found", "executable", spec.Executable, "error", err)
		return err
	}

	argv := spec.Args()
	attributes := []any{
		"path", path,
		"bind", spec.Bind(),
		"workers", spec.Workers,
		"argv", argv,
	}
	if digest, err := binhash.HashFile(path); err != nil {
		l.logger.Warn("cannot hash server executable", "path", path, "error", err)
	} else {
		attributes = append(attributes, "blake3", binhash.FormatDigest(digest))
	}
	l.logger.Info("exec()'ing server process", attributes...)

	// Stop relaying signals to this process's channels so the new
	// image starts with default dispositions. Between here and the
	// exec a SIGTERM terminates the launcher, which is the desired
	// outcome: nothing has been started yet.
	signal.Reset()

	execFunction := l.execFunc
	if execFunction == nil {
		execFunction = unix.Exec
	}
	if err := execFunction(path, argv, environ); err != nil {
		// The process was NOT replaced.
		l.logger.Error("server exec() failed", "path", path, "error", err)
		return &ExecError{Path: path, Err: err}
	}
	return nil
}
