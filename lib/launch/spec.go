// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/envset"
)

// Optional variable names.
const (
	KeyEnvironment     = "ENVIRONMENT"
	KeyPort            = "PORT"
	KeyWorkers         = "WORKERS"
	KeyLogLevel        = "LOG_LEVEL"
	KeyHost            = "HOST"
	KeyRequestTimeout  = "REQUEST_TIMEOUT"
	KeyKeepAlive       = "KEEP_ALIVE"
	KeyGracefulTimeout = "GRACEFUL_TIMEOUT"
)

// OptionalKey describes a variable with a documented default.
type OptionalKey struct {
	Name        string
	Default     string
	Description string
}

// OptionalKeys is the catalogue of optional variables, in banner order.
var OptionalKeys = []OptionalKey{
	{KeyEnvironment, "production", "deployment environment tag"},
	{KeyPort, "5000", "listening port"},
	{KeyWorkers, "2", "worker process count"},
	{KeyLogLevel, "info", "server log verbosity"},
	{KeyHost, "0.0.0.0", "bind host"},
	{KeyRequestTimeout, "300", "worker request timeout in seconds"},
	{KeyKeepAlive, "5", "keep-alive in seconds"},
	{KeyGracefulTimeout, "30", "shutdown drain period in seconds, 0 to omit"},
}

// LogLevels are the verbosity names the server manager accepts.
var LogLevels = []string{"debug", "info", "warning", "error", "critical"}

// Spec is the resolved, immutable set of parameters used to invoke the
// server process. It is built once by [Resolve] and passed by value;
// none of its methods modify it.
type Spec struct {
	Environment     config.Environment
	Host            string
	Port            int
	Workers         int
	LogLevel        string
	RequestTimeout  time.Duration
	KeepAlive       time.Duration
	GracefulTimeout time.Duration

	Executable  string
	App         string
	WorkerClass string
	AccessLog   bool
	ExtraArgs   []string

	// Defaulted lists the optional variables that were absent and took
	// their documented default, in catalogue order.
	Defaulted []string

	// defaults holds the string defaults for Defaulted keys, exported
	// into the server's environment by Environ.
	defaults map[string]string
}

// Summary is the operator-facing rendering of a Spec used by the
// banner and print-config. Durations are whole seconds, matching the
// variables they were parsed from.
type Summary struct {
	Environment     config.Environment `json:"environment" yaml:"environment"`
	Bind            string             `json:"bind" yaml:"bind"`
	Workers         int                `json:"workers" yaml:"workers"`
	LogLevel        string             `json:"log_level" yaml:"log_level"`
	RequestTimeout  int64              `json:"request_timeout_seconds" yaml:"request_timeout_seconds"`
	KeepAlive       int64              `json:"keep_alive_seconds" yaml:"keep_alive_seconds"`
	GracefulTimeout int64              `json:"graceful_timeout_seconds" yaml:"graceful_timeout_seconds"`
	Executable      string             `json:"executable" yaml:"executable"`
	App             string             `json:"app" yaml:"app"`
	WorkerClass     string             `json:"worker_class,omitempty" yaml:"worker_class,omitempty"`
	Defaulted       []string           `json:"defaulted" yaml:"defaulted"`
	Args            []string           `json:"args" yaml:"args"`
}

// Summary returns the operator-facing view of s.
func (s Spec) Summary() Summary {
	defaulted := append([]string{}, s.Defaulted...)
	return Summary{
		Environment:     s.Environment,
		Bind:            s.Bind(),
		Workers:         s.Workers,
		LogLevel:        s.LogLevel,
		RequestTimeout:  int64(s.RequestTimeout / time.Second),
		KeepAlive:       int64(s.KeepAlive / time.Second),
		GracefulTimeout: int64(s.GracefulTimeout / time.Second),
		Executable:      s.Executable,
		App:             s.App,
		WorkerClass:     s.WorkerClass,
		Defaulted:       defaulted,
		Args:            s.Args(),
	}
}

// Bind returns the host:port listen address.
func (s Spec) Bind() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Args returns the full argv for the server manager, starting with the
// executable name as configured.
//
// --graceful-timeout is emitted only when GracefulTimeout is positive.
func (s Spec) Args() []string {
	args := []string{s.Executable, s.App}
	if s.WorkerClass != "" {
		args = append(args, "--worker-class", s.WorkerClass)
	}
	args = append(args,
		"--workers", strconv.Itoa(s.Workers),
		"--bind", s.Bind(),
		"--timeout", seconds(s.RequestTimeout),
		"--keep-alive", seconds(s.KeepAlive),
		"--log-level", s.LogLevel,
	)
	if s.GracefulTimeout > 0 {
		args = append(args, "--graceful-timeout", seconds(s.GracefulTimeout))
	}
	if s.AccessLog {
		args = append(args, "--access-logfile", "-", "--error-logfile", "-")
	}
	return append(args, s.ExtraArgs...)
}

// Environ returns the environment for the server process: every entry
// of set, plus the documented default for each optional variable that
// set lacked. Values present in set are never replaced.
func (s Spec) Environ(set envset.Set) []string {
	additions := make(map[string]string, len(s.Defaulted))
	for _, key := range s.Defaulted {
		if set.Has(key) {
			continue
		}
		additions[key] = s.defaults[key]
	}
	return set.With(additions).Environ()
}

func seconds(d time.Duration) string {
	return strconv.FormatInt(int64(d/time.Second), 10)
}

// Resolve applies documented defaults for every optional variable
// absent from set and parses the result into a Spec. Supplied values
// are used unchanged; a value that cannot be parsed or is out of range
// returns an [InvalidValueError]. Server invocation fields come from
// settings after the override section for the resolved ENVIRONMENT is
// applied.
//
// Resolve is a pure function of its inputs.
func Resolve(set envset.Set, settings *config.Settings) (Spec, error) {
	values := make(map[string]string, len(OptionalKeys))
	spec := Spec{defaults: make(map[string]string)}
	for _, key := range OptionalKeys {
		if set.Has(key.Name) {
			values[key.Name] = set.Get(key.Name)
			continue
		}
		values[key.Name] = key.Default
		spec.Defaulted = append(spec.Defaulted, key.Name)
		spec.defaults[key.Name] = key.Default
	}

	environment, err := config.ParseEnvironment(values[KeyEnvironment])
	if err != nil {
		return Spec{}, &InvalidValueError{Key: KeyEnvironment, Value: values[KeyEnvironment],
			Reason: "must be development, staging, or production"}
	}
	spec.Environment = environment

	spec.Host = values[KeyHost]
	if strings.TrimSpace(spec.Host) == "" {
		return Spec{}, &InvalidValueError{Key: KeyHost, Value: values[KeyHost], Reason: "must not be blank"}
	}

	if spec.Port, err = parseInt(KeyPort, values[KeyPort], 1, 65535); err != nil {
		return Spec{}, err
	}
	if spec.Workers, err = parseInt(KeyWorkers, values[KeyWorkers], 1, 1024); err != nil {
		return Spec{}, err
	}

	spec.LogLevel = values[KeyLogLevel]
	if !isLogLevel(spec.LogLevel) {
		return Spec{}, &InvalidValueError{Key: KeyLogLevel, Value: spec.LogLevel,
			Reason: "must be one of " + strings.Join(LogLevels, ", ")}
	}

	if spec.RequestTimeout, err = parseSeconds(KeyRequestTimeout, values[KeyRequestTimeout]); err != nil {
		return Spec{}, err
	}
	if spec.KeepAlive, err = parseSeconds(KeyKeepAlive, values[KeyKeepAlive]); err != nil {
		return Spec{}, err
	}
	if spec.GracefulTimeout, err = parseSeconds(KeyGracefulTimeout, values[KeyGracefulTimeout]); err != nil {
		return Spec{}, err
	}

	// Per-environment overrides are applied to a copy; settings is
	// never modified.
	server := settings.ForEnvironment(environment).Server
	if !server.GracefulTimeout {
		spec.GracefulTimeout = 0
	}
	spec.Executable = server.Executable
	spec.App = server.App
	spec.WorkerClass = server.WorkerClass
	spec.AccessLog = server.AccessLog
	spec.ExtraArgs = append([]string(nil), server.ExtraArgs...)

	return spec, nil
}

func parseInt(key, value string, minimum, maximum int) (int, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &InvalidValueError{Key: key, Value: value, Reason: "must be an integer"}
	}
	if parsed < minimum || parsed > maximum {
		return 0, &InvalidValueError{Key: key, Value: value,
			Reason: "must be between " + strconv.Itoa(minimum) + " and " + strconv.Itoa(maximum)}
	}
	return parsed, nil
}

func parseSeconds(key, value string) (time.Duration, error) {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, &InvalidValueError{Key: key, Value: value, Reason: "must be a whole number of seconds"}
	}
	if parsed < 0 {
		return 0, &InvalidValueError{Key: key, Value: value, Reason: "must not be negative"}
	}
	return time.Duration(parsed) * time.Second, nil
}

func isLogLevel(value string) bool {
	lower := strings.ToLower(value)
	for _, level := range LogLevels {
		if lower == level {
			return true
		}
	}
	return false
}
