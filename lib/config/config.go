// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/marketing-generator/mg-launch/lib/envset"
)

// Environment represents the deployment environment tag carried in the
// ENVIRONMENT variable.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// ParseEnvironment validates an environment tag. Matching is
// case-insensitive; the returned value is always lower case.
func ParseEnvironment(value string) (Environment, error) {
	switch environment := Environment(strings.ToLower(strings.TrimSpace(value))); environment {
	case Development, Staging, Production:
		return environment, nil
	}
	return "", fmt.Errorf("invalid environment %q (must be development, staging, or production)", value)
}

// Variables that control the launcher itself rather than the server.
const (
	// ConfigFileVariable names the settings file, equivalent to --config.
	ConfigFileVariable = "MG_LAUNCH_CONFIG"

	// DotenvVariable names the dotenv file layered under the process
	// environment. Defaults to DefaultDotenvPath.
	DotenvVariable = "MG_LAUNCH_DOTENV"

	// SmokeCheckVariable enables the dependency smoke-check when set to
	// a true boolean value ("1", "true", ...).
	SmokeCheckVariable = "STARTUP_SMOKE_CHECK"
)

// DefaultDotenvPath is the dotenv file consulted when DotenvVariable is
// unset. Relative to the working directory, like the API server's own
// dotenv loading.
const DefaultDotenvPath = ".env"

// DefaultRequired lists the variables the API server cannot start
// without: A2E image/video generation credentials, the OpenAI key, and
// the Supabase endpoint, service key, and JWT signing secret.
var DefaultRequired = []string{
	"A2E_API_KEY",
	"A2E_BASE_URL",
	"OPENAI_API_KEY",
	"SUPABASE_URL",
	"SUPABASE_SERVICE_KEY",
	"SUPABASE_JWT_SECRET",
}

// Duration is a time.Duration that decodes from Go duration strings
// ("10s", "1m30s") in both YAML and JSON settings files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats the duration the way time.Duration does.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var text string
	if err := node.Decode(&text); err != nil {
		return fmt.Errorf("line %d: duration must be a string like \"10s\"", node.Line)
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("duration must be a string like \"10s\"")
	}
	parsed, err := time.ParseDuration(text)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Settings configures how the launcher validates the environment and
// which server process it becomes.
type Settings struct {
	// Required replaces DefaultRequired when set. An explicitly empty
	// list is rejected by Validate.
	Required []string `yaml:"required" json:"required"`

	// Server configures the process that replaces the launcher.
	Server ServerSettings `yaml:"server" json:"server"`

	// SmokeCheck configures the pre-launch dependency probe.
	SmokeCheck SmokeCheckSettings `yaml:"smoke_check" json:"smoke_check"`

	// Health configures the container health probe.
	Health HealthSettings `yaml:"health" json:"health"`

	// Per-environment overrides, applied by ApplyEnvironment once the
	// ENVIRONMENT tag is known.
	Development *Overrides `yaml:"development,omitempty" json:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty" json:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty" json:"production,omitempty"`
}

// ServerSettings configures the production process manager invocation.
type ServerSettings struct {
	// Executable is the process manager binary, resolved against PATH
	// unless absolute.
	// Default: gunicorn
	Executable string `yaml:"executable" json:"executable"`

	// App is the WSGI/ASGI application reference.
	// Default: app:app
	App string `yaml:"app" json:"app"`

	// WorkerClass is the gunicorn worker class.
	// Default: uvicorn.workers.UvicornWorker
	WorkerClass string `yaml:"worker_class" json:"worker_class"`

	// GracefulTimeout controls whether --graceful-timeout is passed.
	// Default: true
	GracefulTimeout bool `yaml:"graceful_timeout" json:"graceful_timeout"`

	// AccessLog routes access and error logs to stdout/stderr.
	// Default: true
	AccessLog bool `yaml:"access_log" json:"access_log"`

	// ExtraArgs are appended verbatim after the derived arguments.
	ExtraArgs []string `yaml:"extra_args" json:"extra_args"`
}

// SmokeCheckSettings configures the Supabase pre-flight probe.
type SmokeCheckSettings struct {
	// Enabled turns the probe on. The --smoke-check flag and the
	// STARTUP_SMOKE_CHECK variable can also enable it.
	// Default: false
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Timeout bounds the probe request.
	// Default: 10s
	Timeout Duration `yaml:"timeout" json:"timeout"`

	// Table is queried with select=count&limit=1.
	// Default: marketing_generations
	Table string `yaml:"table" json:"table"`
}

// HealthSettings configures the /health probe used by the container
// health check.
type HealthSettings struct {
	// Path is the request path on the local server.
	// Default: /health
	Path string `yaml:"path" json:"path"`

	// Timeout bounds the probe request.
	// Default: 5s
	Timeout Duration `yaml:"timeout" json:"timeout"`
}

// Overrides contains fields that can be overridden per environment.
type Overrides struct {
	Server     *ServerOverrides     `yaml:"server,omitempty" json:"server,omitempty"`
	SmokeCheck *SmokeCheckOverrides `yaml:"smoke_check,omitempty" json:"smoke_check,omitempty"`
}

// ServerOverrides replaces non-empty server fields.
type ServerOverrides struct {
	Executable      string   `yaml:"executable,omitempty" json:"executable,omitempty"`
	App             string   `yaml:"app,omitempty" json:"app,omitempty"`
	WorkerClass     string   `yaml:"worker_class,omitempty" json:"worker_class,omitempty"`
	GracefulTimeout *bool    `yaml:"graceful_timeout,omitempty" json:"graceful_timeout,omitempty"`
	AccessLog       *bool    `yaml:"access_log,omitempty" json:"access_log,omitempty"`
	ExtraArgs       []string `yaml:"extra_args,omitempty" json:"extra_args,omitempty"`
}

// SmokeCheckOverrides replaces set smoke-check fields.
type SmokeCheckOverrides struct {
	Enabled *bool    `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Timeout Duration `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	Table   string   `yaml:"table,omitempty" json:"table,omitempty"`
}

// Default returns the settings used when no settings file is given.
func Default() *Settings {
	return &Settings{
		Required: append([]string(nil), DefaultRequired...),
		Server: ServerSettings{
			Executable:      "gunicorn",
			App:             "app:app",
			WorkerClass:     "uvicorn.workers.UvicornWorker",
			GracefulTimeout: true,
			AccessLog:       true,
		},
		SmokeCheck: SmokeCheckSettings{
			Enabled: false,
			Timeout: Duration(10 * time.Second),
			Table:   "marketing_generations",
		},
		Health: HealthSettings{
			Path:    "/health",
			Timeout: Duration(5 * time.Second),
		},
	}
}

// Load returns the settings named by MG_LAUNCH_CONFIG in set, or
// Default() when the variable is unset. Unlike an explicit --config
// path, an unset variable is not an error: every field has a working
// default for the standard container image.
func Load(set envset.Set) (*Settings, error) {
	path := set.Get(ConfigFileVariable)
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile loads settings from path, merging over Default(). Files
// ending in .json or .jsonc are parsed as JSON with comments and
// trailing commas; everything else is parsed as YAML. Unknown fields
// are rejected in both formats so typos fail loudly at startup.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings file: %w", err)
	}

	settings := Default()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(settings); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		// An empty file decodes to io.EOF; treat it as "all defaults".
		if err := decoder.Decode(settings); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	return settings, nil
}

// ApplyEnvironment applies the override section matching environment.
// Call it once, after the ENVIRONMENT tag has been resolved.
func (s *Settings) ApplyEnvironment(environment Environment) {
	var overrides *Overrides
	switch environment {
	case Development:
		overrides = s.Development
	case Staging:
		overrides = s.Staging
	case Production:
		overrides = s.Production
	}
	if overrides == nil {
		return
	}

	if server := overrides.Server; server != nil {
		if server.Executable != "" {
			s.Server.Executable = server.Executable
		}
		if server.App != "" {
			s.Server.App = server.App
		}
		if server.WorkerClass != "" {
			s.Server.WorkerClass = server.WorkerClass
		}
		if server.GracefulTimeout != nil {
			s.Server.GracefulTimeout = *server.GracefulTimeout
		}
		if server.AccessLog != nil {
			s.Server.AccessLog = *server.AccessLog
		}
		if server.ExtraArgs != nil {
			s.Server.ExtraArgs = server.ExtraArgs
		}
	}

	if smoke := overrides.SmokeCheck; smoke != nil {
		if smoke.Enabled != nil {
			s.SmokeCheck.Enabled = *smoke.Enabled
		}
		if smoke.Timeout > 0 {
			s.SmokeCheck.Timeout = smoke.Timeout
		}
		if smoke.Table != "" {
			s.SmokeCheck.Table = smoke.Table
		}
	}
}

// ForEnvironment returns a copy of s with the matching override
// section applied. s itself is not modified.
func (s *Settings) ForEnvironment(environment Environment) *Settings {
	effective := *s
	effective.Required = append([]string(nil), s.Required...)
	effective.Server.ExtraArgs = append([]string(nil), s.Server.ExtraArgs...)
	effective.ApplyEnvironment(environment)
	return &effective
}

// SmokeCheckRequested reports whether set enables the smoke-check via
// STARTUP_SMOKE_CHECK. Unset or empty means false.
func SmokeCheckRequested(set envset.Set) (bool, error) {
	value := set.Get(SmokeCheckVariable)
	if value == "" {
		return false, nil
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s=%q is not a boolean", SmokeCheckVariable, value)
	}
	return enabled, nil
}

var variableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks the settings for errors. All problems are reported
// together.
func (s *Settings) Validate() error {
	var errs []error

	if len(s.Required) == 0 {
		errs = append(errs, fmt.Errorf("required must list at least one variable"))
	}
	seen := make(map[string]bool, len(s.Required))
	for _, name := range s.Required {
		if !variableName.MatchString(name) {
			errs = append(errs, fmt.Errorf("required: %q is not a valid variable name", name))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("required: %s listed more than once", name))
		}
		seen[name] = true
	}

	if s.Server.Executable == "" {
		errs = append(errs, fmt.Errorf("server.executable is required"))
	}
	if s.Server.App == "" {
		errs = append(errs, fmt.Errorf("server.app is required"))
	}

	if s.SmokeCheck.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("smoke_check.timeout must be positive"))
	}
	if s.SmokeCheck.Table == "" {
		errs = append(errs, fmt.Errorf("smoke_check.table is required"))
	}

	if !strings.HasPrefix(s.Health.Path, "/") {
		errs = append(errs, fmt.Errorf("health.path must start with /"))
	}
	if s.Health.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("health.timeout must be positive"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
