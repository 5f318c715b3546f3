// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package smokecheck

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/marketing-generator/mg-launch/lib/config"
	"github.com/marketing-generator/mg-launch/lib/envset"
	"github.com/marketing-generator/mg-launch/lib/netutil"
)

// Variables read from the configuration set.
const (
	URLVariable        = "SUPABASE_URL"
	ServiceKeyVariable = "SUPABASE_SERVICE_KEY"
)

// DefaultTimeout bounds the request when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// Error describes a failed smoke-check. Status is 0 when no response
// was received.
type Error struct {
	URL    string
	Status int
	Body   string
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("supabase smoke-check GET %s: %v", e.URL, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("supabase smoke-check GET %s: HTTP %d: %s", e.URL, e.Status, e.Body)
	}
	return fmt.Sprintf("supabase smoke-check GET %s: HTTP %d", e.URL, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode reports the smoke-check failure as a configuration failure.
func (e *Error) ExitCode() int { return 1 }

// Supabase probes the Supabase REST endpoint.
type Supabase struct {
	// Client sends the request. Nil means a client with no timeout of
	// its own; the request is bounded by Timeout through its context.
	Client *http.Client

	// Timeout bounds the whole request. Zero means DefaultTimeout.
	Timeout time.Duration

	// Table is the table queried with select=count&limit=1.
	Table string
}

// New returns a Supabase checker configured from settings.
func New(settings config.SmokeCheckSettings) *Supabase {
	return &Supabase{
		Timeout: settings.Timeout.Std(),
		Table:   settings.Table,
	}
}

// Endpoint returns the probe URL for the given Supabase base URL.
func (s *Supabase) Endpoint(base string) (string, error) {
	parsed, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parsing %s: %w", URLVariable, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("%s must be an http or https URL, got scheme %q", URLVariable, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%s has no host", URLVariable)
	}
	table := s.Table
	if table == "" {
		table = "marketing_generations"
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/") + "/rest/v1/" + table
	parsed.RawQuery = "select=count&limit=1"
	return parsed.String(), nil
}

// Check sends the probe using SUPABASE_URL and SUPABASE_SERVICE_KEY
// from set.
func (s *Supabase) Check(ctx context.Context, set envset.Set) error {
	endpoint, err := s.Endpoint(set.Get(URLVariable))
	if err != nil {
		return &Error{URL: set.Get(URLVariable), Err: err}
	}
	serviceKey := set.Get(ServiceKeyVariable)
	if serviceKey == "" {
		return &Error{URL: endpoint, Err: fmt.Errorf("%s is not set", ServiceKeyVariable)}
	}

	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &Error{URL: endpoint, Err: err}
	}
	request.Header.Set("apikey", serviceKey)
	request.Header.Set("Authorization", "Bearer "+serviceKey)
	request.Header.Set("Accept", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			err = fmt.Errorf("no response within %s: %w", timeout, err)
		}
		return &Error{URL: endpoint, Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return &Error{URL: endpoint, Status: response.StatusCode, Body: netutil.ErrorBody(response.Body)}
	}
	// Drain so the connection can be reused; the count itself is unused.
	_, _ = netutil.ReadResponse(response.Body)
	return nil
}
