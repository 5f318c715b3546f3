// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package healthcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/marketing-generator/mg-launch/lib/netutil"
)

// Status values reported by the server.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DefaultTimeout bounds the probe when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Component is the status of one server dependency.
type Component struct {
	Status string `json:"status"`
	Type   string `json:"type,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Report is the body of the health endpoint.
type Report struct {
	Status      string               `json:"status"`
	Timestamp   string               `json:"timestamp,omitempty"`
	Service     string               `json:"service,omitempty"`
	Version     string               `json:"version,omitempty"`
	Environment string               `json:"environment,omitempty"`
	Production  bool                 `json:"production,omitempty"`
	Components  map[string]Component `json:"components,omitempty"`
}

// Result is a successful probe.
type Result struct {
	URL    string
	Report Report
}

// Degraded reports whether the server answered 200 but flagged itself
// or a component as not fully healthy.
func (r *Result) Degraded() bool {
	return r.Report.Status == StatusDegraded || len(r.DegradedComponents()) > 0
}

// DegradedComponents returns the sorted names of components whose
// status is not healthy.
func (r *Result) DegradedComponents() []string {
	var names []string
	for name, component := range r.Report.Components {
		if component.Status != StatusHealthy {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Error describes a failed probe. Status is 0 when no response was
// received. Report is populated when an error response carried a
// decodable body.
type Error struct {
	URL    string
	Status int
	Body   string
	Report *Report
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("health check GET %s: %v", e.URL, e.Err)
	case e.Report != nil && len(e.Report.Components) > 0:
		var unhealthy []string
		for name, component := range e.Report.Components {
			if component.Status == StatusUnhealthy {
				unhealthy = append(unhealthy, name)
			}
		}
		sort.Strings(unhealthy)
		return fmt.Sprintf("health check GET %s: HTTP %d (%s), unhealthy components: %s",
			e.URL, e.Status, e.Report.Status, strings.Join(unhealthy, ", "))
	case e.Body != "":
		return fmt.Sprintf("health check GET %s: HTTP %d: %s", e.URL, e.Status, e.Body)
	default:
		return fmt.Sprintf("health check GET %s: HTTP %d", e.URL, e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// ExitCode is 1 for every health failure.
func (e *Error) ExitCode() int { return 1 }

// LocalURL returns the health endpoint URL for a server listening on
// port on the loopback interface.
func LocalURL(port int, path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return "http://" + net.JoinHostPort("127.0.0.1", fmt.Sprint(port)) + path
}

// Probe sends one GET to url, bounded by timeout (DefaultTimeout when
// zero), using client (http.DefaultClient when nil).
func Probe(ctx context.Context, client *http.Client, url string, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if client == nil {
		client = http.DefaultClient
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	request.Header.Set("Accept", "application/json")

	response, err := client.Do(request)
	if err != nil {
		return nil, &Error{URL: url, Err: err}
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, &Error{URL: url, Status: response.StatusCode, Err: fmt.Errorf("reading response body: %w", err)}
	}

	if response.StatusCode != http.StatusOK {
		failure := &Error{URL: url, Status: response.StatusCode}
		var report Report
		if json.Unmarshal(body, &report) == nil && report.Status != "" {
			failure.Report = &report
		} else {
			failure.Body = netutil.Truncate(string(bytes.TrimSpace(body)), netutil.MaxErrorBodyLength)
		}
		return nil, failure
	}

	result := &Result{URL: url}
	if len(bytes.TrimSpace(body)) == 0 {
		result.Report.Status = StatusHealthy
		return result, nil
	}
	if err := json.Unmarshal(body, &result.Report); err != nil {
		return nil, &Error{URL: url, Status: response.StatusCode, Err: fmt.Errorf("decoding health report: %w", err)}
	}
	if result.Report.Status == StatusUnhealthy {
		return nil, &Error{URL: url, Status: response.StatusCode, Report: &result.Report}
	}
	return result, nil
}
