// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package healthcheck

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"testing"
	"time"
)

func healthServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server
}

const healthyBody = `{
	"status": "healthy",
	"service": "marketing-generator",
	"version": "3.0.0",
	"environment": "production",
	"production": true,
	"components": {
		"database": {"status": "healthy", "type": "supabase"},
		"configuration": {"status": "healthy"},
		"modules": {"status": "healthy"}
	}
}`

func TestProbe_Healthy(t *testing.T) {
	server := healthServer(t, http.StatusOK, healthyBody)

	result, err := Probe(context.Background(), nil, server.URL+"/health", time.Second)
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if result.Degraded() {
		t.Errorf("Degraded() = true for a healthy report")
	}
	if result.Report.Service != "marketing-generator" || result.Report.Version != "3.0.0" {
		t.Errorf("report = %+v", result.Report)
	}
}

func TestProbe_Degraded(t *testing.T) {
	server := healthServer(t, http.StatusOK, `{
		"status": "degraded",
		"components": {
			"database": {"status": "degraded", "error": "Query failed: timeout", "type": "supabase"},
			"modules": {"status": "healthy"}
		}
	}`)

	result, err := Probe(context.Background(), nil, server.URL+"/health", time.Second)
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if !result.Degraded() {
		t.Error("Degraded() = false for a degraded report")
	}
	if got := result.DegradedComponents(); !reflect.DeepEqual(got, []string{"database"}) {
		t.Errorf("DegradedComponents() = %v, want [database]", got)
	}
}

func TestProbe_Unhealthy(t *testing.T) {
	server := healthServer(t, http.StatusServiceUnavailable, `{
		"status": "unhealthy",
		"components": {
			"database": {"status": "unhealthy", "error": "Client not initialized"},
			"modules": {"status": "unhealthy"},
			"configuration": {"status": "healthy"}
		}
	}`)

	_, err := Probe(context.Background(), nil, server.URL+"/health", time.Second)

	var probeErr *Error
	if !errors.As(err, &probeErr) {
		t.Fatalf("Probe() = %v, want *Error", err)
	}
	if probeErr.Status != http.StatusServiceUnavailable || probeErr.ExitCode() != 1 {
		t.Errorf("Status=%d ExitCode=%d", probeErr.Status, probeErr.ExitCode())
	}
	if !strings.Contains(err.Error(), "database, modules") {
		t.Errorf("error %q does not name the unhealthy components", err)
	}
}

func TestProbe_OtherStatus(t *testing.T) {
	server := healthServer(t, http.StatusInternalServerError, "Internal Server Error")

	_, err := Probe(context.Background(), nil, server.URL+"/health", time.Second)

	var probeErr *Error
	if !errors.As(err, &probeErr) {
		t.Fatalf("Probe() = %v, want *Error", err)
	}
	if probeErr.Body != "Internal Server Error" {
		t.Errorf("Body = %q", probeErr.Body)
	}
}

func TestProbe_UnhealthyWith200(t *testing.T) {
	server := healthServer(t, http.StatusOK, `{"status":"unhealthy"}`)

	if _, err := Probe(context.Background(), nil, server.URL+"/health", time.Second); err == nil {
		t.Fatal("Probe() succeeded for an unhealthy report")
	}
}

func TestProbe_EmptyBody(t *testing.T) {
	server := healthServer(t, http.StatusOK, "")

	result, err := Probe(context.Background(), nil, server.URL+"/health", time.Second)
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if result.Report.Status != StatusHealthy {
		t.Errorf("Status = %q, want healthy", result.Report.Status)
	}
}

func TestProbe_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL + "/health"
	server.Close()

	_, err := Probe(context.Background(), nil, url, time.Second)

	var probeErr *Error
	if !errors.As(err, &probeErr) || probeErr.Err == nil {
		t.Fatalf("Probe() = %v, want transport *Error", err)
	}
}

func TestLocalURL(t *testing.T) {
	if got := LocalURL(5000, "/health"); got != "http://127.0.0.1:5000/health" {
		t.Errorf("LocalURL = %q", got)
	}
	if got := LocalURL(8080, "status"); got != "http://127.0.0.1:8080/status" {
		t.Errorf("LocalURL = %q", got)
	}
}
