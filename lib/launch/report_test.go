// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/marketing-generator/mg-launch/lib/config"
)

func TestReport_Missing(t *testing.T) {
	var buffer bytes.Buffer
	PlainReport(&buffer).Missing([]string{"OPENAI_API_KEY", "SUPABASE_URL"})

	want := "[FAIL] Missing 2 required environment variable(s):\n" +
		"       - OPENAI_API_KEY\n" +
		"       - SUPABASE_URL\n" +
		"       Refusing to start the server until these are set.\n"
	if buffer.String() != want {
		t.Errorf("Missing() wrote:\n%s\nwant:\n%s", buffer.String(), want)
	}
}

func TestReport_SmokeCheck(t *testing.T) {
	var buffer bytes.Buffer
	report := PlainReport(&buffer)

	report.SmokeCheck(nil)
	report.SmokeCheck(errors.New("status 401"))

	lines := strings.Split(strings.TrimSpace(buffer.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), buffer.String())
	}
	if lines[0] != "[ OK ] Dependency smoke-check passed" {
		t.Errorf("pass line = %q", lines[0])
	}
	if lines[1] != "[FAIL] CRITICAL: dependency smoke-check failed: status 401" {
		t.Errorf("fail line = %q", lines[1])
	}
}

func TestReport_Banner(t *testing.T) {
	spec, err := Resolve(completeEnvironment(map[string]string{"PORT": "8080", "GRACEFUL_TIMEOUT": "0"}), config.Default())
	if err != nil {
		t.Fatalf("Resolve() error: %v", err)
	}

	var buffer bytes.Buffer
	PlainReport(&buffer).Banner(spec)
	output := buffer.String()

	for _, want := range []string{
		"Marketing Generator API",
		"Environment: production",
		"Bind:        0.0.0.0:8080",
		"Workers:     2",
		"graceful off",
		"gunicorn app:app (uvicorn.workers.UvicornWorker)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("banner missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Defaults:    none") {
		t.Errorf("banner claims no defaults were applied:\n%s", output)
	}
	if strings.Contains(output, "\x1b[") {
		t.Errorf("plain banner contains escape sequences:\n%s", output)
	}
}
