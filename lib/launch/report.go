// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package launch

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Report writes the human-readable startup status: the validation
// outcome, the resolved configuration banner, and the smoke-check
// result. It is separate from the structured log so operators reading
// `docker logs` see a compact summary even when the log stream is JSON.
type Report struct {
	w        io.Writer
	styled   bool
	renderer *lipgloss.Renderer
}

// NewReport returns a Report writing to w. Output is styled (bordered
// banner, colored status markers) only when w is a terminal.
func NewReport(w io.Writer) *Report {
	styled := false
	if file, ok := w.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		styled = true
	}
	return &Report{w: w, styled: styled, renderer: lipgloss.NewRenderer(w)}
}

// PlainReport returns a Report that never styles its output.
func PlainReport(w io.Writer) *Report {
	return &Report{w: w, renderer: lipgloss.NewRenderer(w)}
}

func (r *Report) marker(ok bool) string {
	text, color := "[FAIL]", "1"
	if ok {
		text, color = "[ OK ]", "2"
	}
	if !r.styled {
		return text
	}
	return r.renderer.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(text)
}

// Missing reports the absent required variables, one per line.
func (r *Report) Missing(keys []string) {
	fmt.Fprintf(r.w, "%s Missing %d required environment variable(s):\n", r.marker(false), len(keys))
	for _, key := range keys {
		fmt.Fprintf(r.w, "       - %s\n", key)
	}
	fmt.Fprintf(r.w, "       Refusing to start the server until these are set.\n")
}

// Valid confirms that all required variables are present.
func (r *Report) Valid(count int) {
	fmt.Fprintf(r.w, "%s All %d required environment variables are set\n", r.marker(true), count)
}

// Invalid reports an optional variable or settings problem.
func (r *Report) Invalid(err error) {
	fmt.Fprintf(r.w, "%s Invalid configuration: %v\n", r.marker(false), err)
}

// SmokeCheck reports the dependency probe outcome.
func (r *Report) SmokeCheck(err error) {
	if err != nil {
		fmt.Fprintf(r.w, "%s CRITICAL: dependency smoke-check failed: %v\n", r.marker(false), err)
		return
	}
	fmt.Fprintf(r.w, "%s Dependency smoke-check passed\n", r.marker(true))
}

// Banner prints the resolved configuration.
func (r *Report) Banner(spec Spec) {
	graceful := "off"
	if spec.GracefulTimeout > 0 {
		graceful = spec.GracefulTimeout.String()
	}
	server := spec.Executable + " " + spec.App
	if spec.WorkerClass != "" {
		server += " (" + spec.WorkerClass + ")"
	}
	defaults := "none"
	if len(spec.Defaulted) > 0 {
		defaults = strings.Join(spec.Defaulted, ", ")
	}

	lines := []string{
		"Marketing Generator API",
		"",
		field("Environment", string(spec.Environment)),
		field("Bind", spec.Bind()),
		field("Workers", fmt.Sprint(spec.Workers)),
		field("Log level", spec.LogLevel),
		field("Timeout", fmt.Sprintf("%s (keep-alive %s, graceful %s)",
			spec.RequestTimeout, spec.KeepAlive, graceful)),
		field("Server", server),
		field("Defaults", defaults),
	}
	body := strings.Join(lines, "\n")

	if !r.styled {
		rule := strings.Repeat("=", 60)
		fmt.Fprintf(r.w, "%s\n%s\n%s\n", rule, body, rule)
		return
	}
	style := r.renderer.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("63")).
		Padding(0, 2)
	fmt.Fprintln(r.w, style.Render(body))
}

func field(name, value string) string {
	return fmt.Sprintf("  %-12s %s", name+":", value)
}
