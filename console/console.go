// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/bacoco/BMad-Skills/installer"
)

// DocsURL is printed after a successful install.
const DocsURL = "https://github.com/bacoco/bmad-skills"

type styles struct {
	bright  lipgloss.Style
	info    lipgloss.Style
	stage   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		bright:  r.NewStyle().Bold(true),
		info:    r.NewStyle().Foreground(lipgloss.ANSIColor(termenv.ANSICyan)),
		stage:   r.NewStyle().Foreground(lipgloss.ANSIColor(termenv.ANSIBlue)),
		success: r.NewStyle().Foreground(lipgloss.ANSIColor(termenv.ANSIGreen)),
		warning: r.NewStyle().Foreground(lipgloss.ANSIColor(termenv.ANSIYellow)),
		failure: r.NewStyle().Foreground(lipgloss.ANSIColor(termenv.ANSIRed)),
	}
}

// Printer writes human-readable install progress and command output.
// It implements installer.Reporter.
type Printer struct {
	w     io.Writer
	style styles
}

var _ installer.Reporter = (*Printer)(nil)

// Option configures a Printer.
type Option func(*printerConfig)

type printerConfig struct {
	color *bool
}

// WithColor forces colored output on or off.
func WithColor(enabled bool) Option {
	return func(c *printerConfig) {
		c.color = &enabled
	}
}

// New returns a Printer writing to w. Colors are used when w is a terminal
// unless WithColor says otherwise.
func New(w io.Writer, opts ...Option) *Printer {
	cfg := &printerConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	color := IsTerminal(w)
	if cfg.color != nil {
		color = *cfg.color
	}

	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{w: w, style: newStyles(r)}
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) line(s lipgloss.Style, format string, args ...any) {
	_, _ = fmt.Fprintln(p.w, s.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) blank() {
	_, _ = fmt.Fprintln(p.w)
}

// Plain prints an unstyled line.
func (p *Printer) Plain(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

// Info prints a cyan line.
func (p *Printer) Info(format string, args ...any) {
	p.line(p.style.info, format, args...)
}

// Success prints a green line.
func (p *Printer) Success(format string, args ...any) {
	p.line(p.style.success, format, args...)
}

// Warn prints a yellow line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.style.warning, format, args...)
}

// Error prints a red line.
func (p *Printer) Error(format string, args ...any) {
	p.line(p.style.failure, format, args...)
}

// Title prints a bold line.
func (p *Printer) Title(format string, args ...any) {
	p.line(p.style.bright, format, args...)
}
