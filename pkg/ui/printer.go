// Package ui renders user-facing output. Styles are built once from the
// color decision computed at startup; there is no mutable global color state.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ColorEnabled computes the color decision for the given stream. It honors
// NO_COLOR and CI before consulting the terminal.
func ColorEnabled(f *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("CI") != "" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Printer writes styled status lines to a single output stream.
type Printer struct {
	out io.Writer

	success lipgloss.Style
	warn    lipgloss.Style
	fail    lipgloss.Style
	header  lipgloss.Style
}

// NewPrinter builds a Printer. When color is false every style degrades to
// plain text.
func NewPrinter(out io.Writer, color bool) *Printer {
	base := lipgloss.NewStyle()
	p := &Printer{
		out:     out,
		success: base,
		warn:    base,
		fail:    base,
		header:  base,
	}
	if color {
		p.success = base.Foreground(lipgloss.Color("2"))
		p.warn = base.Foreground(lipgloss.Color("3"))
		p.fail = base.Foreground(lipgloss.Color("1"))
		p.header = base.Bold(true)
	}
	return p
}

func (p *Printer) Successf(format string, args ...any) {
	fmt.Fprintln(p.out, p.success.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintln(p.out, p.warn.Render("warning: "+fmt.Sprintf(format, args...)))
}

func (p *Printer) Errorf(format string, args ...any) {
	fmt.Fprintln(p.out, p.fail.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Headerf(format string, args ...any) {
	fmt.Fprintln(p.out, p.header.Render(fmt.Sprintf(format, args...)))
}

func (p *Printer) Plainf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
