// Package output prints styled command-line messages.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#7C3AED")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	primaryStyle = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
)

// Printer writes styled lines to w.
type Printer struct {
	w io.Writer
}

// New returns a Printer writing to w.
func New(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Success prints a success message
func (p *Printer) Success(format string, args ...interface{}) {
	p.line(successStyle.Render("✓ "), format, args...)
}

// Warning prints a warning message
func (p *Printer) Warning(format string, args ...interface{}) {
	p.line(warningStyle.Render("⚠ "), format, args...)
}

// Error prints an error message
func (p *Printer) Error(format string, args ...interface{}) {
	p.line(errorStyle.Render("✗ "), format, args...)
}

// Info prints an info message
func (p *Printer) Info(format string, args ...interface{}) {
	p.line(infoStyle.Render("ℹ "), format, args...)
}

// Muted prints a muted message
func (p *Printer) Muted(format string, args ...interface{}) {
	fmt.Fprintln(p.w, mutedStyle.Render(fmt.Sprintf(format, args...)))
}

// Section prints a section header
func (p *Printer) Section(title string) {
	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, primaryStyle.Render(title))
	fmt.Fprintln(p.w, mutedStyle.Render(strings.Repeat("═", lipgloss.Width(title))))
}

// KeyValue prints an aligned "key: value" row.
func (p *Printer) KeyValue(key string, value interface{}) {
	label := lipgloss.NewStyle().Width(16).Render(key + ":")
	fmt.Fprintf(p.w, "  %s %v\n", mutedStyle.Render(label), value)
}

func (p *Printer) line(icon, format string, args ...interface{}) {
	fmt.Fprint(p.w, icon)
	fmt.Fprintf(p.w, format+"\n", args...)
}
