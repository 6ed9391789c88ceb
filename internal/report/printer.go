// Package report renders everything the user sees on stdout: severity
// tagged progress lines, the status table and the plan.
package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Severity markers.
const (
	markOK   = "✓"
	markWarn = "!"
	markFail = "✗"
	markStep = "→"
)

// Printer writes styled lines to a writer. Colors are used only when the
// writer is a terminal that supports them.
type Printer struct {
	w io.Writer
	r *lipgloss.Renderer

	ok    lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	step  lipgloss.Style
	title lipgloss.Style
	dim   lipgloss.Style
}

// NewPrinter creates a Printer for w.
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		r:     r,
		ok:    r.NewStyle().Foreground(lipgloss.Color("42")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("214")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
		step:  r.NewStyle().Foreground(lipgloss.Color("39")),
		title: r.NewStyle().Bold(true),
		dim:   r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// OK prints a success line.
func (p *Printer) OK(format string, args ...any) {
	p.line(p.ok, markOK, format, args...)
}

// Warn prints a warning line.
func (p *Printer) Warn(format string, args ...any) {
	p.line(p.warn, markWarn, format, args...)
}

// Fail prints an error line.
func (p *Printer) Fail(format string, args ...any) {
	p.line(p.fail, markFail, format, args...)
}

// Step announces an action about to run.
func (p *Printer) Step(format string, args ...any) {
	p.line(p.step, markStep, format, args...)
}

// Info prints an unmarked, indented line.
func (p *Printer) Info(format string, args ...any) {
	fmt.Fprintf(p.w, "  %s\n", fmt.Sprintf(format, args...))
}

// Title prints a section heading preceded by a blank line.
func (p *Printer) Title(text string) {
	fmt.Fprintf(p.w, "\n%s\n", p.title.Render(text))
}

func (p *Printer) line(style lipgloss.Style, mark, format string, args ...any) {
	fmt.Fprintf(p.w, "%s %s\n", style.Render(mark), fmt.Sprintf(format, args...))
}
