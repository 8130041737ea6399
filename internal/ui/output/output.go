// Package output builds termenv outputs with consistent color handling and
// prints command results.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/tusk/internal/ui/style"
)

// ColorProfile returns Ascii when NO_COLOR is set and the detected profile otherwise.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// New creates a termenv.Output for w using ColorProfile.
func New(w io.Writer, opts ...termenv.OutputOption) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}

	opts = append(opts,
		termenv.WithProfile(ColorProfile()),
		termenv.WithTTY(true),
	)

	return termenv.NewOutput(w, opts...)
}

// Printer writes per-file result lines for the CLI.
type Printer struct {
	out *termenv.Output
}

// NewPrinter creates a Printer writing to w.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{out: New(w)}
}

// Success prints a line prefixed with a green check mark.
func (p *Printer) Success(subject, detail string) {
	p.line(style.Check, style.Green, subject, detail)
}

// Failure prints a line prefixed with a red cross.
func (p *Printer) Failure(subject string, err error) {
	p.line(style.Cross, style.Red, subject, err.Error())
}

// Pair prints a key and its rendered value.
func (p *Printer) Pair(key, value string) {
	k := p.out.String(key).Foreground(termenv.RGBColor(string(style.Accent)))
	_, _ = fmt.Fprintf(p.out, "%s = %s\n", k, value)
}

// Plain prints text unchanged.
func (p *Printer) Plain(text string) {
	_, _ = fmt.Fprintln(p.out, text)
}

func (p *Printer) line(glyph string, color lipgloss.Color, subject, detail string) {
	c := termenv.RGBColor(string(color))
	head := p.out.String(glyph + " " + subject).Foreground(c)
	if detail == "" {
		_, _ = fmt.Fprintln(p.out, head)
		return
	}
	tail := p.out.String(style.Arrow + " " + detail).Foreground(termenv.RGBColor(string(style.Muted)))
	_, _ = fmt.Fprintf(p.out, "%s %s\n", head, tail)
}
