// Package printer writes streamed model output to the terminal.
package printer

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const defaultWidth = 80

var (
	statStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// Printer prints callback output. Chunks are written as they arrive unless
// markdown rendering is on, in which case the text is rendered once at the end.
type Printer struct {
	out    io.Writer
	errOut io.Writer
	render bool

	chunks int
	text   strings.Builder
}

// New creates a Printer writing text to out and statistics to errOut.
func New(out, errOut io.Writer, render bool) *Printer {
	return &Printer{out: out, errOut: errOut, render: render}
}

// OnStreamReceived implements dispatch.Callback. Escape sequences in model
// output are stripped before they reach the terminal.
func (p *Printer) OnStreamReceived(chunk string) {
	chunk = ansi.Strip(chunk)
	p.chunks++
	p.text.WriteString(chunk)
	if !p.render {
		fmt.Fprint(p.out, chunk)
	}
}

// OnStatStreamReceived implements dispatch.Callback.
func (p *Printer) OnStatStreamReceived(tps float32) {
	fmt.Fprintln(p.errOut)
	fmt.Fprintln(p.errOut, statStyle.Render(fmt.Sprintf("%.1f chunks/s", tps)))
}

// Finish prints what is left once inference returned result. A result is
// only printed when nothing was streamed.
func (p *Printer) Finish(result string) error {
	text := p.text.String()
	if p.chunks == 0 {
		text = ansi.Strip(result)
	}

	if !p.render {
		if p.chunks == 0 {
			fmt.Fprint(p.out, text)
		}
		fmt.Fprintln(p.out)
		return nil
	}

	rendered, err := p.markdown(text)
	if err != nil {
		return fmt.Errorf("could not render markdown: %w", err)
	}
	fmt.Fprint(p.out, rendered)
	return nil
}

// Error prints err to the error writer.
func (p *Printer) Error(err error) {
	fmt.Fprintln(p.errOut, errorStyle.Render("error: "+err.Error()))
}

func (p *Printer) markdown(text string) (string, error) {
	opts := []glamour.TermRendererOption{glamour.WithStylePath("notty")}
	width := defaultWidth

	if f, ok := p.out.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		style := "light"
		if termenv.HasDarkBackground() {
			style = "dark"
		}
		opts = []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			width = w
		}
	}

	renderer, err := glamour.NewTermRenderer(append(opts, glamour.WithWordWrap(width))...)
	if err != nil {
		return "", err
	}
	return renderer.Render(text)
}
