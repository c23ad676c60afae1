package internal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	progressStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	noteTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			PaddingLeft(2)
)

// Printer writes status lines and notifications. Symbols and colors are used
// only when the destination is a terminal.
type Printer struct {
	Out io.Writer
	Err io.Writer
}

// NewPrinter creates a printer writing results to out and problems to errw.
func NewPrinter(out, errw io.Writer) *Printer {
	return &Printer{Out: out, Err: errw}
}

// Success prints a success line to Out
func (p *Printer) Success(message string) {
	p.line(p.Out, successStyle, "✓", "", message)
}

// Info prints an informational line to Out
func (p *Printer) Info(message string) {
	p.line(p.Out, progressStyle, "ℹ", "", message)
}

// Warning prints a warning line to Err
func (p *Printer) Warning(message string) {
	p.line(p.Err, warningStyle, "⚠", "WARNING: ", message)
}

// Error prints an error line to Err
func (p *Printer) Error(message string) {
	p.line(p.Err, errorStyle, "✗", "", message)
}

func (p *Printer) line(w io.Writer, style lipgloss.Style, symbol, plainPrefix, message string) {
	if isTerminal(w) {
		_, _ = fmt.Fprintf(w, "%s %s\n", style.Render(symbol), message)
		return
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", plainPrefix, message)
}

// Notify renders n as a title line followed by its indented text. Error
// notifications go to Err, the rest to Out.
func (p *Printer) Notify(n Notification) {
	w, style, symbol := p.Out, successStyle, "✓"
	switch n.Kind {
	case NotifyError:
		w, style, symbol = p.Err, errorStyle, "✗"
	case NotifyInfo:
		style, symbol = progressStyle, "ℹ"
	}

	if isTerminal(w) {
		_, _ = fmt.Fprintf(w, "%s %s\n", style.Render(symbol), style.Render(n.Title))
		if n.Text != "" {
			_, _ = fmt.Fprintln(w, noteTextStyle.Render(n.Text))
		}
		return
	}

	if n.Text == "" {
		_, _ = fmt.Fprintln(w, n.Title)
		return
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", n.Title, n.Text)
}

// Spin runs fn while showing message with a spinner on Err. Without a
// terminal the message is logged and fn runs plainly.
func (p *Printer) Spin(ctx context.Context, message string, fn func() error) error {
	if !isTerminal(p.Err) {
		LogInfo(message)
		return fn()
	}
	return p.spin(ctx, message, fn)
}

func (p *Printer) spin(ctx context.Context, message string, fn func() error) error {
	spinnerChars := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	done := make(chan error, 1)
	stop := make(chan struct{})
	spinnerDone := make(chan struct{})

	go func() {
		defer close(spinnerDone)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				char := spinnerChars[i%len(spinnerChars)]
				_, _ = fmt.Fprintf(p.Err, "\r%s %s", progressStyle.Render(char), message)
			}
		}
	}()

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		close(stop)
		<-spinnerDone
		if err != nil {
			_, _ = fmt.Fprintf(p.Err, "\r%s %s\n", errorStyle.Render("✗"), message)
			return err
		}
		_, _ = fmt.Fprintf(p.Err, "\r%s %s\n", successStyle.Render("✓"), message)
		return nil
	case <-ctx.Done():
		close(stop)
		<-spinnerDone
		_, _ = fmt.Fprintln(p.Err)
		return ctx.Err()
	}
}

// isTerminal checks if the writer is a terminal
func isTerminal(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return false
		}
		return (stat.Mode() & os.ModeCharDevice) != 0
	}
	return false
}
