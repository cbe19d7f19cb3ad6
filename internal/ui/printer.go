package ui

import (
	"fmt"
	"io"
	"os"
)

// Printer writes styled command output
type Printer struct {
	out    io.Writer
	styles Styles
}

// NewPrinter creates a printer writing to out with the default theme
func NewPrinter(out io.Writer) *Printer {
	if out == nil {
		out = os.Stdout
	}
	return &Printer{out: out, styles: DefaultTheme().Styles()}
}

// Styles exposes the printer's styles for row styling
func (p *Printer) Styles() Styles {
	return p.styles
}

// Table renders t
func (p *Printer) Table(t *Table) {
	fmt.Fprintln(p.out, t.Render(p.styles))
}

// Panel renders panel
func (p *Printer) Panel(panel *Panel) {
	fmt.Fprintln(p.out, panel.Render(p.styles))
}

// Println writes a plain line
func (p *Printer) Println(a ...interface{}) {
	fmt.Fprintln(p.out, a...)
}

// Printf writes plain formatted text
func (p *Printer) Printf(format string, a ...interface{}) {
	fmt.Fprintf(p.out, format, a...)
}

// Info writes a muted line
func (p *Printer) Info(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.styles.MutedText.Render(fmt.Sprintf(format, a...)))
}

// Success writes a green line
func (p *Printer) Success(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.styles.SuccessText.Render(fmt.Sprintf(format, a...)))
}

// Warn writes a yellow line
func (p *Printer) Warn(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.styles.WarningText.Render(fmt.Sprintf(format, a...)))
}

// Error writes a red line
func (p *Printer) Error(format string, a ...interface{}) {
	fmt.Fprintln(p.out, p.styles.DangerText.Render(fmt.Sprintf(format, a...)))
}
