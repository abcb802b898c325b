// Package output renders centroctl results as tables, JSON or YAML.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Format is an output format selected with --output.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat parses a --output value. An empty value means table.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "table", "":
		return FormatTable, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("invalid output format: %q (valid: table, json, yaml)", s)
	}
}

func (f Format) String() string {
	return string(f)
}

// Printer writes results and status lines in one format.
type Printer struct {
	out    io.Writer
	format Format
	color  bool
}

// NewPrinter returns a printer writing to out. Color is enabled only when
// out is a terminal and NO_COLOR is unset.
func NewPrinter(out io.Writer, format Format) *Printer {
	return &Printer{out: out, format: format, color: colorable(out)}
}

// WithColor forces color on or off.
func (p *Printer) WithColor(on bool) *Printer {
	p.color = on
	return p
}

func colorable(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *Printer) Format() Format {
	return p.format
}

func (p *Printer) Writer() io.Writer {
	return p.out
}

func (p *Printer) ColorEnabled() bool {
	return p.color
}

// Print renders data. In table format data must implement TableRenderer,
// otherwise it is printed as JSON.
func (p *Printer) Print(data any) error {
	switch p.format {
	case FormatTable:
		if renderer, ok := data.(TableRenderer); ok {
			return PrintTable(p.out, renderer)
		}
		return PrintJSON(p.out, data)
	case FormatJSON:
		return PrintJSON(p.out, data)
	case FormatYAML:
		return PrintJSONAsYAML(p.out, data)
	default:
		return fmt.Errorf("unknown format: %s", p.format)
	}
}

// Structured reports whether the printer emits machine-readable output,
// in which case status lines should be suppressed.
func (p *Printer) Structured() bool {
	return p.format == FormatJSON || p.format == FormatYAML
}

func (p *Printer) Println(args ...any) {
	_, _ = fmt.Fprintln(p.out, args...)
}

func (p *Printer) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) Success(msg string) { p.colored("32", msg) }

func (p *Printer) Error(msg string) { p.colored("31", msg) }

func (p *Printer) Warning(msg string) { p.colored("33", msg) }

func (p *Printer) colored(code, msg string) {
	if p.color {
		_, _ = fmt.Fprintf(p.out, "\033[%sm%s\033[0m\n", code, msg)
		return
	}
	_, _ = fmt.Fprintln(p.out, msg)
}

// Partial warns that some centros did not answer. It prints nothing when
// failed is empty or the output is structured.
func (p *Printer) Partial(failed []string) {
	if len(failed) == 0 || p.Structured() {
		return
	}
	p.Warning(fmt.Sprintf("Partial result: %s did not respond", strings.Join(failed, ", ")))
}
