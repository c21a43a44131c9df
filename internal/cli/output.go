package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/mattn/go-isatty"
	"gopkg.in/yaml.v3"

	"github.com/studiowebux/text2image/internal/filter"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Printer renders command results in the selected format
type Printer struct {
	Out    io.Writer
	Format string
	// Expr narrows JSON output; nil prints the whole result
	Expr *filter.Expr
	// Color enables syntax highlighting of JSON output
	Color bool
}

// NewPrinter creates a printer for out. Color is enabled when out is a terminal.
func NewPrinter(out io.Writer, format, filterExpr, query string) (*Printer, error) {
	switch format {
	case "":
		format = FormatText
	case FormatText, FormatJSON, FormatYAML:
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, json or yaml)", format)
	}
	// a query only makes sense on structured output
	if (filterExpr != "" || query != "") && format == FormatText {
		format = FormatJSON
	}
	expr, err := filter.Compile(filterExpr, query)
	if err != nil {
		return nil, err
	}
	return &Printer{
		Out:    out,
		Format: format,
		Expr:   expr,
		Color:  IsTerminal(out),
	}, nil
}

// IsTerminal reports whether w is an interactive terminal
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Print writes v. text renders the human form for FormatText.
func (p *Printer) Print(v any, text func(w io.Writer)) error {
	switch p.Format {
	case FormatYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		_, err = p.Out.Write(data)
		return err

	case FormatJSON:
		if p.Expr != nil {
			out, err := p.Expr.Run(context.Background(), v)
			if err != nil {
				return err
			}
			return p.write(out.Text, out.JSON)
		}
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return p.write(string(data), true)
	}

	text(p.Out)
	return nil
}

// write prints s, highlighting it only when it is JSON
func (p *Printer) write(s string, isJSON bool) error {
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	if p.Color && isJSON {
		if err := quick.Highlight(p.Out, s, "json", "terminal256", "monokai"); err == nil {
			return nil
		}
	}
	_, err := io.WriteString(p.Out, s)
	return err
}
