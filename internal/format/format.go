// Package format renders flattened report rows as terminal or Markdown
// tables for a quick look at an export.
package format

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Mode controls the output format.
type Mode int

const (
	ASCII    Mode = iota // Fixed-width terminal tables
	Markdown             // GitHub-flavoured Markdown tables
)

// ParseMode maps "ascii" and "markdown"/"md" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "ascii":
		return ASCII, nil
	case "markdown", "md":
		return Markdown, nil
	}
	return ASCII, fmt.Errorf("unknown preview format %q (want ascii or markdown)", s)
}

// ColumnAlign specifies the horizontal alignment for a column.
type ColumnAlign int

const (
	AlignDefault ColumnAlign = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// ColumnConfig controls per-column formatting.
type ColumnConfig struct {
	Number   int         // 1-based column index
	Align    ColumnAlign // horizontal alignment
	MaxWidth int         // truncate or wrap content beyond this width (0 = unlimited)
}

// TableBuilder is the table abstraction used by the export preview. A table
// is filled once and rendered as ASCII or Markdown depending on the Mode given
// to NewTable.
type TableBuilder interface {
	// Header sets the column headers, normally the CSV header.
	Header(cols ...string)
	// Row appends a data row. Values are converted to strings via fmt Sprint.
	Row(vals ...any)
	// Footer appends a footer row, such as the count of rows left out.
	Footer(vals ...any)
	// Columns applies per-column alignment and width limits.
	Columns(cfgs ...ColumnConfig)
	// String renders the table in the configured Mode.
	String() string
}

// NewTable returns a TableBuilder that renders in the given Mode.
func NewTable(m Mode) TableBuilder {
	w := table.NewWriter()
	switch m {
	case ASCII:
		w.SetStyle(table.StyleLight)
	case Markdown:
		// RenderMarkdown ignores the style.
	}
	return &prettyAdapter{writer: w, mode: m}
}

// prettyAdapter implements TableBuilder on top of a go-pretty table.Writer.
type prettyAdapter struct {
	writer table.Writer
	mode   Mode
}

func toRow[T any](vals []T) table.Row {
	row := make(table.Row, len(vals))
	for i, v := range vals {
		row[i] = v
	}
	return row
}

func (a *prettyAdapter) Header(cols ...string) { a.writer.AppendHeader(toRow(cols)) }

func (a *prettyAdapter) Row(vals ...any) { a.writer.AppendRow(toRow(vals)) }

func (a *prettyAdapter) Footer(vals ...any) { a.writer.AppendFooter(toRow(vals)) }

func (a *prettyAdapter) Columns(cfgs ...ColumnConfig) {
	configs := make([]table.ColumnConfig, 0, len(cfgs))
	for _, c := range cfgs {
		configs = append(configs, table.ColumnConfig{
			Number:   c.Number,
			Align:    textAlign[c.Align],
			WidthMax: c.MaxWidth,
		})
	}
	a.writer.SetColumnConfigs(configs)
}

func (a *prettyAdapter) String() string {
	switch a.mode {
	case Markdown:
		return a.writer.RenderMarkdown()
	default:
		return a.writer.Render()
	}
}

// textAlign maps ColumnAlign to go-pretty; unknown values fall back to the
// zero text.Align, which is text.AlignDefault.
var textAlign = map[ColumnAlign]text.Align{
	AlignDefault: text.AlignDefault,
	AlignLeft:    text.AlignLeft,
	AlignCenter:  text.AlignCenter,
	AlignRight:   text.AlignRight,
}
