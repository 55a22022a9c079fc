package format

import (
	"fmt"

	"domexport/internal/report"
)

// MaxCellWidth caps preview cells; longer values are truncated.
const MaxCellWidth = 40

// RenderRows renders up to limit rows (all when limit <= 0) under header.
// Numeric cells are right-aligned and a footer reports how many rows were
// left out.
func RenderRows(header []string, rows []*report.Row, m Mode, limit int) string {
	tb := NewTable(m)
	tb.Header(header...)

	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
	}
	numeric := make([]bool, len(header))
	for i := range numeric {
		numeric[i] = true
	}
	for _, r := range shown {
		cells := make([]any, len(header))
		for i, col := range header {
			v, _ := r.Get(col)
			if v.Kind() != report.Number && !v.IsNull() {
				numeric[i] = false
			}
			cells[i] = Truncate(v.String(), MaxCellWidth)
		}
		tb.Row(cells...)
	}

	cfgs := make([]ColumnConfig, 0, len(header))
	for i := range header {
		align := AlignLeft
		if numeric[i] && len(shown) > 0 {
			align = AlignRight
		}
		cfgs = append(cfgs, ColumnConfig{Number: i + 1, Align: align})
	}
	tb.Columns(cfgs...)

	if hidden := len(rows) - len(shown); hidden > 0 && len(header) > 0 {
		footer := make([]any, len(header))
		for i := range footer {
			footer[i] = ""
		}
		footer[0] = fmt.Sprintf("... %d more", hidden)
		tb.Footer(footer...)
	}
	return tb.String()
}

// Truncate shortens s to maxLen runes, appending "..." if truncated.
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
