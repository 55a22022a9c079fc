package report

import "fmt"

// AvgDomPctColumn is the column holding a record's average dominance.
const AvgDomPctColumn = FieldAvgDomPct

// DomPctColumn names the per-scenario dominance column.
func DomPctColumn(scenario string) string {
	return fmt.Sprintf("%s - Dom Pct", scenario)
}

// StatColumn names the column of one scenario stat.
func StatColumn(scenario, stat string) string {
	return fmt.Sprintf("%s - %s", scenario, stat)
}

// Flatten merges a record into one row, in order: user, userInput,
// avgDomPct, per-scenario Dom Pct, per-scenario stats. Colliding column
// names are not detected; the later section wins.
func Flatten(rec Record) *Row {
	row := NewRow()
	row.Merge(rec.User, rec.UserInput)
	row.Set(AvgDomPctColumn, rec.AvgDomPct)
	for _, f := range rec.ScenarioDomPct {
		row.Set(DomPctColumn(f.Key), f.Value)
	}
	for _, s := range rec.Output {
		for _, stat := range s.Stats {
			row.Set(StatColumn(s.Name, stat.Key), stat.Value)
		}
	}
	return row
}

// FlattenAll flattens every record, preserving order.
func FlattenAll(records []Record) []*Row {
	rows := make([]*Row, 0, len(records))
	for _, rec := range records {
		rows = append(rows, Flatten(rec))
	}
	return rows
}
