// Package report decodes the per-user "outputs" report and flattens each
// nested record into a single ordered row of column -> value.
//
// Usage:
//
//	records, err := report.ParseRecords(body)
//	rows := report.FlattenAll(records)
//
// Key order follows the JSON document, so the rows can drive a CSV header
// without any extra sorting.
package report
