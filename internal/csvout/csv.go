// Package csvout writes flattened report rows as CSV. The header is the union
// of all row keys in first-seen order; missing cells are left empty.
package csvout

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"domexport/internal/report"
)

const (
	utf8BOM     = "\xEF\xBB\xBF" // written when ExcelCompatible is set
	defaultMode = 0o644          // for a destination that does not exist yet
)

// Options configures the CSV output. The zero value writes plain
// comma-separated UTF-8.
type Options struct {
	// Delimiter sets the field delimiter. Zero means comma.
	Delimiter rune

	// ExcelCompatible prefixes the output with a UTF-8 BOM.
	ExcelCompatible bool

	// SanitizeFormulas prefixes cells starting with = + - @ TAB CR with a
	// single quote so spreadsheets do not evaluate them.
	SanitizeFormulas bool
}

// WriteError reports a failure to write the CSV destination.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("write csv: %v", e.Err)
	}
	return fmt.Sprintf("write csv %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Header returns the union of the rows' keys in first-seen order.
func Header(rows []*report.Row) []string {
	seen := make(map[string]bool)
	var header []string
	for _, r := range rows {
		for _, k := range r.Keys() {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}
	return header
}

// Write encodes rows to w. No rows produce no output at all, not even a header.
func Write(w io.Writer, rows []*report.Row, opts Options) error {
	if len(rows) == 0 {
		return nil
	}
	if opts.ExcelCompatible {
		if _, err := io.WriteString(w, utf8BOM); err != nil {
			return &WriteError{Err: err}
		}
	}

	cw := csv.NewWriter(w)
	if opts.Delimiter != 0 {
		cw.Comma = opts.Delimiter
	}

	header := Header(rows)
	if err := cw.Write(header); err != nil {
		return &WriteError{Err: err}
	}
	record := make([]string, len(header))
	for _, r := range rows {
		for i, col := range header {
			v, _ := r.Get(col)
			cell := v.String()
			if opts.SanitizeFormulas {
				cell = sanitize(cell)
			}
			record[i] = cell
		}
		if err := cw.Write(record); err != nil {
			return &WriteError{Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// WriteFile writes rows to path, replacing any existing file. Output goes to a
// temporary file in the same directory first, so a failure leaves the
// destination untouched. An existing destination keeps its permissions, and a
// symlinked destination is replaced at its target.
func WriteFile(path string, rows []*report.Row, opts Options) error {
	target, mode := resolveTarget(path)
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(target)+".*")
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, rows, opts); err != nil {
		tmp.Close()
		cleanup()
		return &WriteError{Path: path, Err: unwrapWrite(err)}
	}
	if err := bw.Flush(); err != nil {
		tmp.Close()
		cleanup()
		return &WriteError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return &WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, target); err != nil {
		cleanup()
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// resolveTarget follows symlinks at path and returns the file to replace and
// the mode to give it.
func resolveTarget(path string) (string, os.FileMode) {
	target := path
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		target = resolved
	}
	if info, err := os.Stat(target); err == nil && info.Mode().IsRegular() {
		return target, info.Mode().Perm()
	}
	return target, defaultMode
}

func unwrapWrite(err error) error {
	if we, ok := err.(*WriteError); ok {
		return we.Err
	}
	return err
}

func sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
