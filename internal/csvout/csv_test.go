package csvout

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"domexport/internal/report"
)

func row(kv ...string) *report.Row {
	r := report.NewRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.Set(kv[i], report.StringValue(kv[i+1]))
	}
	return r
}

func TestWrite_RoundTrip(t *testing.T) {
	rows := []*report.Row{
		row("id", "1", "name", "ada, countess", "base - mean", "10"),
		row("id", "2", "name", `say "hi"`, "base - mean", "11.5"),
		row("id", "3", "name", "line\nbreak", "base - mean", "-4"),
	}
	var buf bytes.Buffer
	if err := Write(&buf, rows, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if len(got) != len(rows)+1 {
		t.Fatalf("want %d records, got %d", len(rows)+1, len(got))
	}
	if diff := cmp.Diff([]string{"id", "name", "base - mean"}, got[0]); diff != "" {
		t.Errorf("header (-want +got):\n%s", diff)
	}
	for i, r := range rows {
		var want []string
		for _, f := range r.Fields() {
			want = append(want, f.Value.String())
		}
		if diff := cmp.Diff(want, got[i+1]); diff != "" {
			t.Errorf("row %d (-want +got):\n%s", i, diff)
		}
	}
}

func TestWrite_HeterogeneousKeys(t *testing.T) {
	rows := []*report.Row{
		row("id", "1", "a", "x"),
		row("id", "2", "b", "y"),
		row("b", "z", "c", "w"),
	}
	var buf bytes.Buffer
	if err := Write(&buf, rows, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "id,a,b,c\n1,x,,\n2,,y,\n,,z,w\n"
	if buf.String() != want {
		t.Errorf("got:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWrite_NullAndTypedValues(t *testing.T) {
	r := report.NewRow()
	r.Set("avgDomPct", report.Value{})
	r.Set("flag", report.BoolValue(true))
	r.Set("n", report.NumberValue("0.50"))
	r.Set("raw", report.RawValue(`{"k":1}`))

	var buf bytes.Buffer
	if err := Write(&buf, []*report.Row{r}, Options{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	want := "avgDomPct,flag,n,raw\n,true,0.50,\"{\"\"k\"\":1}\"\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}
}

func TestWrite_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, nil, Options{ExcelCompatible: true}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("want empty output, got %q", buf.String())
	}
}

func TestWrite_Options(t *testing.T) {
	rows := []*report.Row{row("formula", "=SUM(A1)", "plain", "ok")}
	var buf bytes.Buffer
	err := Write(&buf, rows, Options{Delimiter: ';', ExcelCompatible: true, SanitizeFormulas: true})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, utf8BOM) {
		t.Errorf("expected BOM prefix, got %q", out)
	}
	want := utf8BOM + "formula;plain\n'=SUM(A1);ok\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestHeader_FirstSeenOrder(t *testing.T) {
	rows := []*report.Row{row("b", "1", "a", "2"), row("c", "3", "a", "4")}
	if diff := cmp.Diff([]string{"b", "a", "c"}, Header(rows)); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestWriteFile_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	if err := os.WriteFile(path, []byte("stale content that is longer\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(path, []*report.Row{row("id", "1")}, Options{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "id\n1\n" {
		t.Errorf("got %q", data)
	}
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp file left behind: %v", entries)
	}
}

func TestWriteFile_EmptyRowsCreatesEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "output.csv")
	if err := WriteFile(path, nil, Options{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("want empty file, got %d bytes", info.Size())
	}
}

func TestWriteFile_UnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "output.csv")
	err := WriteFile(path, []*report.Row{row("id", "1")}, Options{})
	var we *WriteError
	if !errors.As(err, &we) {
		t.Fatalf("want *WriteError, got %v", err)
	}
	if we.Path != path {
		t.Errorf("path: got %q, want %q", we.Path, path)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected wrapped ErrNotExist, got %v", err)
	}
}

func TestWriteFile_Mode(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "private.csv")
	if err := os.WriteFile(existing, []byte("old\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(dir, "fresh.csv")

	for path, want := range map[string]os.FileMode{existing: 0o600, fresh: 0o644} {
		if err := WriteFile(path, []*report.Row{row("id", "1")}, Options{}); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if got := info.Mode().Perm(); got != want {
			t.Errorf("%s: mode %v, want %v", filepath.Base(path), got, want)
		}
	}
}

func TestWriteFile_WritesThroughSymlink(t *testing.T) {
	destDir, linkDir := t.TempDir(), t.TempDir()
	dest := filepath.Join(destDir, "output.csv")
	if err := os.WriteFile(dest, []byte("old\n"), 0o640); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(linkDir, "output.csv")
	if err := os.Symlink(dest, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := WriteFile(link, []*report.Row{row("id", "7")}, Options{}); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("symlink replaced by a regular file")
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "id\n7\n" {
		t.Errorf("target content: got %q", data)
	}
	if st, _ := os.Stat(dest); st.Mode().Perm() != 0o640 {
		t.Errorf("target mode: got %v", st.Mode().Perm())
	}
}
