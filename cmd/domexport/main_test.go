package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"domexport/internal/config"
	"domexport/internal/pipeline"
	"domexport/internal/webapp/webapptest"
)

const report = `[{"user": {"id": 1}, "userInput": {"age": 30}, "avgDomPct": 0.5,
  "scenarioDomPct": {"base": 0.4}, "output": {"base": {"mean": 10}}}]`

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvURL, config.EnvUsername, config.EnvPassword, config.EnvOutput} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeSettings(t *testing.T, dir, url, password string) string {
	t.Helper()
	path := filepath.Join(dir, "settings.json")
	body := `{"url": "` + url + `", "username": "ada", "password": "` + password + `"}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRoot_Export(t *testing.T) {
	clearEnv(t)
	app := webapptest.NewServer("ada", "s3cret", []byte(report))
	defer app.Close()
	dir := t.TempDir()
	settings := writeSettings(t, dir, app.URL, "s3cret")
	output := filepath.Join(dir, "output.csv")

	stdout, _, err := execute(t, "--config", settings, "--env-file", filepath.Join(dir, ".env"),
		"--output", output, "--preview", "5")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(stdout, "Wrote 1 row(s), 5 column(s)") {
		t.Errorf("unexpected summary: %s", stdout)
	}
	if !strings.Contains(stdout, "base - mean") && !strings.Contains(stdout, "BASE - MEAN") {
		t.Errorf("expected preview table: %s", stdout)
	}

	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	want := "id,age,avgDomPct,base - Dom Pct,base - mean\n1,30,0.5,0.4,10\n"
	if string(data) != want {
		t.Errorf("csv:\ngot  %q\nwant %q", data, want)
	}
}

func TestRoot_DefaultsInWorkingDir(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		summary string
		want    string
	}{
		{"populated", report, "Wrote 1 row(s), 5 column(s) to output.csv",
			"id,age,avgDomPct,base - Dom Pct,base - mean\n1,30,0.5,0.4,10\n"},
		{"empty", `[]`, "Wrote 0 row(s), 0 column(s) to output.csv", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			app := webapptest.NewServer("ada", "s3cret", []byte(tt.body))
			defer app.Close()
			dir := t.TempDir()
			writeSettings(t, dir, app.URL, "s3cret")
			t.Chdir(dir)

			stdout, _, err := execute(t)
			if err != nil {
				t.Fatalf("execute: %v", err)
			}
			if !strings.Contains(stdout, tt.summary) {
				t.Errorf("unexpected summary: %s", stdout)
			}
			data, err := os.ReadFile(filepath.Join(dir, config.DefaultOutputPath))
			if err != nil {
				t.Fatalf("default output not written: %v", err)
			}
			if string(data) != tt.want {
				t.Errorf("csv:\ngot  %q\nwant %q", data, tt.want)
			}
		})
	}
}

func TestRoot_VerifyLoginRejectsBadPassword(t *testing.T) {
	clearEnv(t)
	app := webapptest.NewServer("ada", "s3cret", []byte(report))
	defer app.Close()
	dir := t.TempDir()
	settings := writeSettings(t, dir, app.URL, "wrong")

	_, _, err := execute(t, "--config", settings, "--env-file", "", "--verify-login",
		"--output", filepath.Join(dir, "output.csv"))
	if !pipeline.IsConnection(err) {
		t.Fatalf("want ConnectionError, got %v", err)
	}
}

func TestRoot_MissingConfig(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	_, _, err := execute(t, "--config", filepath.Join(dir, "settings.json"), "--env-file", "")
	if !pipeline.IsConfig(err) {
		t.Fatalf("want ConfigError, got %v", err)
	}
}

func TestRoot_BadFlags(t *testing.T) {
	clearEnv(t)
	for _, args := range [][]string{
		{"--log-level", "loud"},
		{"--log-format", "xml"},
		{"--preview-format", "html"},
		{"extra-arg"},
	} {
		if _, _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestRoot_Version(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stdout, version) {
		t.Errorf("expected version in %q", stdout)
	}
}
