// Package pipeline runs one export: login, fetch the outputs report, flatten
// it and write the CSV. Stages run strictly in sequence and the first failure
// aborts the run without retries or partial output.
package pipeline

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"domexport/internal/config"
	"domexport/internal/csvout"
	"domexport/internal/report"
	"domexport/internal/webapp"
)

// Result summarizes a successful run.
type Result struct {
	RunID    string
	Output   string
	Header   []string
	Rows     []*report.Row
	Duration time.Duration
}

// Option configures a Run.
type Option func(*runConfig)

type runConfig struct {
	httpClient *http.Client
	logger     *slog.Logger
	csv        csvout.Options
}

// WithHTTPClient sets the HTTP client the session is built on.
func WithHTTPClient(c *http.Client) Option {
	return func(rc *runConfig) { rc.httpClient = c }
}

// WithLogger overrides the pipeline logger.
func WithLogger(l *slog.Logger) Option {
	return func(rc *runConfig) { rc.logger = l }
}

// WithCSVOptions sets the CSV writer options.
func WithCSVOptions(o csvout.Options) Option {
	return func(rc *runConfig) { rc.csv = o }
}

// Run executes the export described by cfg. cfg is expected to be validated
// (see config.Resolve); an empty Output falls back to config.DefaultOutputPath.
func Run(ctx context.Context, cfg config.Config, opts ...Option) (*Result, error) {
	rc := &runConfig{}
	for _, opt := range opts {
		opt(rc)
	}
	base := rc.logger
	if base == nil {
		base = slog.Default()
	}
	cfg = cfg.WithDefaults()

	runID := uuid.NewString()
	base = base.With("run_id", runID)
	logger := base.With("component", "pipeline")
	start := time.Now()

	clientOpts := []webapp.Option{
		webapp.WithLogger(base.With("component", "webapp")),
		webapp.WithTimeout(cfg.Timeout.Std()),
		webapp.WithLoginPath(cfg.LoginPath),
		webapp.WithOutputsPath(cfg.OutputsPath),
		webapp.WithCSRFCookie(cfg.CSRFCookie),
		webapp.WithUserAgent(cfg.UserAgent),
		webapp.WithLoginCheck(cfg.VerifyLogin),
	}
	if rc.httpClient != nil {
		clientOpts = append(clientOpts, webapp.WithHTTPClient(rc.httpClient))
	}
	client, err := webapp.New(cfg.URL, clientOpts...)
	if err != nil {
		return nil, NewConfigError(err)
	}

	logger.InfoContext(ctx, "logging in", "url", client.LoginURL(), "username", cfg.Username)
	if err := client.Login(ctx, cfg.Username, cfg.Password); err != nil {
		return nil, &Error{Kind: KindConnection, Op: "login", Err: err}
	}

	body, err := client.FetchOutputs(ctx)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Op: "fetch outputs", Err: err}
	}

	records, err := report.ParseRecords(body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Op: "decode outputs", Err: err}
	}
	rows := report.FlattenAll(records)
	header := csvout.Header(rows)
	logger.InfoContext(ctx, "report flattened", "records", len(records), "columns", len(header))

	if err := csvout.WriteFile(cfg.Output, rows, rc.csv); err != nil {
		return nil, &Error{Kind: KindWrite, Op: "write csv", Err: err}
	}

	res := &Result{
		RunID:    runID,
		Output:   cfg.Output,
		Header:   header,
		Rows:     rows,
		Duration: time.Since(start),
	}
	logger.InfoContext(ctx, "export finished", "output", res.Output, "rows", len(rows), "duration", res.Duration)
	return res, nil
}
