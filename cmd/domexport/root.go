package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"domexport/internal/config"
	"domexport/internal/csvout"
	"domexport/internal/format"
	"domexport/internal/logging"
	"domexport/internal/pipeline"
)

type rootFlags struct {
	configPath    string
	envFile       string
	output        string
	logLevel      string
	logFormat     string
	preview       int
	previewFormat string
	excel         bool
	sanitize      bool
	verifyLogin   bool
}

func newRootCmd() *cobra.Command {
	var flags rootFlags
	cmd := &cobra.Command{
		Use:   "domexport",
		Short: "Export the per-user outputs report to CSV",
		Long: "domexport logs into the scenario web application, downloads the outputs\n" +
			"report and flattens every user record into one CSV row.",
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, flags)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", config.DefaultPath, "Settings file (JSON or YAML)")
	f.StringVar(&flags.envFile, "env-file", config.DefaultDotEnv, "Optional .env file with DOMEXPORT_* overrides")
	f.StringVarP(&flags.output, "output", "o", "", "CSV destination (default from settings, else output.csv)")
	f.StringVar(&flags.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.StringVar(&flags.logFormat, "log-format", "text", "Log format: text or json")
	f.IntVar(&flags.preview, "preview", 0, "Print the first N rows as a table after exporting")
	f.StringVar(&flags.previewFormat, "preview-format", "ascii", "Preview table format: ascii or markdown")
	f.BoolVar(&flags.excel, "excel", false, "Prefix the CSV with a UTF-8 BOM for Excel")
	f.BoolVar(&flags.sanitize, "sanitize-formulas", false, "Quote cells that spreadsheets would evaluate as formulas")
	f.BoolVar(&flags.verifyLogin, "verify-login", false, "Fail when the application rejects the login")
	return cmd
}

func runExport(cmd *cobra.Command, flags rootFlags) error {
	level, err := logging.ParseLevel(flags.logLevel)
	if err != nil {
		return err
	}
	logFormat, err := logging.ParseFormat(flags.logFormat)
	if err != nil {
		return err
	}
	mode, err := format.ParseMode(flags.previewFormat)
	if err != nil {
		return err
	}
	logging.Init(level, logFormat, cmd.ErrOrStderr())

	cfg, err := config.Resolve(flags.configPath, flags.envFile)
	if err != nil {
		return pipeline.NewConfigError(err)
	}
	if flags.output != "" {
		cfg.Output = flags.output
	}
	if flags.verifyLogin {
		cfg.VerifyLogin = true
	}

	logging.New("cli").Debug("config resolved", "config", cfg.String(), "path", flags.configPath)

	res, err := pipeline.Run(cmd.Context(), cfg,
		pipeline.WithCSVOptions(csvout.Options{
			ExcelCompatible:  flags.excel,
			SanitizeFormulas: flags.sanitize,
		}),
	)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Wrote %d row(s), %d column(s) to %s\n", len(res.Rows), len(res.Header), res.Output)
	if flags.preview > 0 && len(res.Rows) > 0 {
		fmt.Fprintln(out, format.RenderRows(res.Header, res.Rows, mode, flags.preview))
	}
	return nil
}
