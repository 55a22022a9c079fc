// domexport logs into the scenario web application, downloads the per-user
// outputs report and writes it as a flat CSV.
//
// Usage:
//
//	domexport [--config settings.json] [--output output.csv] [--preview N]
//
// With no flags it reads ./settings.json and writes ./output.csv.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
