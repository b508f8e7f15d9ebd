// Command ingest runs one full pipeline job and exits. It shares the
// wiring of the server but serves no HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/annothub/annothub-backend/internal/app"
)

func main() {
	a, err := app.New()
	if err != nil {
		fmt.Printf("Failed to start: %v\n", err)
		os.Exit(1)
	}
	defer a.Log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := a.Orchestrator.Run(ctx)
	if err != nil {
		a.Log.Error("Ingestion run failed", "error", err)
		os.Exit(1)
	}
	a.Log.Info("Ingestion run complete",
		"candidates", report.Candidates,
		"admitted", report.Admitted,
		"saved", report.Saved,
		"failed", report.Failed,
		"skipped", report.Skipped)
}
