// Command deckmend repairs structurally broken presentation packages.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/deckmend/internal/adapters/driven/config/file"
	"github.com/custodia-labs/deckmend/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deckmend/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/deckmend/internal/adapters/driving/cli"
	"github.com/custodia-labs/deckmend/internal/core/ports/driven"
	"github.com/custodia-labs/deckmend/internal/core/services"
	"github.com/custodia-labs/deckmend/internal/logger"
	"github.com/custodia-labs/deckmend/internal/ooxml"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: opening config: %v\n", err)
		return 1
	}
	settings := services.NewSettingsService(configStore)

	// History is best effort: without a database, reports live in memory.
	var reports driven.ReportStore
	store, err := sqlite.NewStore("")
	if err != nil {
		logger.Warn("repair history unavailable: %v", err)
		reports = memory.NewReportStore()
	} else {
		defer store.Close()
		reports = store.ReportStore()
	}

	codec := ooxml.NewCodec()
	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Repair:   services.NewRepairService(codec, settings, reports),
		Quality:  services.NewQualityService(codec),
		Reports:  services.NewReportService(reports),
		Settings: settings,
	})

	if err := cli.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
