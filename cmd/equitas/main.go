// Command equitas runs the equity research pipeline for a ticker:
// collect market data, derive the metrics panel, populate forecast
// years and assemble the report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/bobmcallan/equitas/internal/app"
	"github.com/bobmcallan/equitas/internal/common"
	"github.com/bobmcallan/equitas/internal/interfaces"
)

func main() {
	// Local .env is a development convenience; absence is fine.
	_ = godotenv.Load()

	var (
		configPath    = flag.String("config", "config.toml", "path to config file")
		forceRefresh  = flag.Bool("force", false, "bypass completeness gates and re-fetch all data")
		forceForecast = flag.Bool("force-forecast", false, "regenerate forecast years even when cached")
		narrative     = flag.Bool("narrative", true, "generate analyst narrative")
		chartFlag     = flag.Bool("chart", true, "render the price-performance chart")
		pdfPath       = flag.String("pdf", "", "write the report PDF to this path")
		benchmark     = flag.String("benchmark", "", "override the benchmark index")
		showVersion   = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("equitas %s (build %s, commit %s)\n", common.Version, common.Build, common.GitCommit)
		return
	}

	ticker := flag.Arg(0)
	if ticker == "" {
		fmt.Fprintln(os.Stderr, "usage: equitas [flags] TICKER")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, ticker, *configPath, interfaces.ReportOptions{
		ForceRefresh:      *forceRefresh,
		ForceRegenerate:   *forceForecast,
		IncludeNarrative:  *narrative,
		RenderChart:       *chartFlag,
		BenchmarkOverride: *benchmark,
	}, *pdfPath); err != nil {
		fmt.Fprintf(os.Stderr, "equitas: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, ticker, configPath string, options interfaces.ReportOptions, pdfPath string) error {
	application, err := app.New(ctx, configPath)
	if err != nil {
		return err
	}
	defer application.Close()

	report, err := application.Research.BuildReport(ctx, ticker, options)
	if err != nil {
		return err
	}

	application.Logger.Info().
		Str("ticker", report.Ticker).
		Str("report_id", report.ID).
		Str("latest_actual", report.LatestActualYear).
		Int("panel_years", len(report.Panel.Metrics)).
		Msg("Report complete")

	if pdfPath == "" {
		return nil
	}

	var chartPNG []byte
	if report.ChartKey != "" {
		if data, _, err := application.Storage.FileStore().GetFile(ctx, "charts", report.ChartKey); err == nil {
			chartPNG = data
		}
	}

	pdfBytes, err := application.Render.RenderPDF(report, chartPNG)
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	if err := os.WriteFile(pdfPath, pdfBytes, 0644); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	application.Logger.Info().Str("path", pdfPath).Msg("Report PDF written")
	return nil
}
