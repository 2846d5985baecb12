package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"vapeidx/internal/config"
	"vapeidx/internal/infrastructure"
	"vapeidx/internal/vapeindex"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	storePath := flag.String("store-path", "", "directory containing raw per-store files (defaults to config paths.store_dir)")
	outPath := flag.String("out", "", "directory for per-store index files (defaults to config paths.index_dir)")
	panelPath := flag.String("panel-out", "", "optional output file for the assembled panel index")
	reportPath := flag.String("report", "", "optional xlsx summary report path (requires -panel-out)")
	weightBasis := flag.String("weight-basis", "", "revenue-weighting basis: fiscal or calendar")
	indexKind := flag.String("index-kind", "", "index to construct: price or qty")
	limit := flag.Int("limit", -1, "process only the first N stores (dry run); -1 uses the config value")
	workers := flag.Int("workers", 0, "parallel store workers; 0 uses the config value")
	metricsAddr := flag.String("metrics-addr", "", "optional address to serve Prometheus metrics during the run")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Flags override configured defaults.
	if *storePath == "" {
		*storePath = cfg.Paths.StoreDir
	}
	if *outPath == "" {
		*outPath = cfg.Paths.IndexDir
	}
	if *panelPath == "" {
		*panelPath = cfg.Paths.PanelFile
	}
	if *weightBasis == "" {
		*weightBasis = cfg.Pipeline.WeightBasis
	}
	if *indexKind == "" {
		*indexKind = cfg.Pipeline.IndexKind
	}
	if *limit < 0 {
		*limit = cfg.Pipeline.Limit
	}
	if *workers <= 0 {
		*workers = cfg.Pipeline.Workers
	}
	if *metricsAddr == "" {
		*metricsAddr = cfg.Pipeline.MetricsAddr
	}
	// A bare report filename lands in the configured reports directory.
	if *reportPath != "" && filepath.Dir(*reportPath) == "." {
		*reportPath = filepath.Join(cfg.Paths.ReportsDir, *reportPath)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	ctx := infrastructure.ContextWithTraceID(context.Background())

	orch, err := vapeindex.NewOrchestrator(
		vapeindex.NewCSVStoreLoader(),
		vapeindex.WeightBasis(*weightBasis),
		vapeindex.IndexKind(*indexKind),
		logger,
	)
	if err != nil {
		logger.ErrorContext(ctx, "Invalid pipeline configuration", "error", err)
		os.Exit(1)
	}
	orch.SetLimit(*limit)
	orch.SetWorkers(*workers)

	if *metricsAddr != "" {
		registry := prometheus.NewRegistry()
		orch.SetMetrics(vapeindex.NewMetrics(registry))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.WarnContext(ctx, "metrics server stopped", "error", err)
			}
		}()
		logger.InfoContext(ctx, "serving metrics", "addr", *metricsAddr)
	}

	summary, err := orch.ProcessAllStores(ctx, *storePath, *outPath)
	if err != nil {
		logger.ErrorContext(ctx, "Store processing failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Store processing complete",
		"total", summary.TotalStores,
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed.String(),
	)

	if *panelPath == "" {
		return
	}

	panel, err := orch.BuildPanel(ctx, *outPath, *panelPath)
	if err != nil {
		logger.ErrorContext(ctx, "Panel assembly failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Panel assembled", "rows", len(panel), "path", *panelPath)

	if *reportPath != "" {
		if err := vapeindex.WriteSummaryWorkbook(panel, summary, orch.Columns(), *reportPath); err != nil {
			logger.ErrorContext(ctx, "Summary report failed", "error", err)
			os.Exit(1)
		}
		logger.InfoContext(ctx, "Summary report written", "path", *reportPath)
	}
}
