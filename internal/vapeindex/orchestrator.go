package vapeindex

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// Orchestrator drives the index pipeline across stores: load, prepare,
// filter, build, validate and persist, one store at a time (or with
// bounded parallelism, since per-store computations are independent).
type Orchestrator struct {
	loader   StoreLoader
	calendar *FiscalCalendar
	builder  *Builder
	logger   *slog.Logger
	metrics  *Metrics

	limit   int // 0 = no limit
	workers int
}

// RunSummary reports the outcome of a multi-store run.
type RunSummary struct {
	TotalStores int           `json:"total_stores"`
	Processed   int           `json:"processed"`
	Skipped     int           `json:"skipped"`
	Elapsed     time.Duration `json:"elapsed"`
}

// NewOrchestrator creates a pipeline orchestrator. Invalid weight basis or
// index kind fail here, before any store is touched.
func NewOrchestrator(loader StoreLoader, basis WeightBasis, kind IndexKind, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}

	builder, err := NewBuilder(basis, kind, logger)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		loader:   loader,
		calendar: NewFiscalCalendar(),
		builder:  builder,
		logger:   logger,
		workers:  1,
	}, nil
}

// SetLimit caps the number of stores processed; 0 means no cap. Used for
// dry runs.
func (o *Orchestrator) SetLimit(limit int) {
	if limit < 0 {
		limit = 0
	}
	o.limit = limit
}

// SetWorkers bounds parallelism across stores. 1 processes stores
// sequentially.
func (o *Orchestrator) SetWorkers(workers int) {
	if workers < 1 {
		workers = 1
	}
	o.workers = workers
}

// SetMetrics attaches run instrumentation.
func (o *Orchestrator) SetMetrics(m *Metrics) {
	o.metrics = m
}

// Columns returns the resolved output column triple for this run.
func (o *Orchestrator) Columns() IndexColumns {
	return o.builder.Columns()
}

// ProcessAllStores loops over all store files under storeDir, computes
// each store's index and writes one output file per store under outDir.
// A store emptied by the scan-type or subcategory filter is skipped and
// logged; any other per-store failure aborts the run.
func (o *Orchestrator) ProcessAllStores(ctx context.Context, storeDir, outDir string) (RunSummary, error) {
	start := time.Now()

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return RunSummary{}, fmt.Errorf("create output directory: %w", err)
	}

	stores, err := o.loader.ListStores(storeDir)
	if err != nil {
		return RunSummary{}, fmt.Errorf("list stores: %w", err)
	}
	if o.limit > 0 && len(stores) > o.limit {
		stores = stores[:o.limit]
	}

	o.logger.InfoContext(ctx, "processing stores",
		"total", len(stores),
		"workers", o.workers,
		"weight_basis", o.builder.basis.String(),
		"index_kind", o.builder.kind.String(),
	)

	var processed, skipped, iteration atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)

	for _, store := range stores {
		store := store
		g.Go(func() error {
			ok, err := o.processStore(gctx, store, storeDir, outDir)
			if err != nil {
				return fmt.Errorf("process store %s: %w", store, err)
			}

			status := "skipped"
			if ok {
				processed.Add(1)
				status = "processed"
			} else {
				skipped.Add(1)
			}

			o.logger.InfoContext(gctx, "store iteration finished",
				"iteration", fmt.Sprintf("%d/%d", iteration.Add(1), len(stores)),
				"store", store,
				"status", status,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{
		TotalStores: len(stores),
		Processed:   int(processed.Load()),
		Skipped:     int(skipped.Load()),
		Elapsed:     time.Since(start),
	}

	o.logger.InfoContext(ctx, "finished processing all stores",
		"processed", summary.Processed,
		"skipped", summary.Skipped,
		"elapsed", summary.Elapsed,
	)

	return summary, nil
}

// processStore runs the per-store pipeline. Returns false when the store
// was skipped because a filter emptied its data.
func (o *Orchestrator) processStore(ctx context.Context, storeID, storeDir, outDir string) (bool, error) {
	start := time.Now()
	defer func() {
		if o.metrics != nil {
			o.metrics.StoreDuration.Observe(time.Since(start).Seconds())
		}
	}()

	frame, err := o.loader.LoadStore(storeDir, storeID)
	if err != nil {
		return false, fmt.Errorf("load: %w", err)
	}

	prepared, err := PrepareRecords(frame.Records, o.calendar)
	if err != nil {
		return false, fmt.Errorf("prepare: %w", err)
	}
	if len(prepared) == 0 {
		o.logger.InfoContext(ctx, "skipping store, empty after scan-type filter", "store", storeID)
		if o.metrics != nil {
			o.metrics.StoresSkipped.Inc()
		}
		return false, nil
	}

	subset := SubsetSubcategory(prepared, TargetSubcategory)
	if len(subset) == 0 {
		o.logger.InfoContext(ctx, "skipping store, empty subcategory subset",
			"store", storeID,
			"subcategory", TargetSubcategory,
		)
		if o.metrics != nil {
			o.metrics.StoresSkipped.Inc()
		}
		return false, nil
	}

	if err := frame.RequireColumn(o.builder.Columns().ValueColumn); err != nil {
		return false, err
	}

	rows, err := o.builder.BuildStoreIndex(ctx, subset)
	if err != nil {
		return false, fmt.Errorf("build index: %w", err)
	}

	if err := ValidateStoreIndex(rows); err != nil {
		return false, fmt.Errorf("validate index: %w", err)
	}

	outputPath := filepath.Join(outDir, storeID+".csv")
	if err := WriteStoreIndexCSV(rows, o.builder.Columns(), outputPath); err != nil {
		return false, fmt.Errorf("persist index: %w", err)
	}

	if o.metrics != nil {
		o.metrics.StoresProcessed.Inc()
	}
	return true, nil
}

// BuildPanel reads all per-store index files under sourceDir, concatenates
// them into a single panel, drops duplicate (store, date) pairs keeping
// the first occurrence, validates, and writes the panel to outputPath.
// Zero input files is a hard error: an upstream run that produced nothing
// must not become a silently empty panel.
func (o *Orchestrator) BuildPanel(ctx context.Context, sourceDir, outputPath string) ([]StoreIndexRow, error) {
	files, err := listIndexFiles(sourceDir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no store-level index files found in %s: upstream processing produced zero outputs", sourceDir)
	}

	o.logger.InfoContext(ctx, "building panel", "files", len(files))

	columns := o.builder.Columns()

	type panelKey struct {
		StoreID string
		Date    Period
	}
	seen := make(map[panelKey]bool)
	var panel []StoreIndexRow

	for i, file := range files {
		rows, err := ReadStoreIndexCSV(file, columns)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", file, err)
		}

		// Duplicate (store, date) across files is an input invariant
		// violation; first occurrence wins.
		for _, row := range rows {
			key := panelKey{StoreID: row.StoreID, Date: row.Date}
			if seen[key] {
				continue
			}
			seen[key] = true
			panel = append(panel, row)
		}

		o.logger.DebugContext(ctx, "read panel input",
			"progress", fmt.Sprintf("%d/%d", i+1, len(files)),
			"file", filepath.Base(file),
		)
	}

	if err := ValidateStoreIndex(panel); err != nil {
		return nil, fmt.Errorf("validate panel: %w", err)
	}

	if err := WriteStoreIndexCSV(panel, columns, outputPath); err != nil {
		return nil, fmt.Errorf("persist panel: %w", err)
	}

	if o.metrics != nil {
		o.metrics.PanelRows.Set(float64(len(panel)))
	}

	o.logger.InfoContext(ctx, "saved panel index",
		"path", outputPath,
		"rows", len(panel),
	)

	return panel, nil
}

// listIndexFiles returns the CSV files under dir in name order.
func listIndexFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read panel source directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}
