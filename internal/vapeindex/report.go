package vapeindex

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteSummaryWorkbook writes an xlsx summary of an assembled panel: run
// counts, coverage, and the distribution of the index level. The workbook
// is a reporting supplement; the CSV panel remains the canonical output.
func WriteSummaryWorkbook(panel []StoreIndexRow, summary RunSummary, columns IndexColumns, outputPath string) error {
	if len(panel) == 0 {
		return fmt.Errorf("no panel rows to summarize")
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}

	stats := summarizePanel(panel)

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	cells := [][2]interface{}{
		{"Generated", time.Now().Format("2006-01-02 15:04:05")},
		{"Index column", columns.IndexName},
		{"Stores processed", summary.Processed},
		{"Stores skipped", summary.Skipped},
		{"Run elapsed", summary.Elapsed.String()},
		{"Panel rows", len(panel)},
		{"Unique stores", stats.uniqueStores},
		{"Date range", fmt.Sprintf("%s to %s", stats.firstDate, stats.lastDate)},
		{"Rows with index", stats.present},
		{"Rows without index", len(panel) - stats.present},
		{"Index min", stats.min},
		{"Index max", stats.max},
		{"Index mean", stats.mean},
	}

	for i, kv := range cells {
		row := i + 1
		if err := f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kv[0]); err != nil {
			return fmt.Errorf("write summary cell: %w", err)
		}
		if err := f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1]); err != nil {
			return fmt.Errorf("write summary cell: %w", err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return fmt.Errorf("save summary workbook: %w", err)
	}

	return nil
}

type panelStats struct {
	uniqueStores int
	firstDate    string
	lastDate     string
	present      int
	min          float64
	max          float64
	mean         float64
}

func summarizePanel(panel []StoreIndexRow) panelStats {
	stores := make(map[string]bool)
	dates := make([]Period, 0, len(panel))

	stats := panelStats{min: math.Inf(1), max: math.Inf(-1)}
	sum := 0.0

	for _, row := range panel {
		stores[row.StoreID] = true
		dates = append(dates, row.Date)

		if !row.HasIndex() {
			continue
		}
		stats.present++
		sum += row.Index
		if row.Index < stats.min {
			stats.min = row.Index
		}
		if row.Index > stats.max {
			stats.max = row.Index
		}
	}

	stats.uniqueStores = len(stores)

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	if len(dates) > 0 {
		stats.firstDate = dates[0].String()
		stats.lastDate = dates[len(dates)-1].String()
	}

	if stats.present > 0 {
		stats.mean = sum / float64(stats.present)
	} else {
		stats.min, stats.max = 0, 0
	}

	return stats
}
