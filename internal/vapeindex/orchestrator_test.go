package vapeindex

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vapeidx/internal/shared/testutil"
)

func newTestOrchestrator(t *testing.T) *Orchestrator {
	t.Helper()
	orch, err := NewOrchestrator(NewCSVStoreLoader(), BasisFiscal, KindPrice, nil)
	require.NoError(t, err)
	return orch
}

func vapingStoreCSV(storeID string) string {
	return storeCSVHeader +
		storeID + ",2023,1,9310001,Vaping Products,Disposables,GTIN,5,1,50,10\n" +
		storeID + ",2023,2,9310001,Vaping Products,Disposables,GTIN,5,1,55,11\n"
}

func TestProcessAllStores(t *testing.T) {
	storeDir := t.TempDir()
	outDir := t.TempDir()

	writeStoreFile(t, storeDir, "100", vapingStoreCSV("100"))
	writeStoreFile(t, storeDir, "200", vapingStoreCSV("200"))
	// Store 300 sells no vaping products, so the subcategory subset is empty.
	writeStoreFile(t, storeDir, "300", storeCSVHeader+
		"300,2023,1,555,Smoking Accessories,Lighters,GTIN,5,1,50,10\n")
	// Store 400 has no GTIN scans at all.
	writeStoreFile(t, storeDir, "400", storeCSVHeader+
		"400,2023,1,9310001,Vaping Products,Disposables,MANUAL,5,1,50,10\n")

	logger, logs := testutil.NewTestLogger(t)
	orch, err := NewOrchestrator(NewCSVStoreLoader(), BasisFiscal, KindPrice, logger)
	require.NoError(t, err)

	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)
	orch.SetMetrics(metrics)

	summary, err := orch.ProcessAllStores(context.Background(), storeDir, outDir)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalStores)
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Skipped)

	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.StoresProcessed))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.StoresSkipped))

	// Each skip condition is logged with the store it affected.
	assert.True(t, logs.ContainsMessage("skipping store, empty subcategory subset"))
	assert.True(t, logs.ContainsMessage("skipping store, empty after scan-type filter"))
	assert.True(t, logs.ContainsAttr("store", "300"))
	assert.True(t, logs.ContainsAttr("store", "400"))

	// Skipped stores leave no output file behind.
	for store, want := range map[string]bool{"100": true, "200": true, "300": false, "400": false} {
		_, err := os.Stat(filepath.Join(outDir, store+".csv"))
		if want {
			assert.NoError(t, err, "store %s", store)
		} else {
			assert.True(t, os.IsNotExist(err), "store %s", store)
		}
	}

	rows, err := ReadStoreIndexCSV(filepath.Join(outDir, "100.csv"), orch.Columns())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.False(t, rows[0].HasIndex())
	assert.InDelta(t, 1.1, rows[1].Index, 1e-12)
}

func TestProcessAllStoresLimit(t *testing.T) {
	storeDir := t.TempDir()
	outDir := t.TempDir()

	writeStoreFile(t, storeDir, "100", vapingStoreCSV("100"))
	writeStoreFile(t, storeDir, "200", vapingStoreCSV("200"))
	writeStoreFile(t, storeDir, "300", vapingStoreCSV("300"))

	orch := newTestOrchestrator(t)
	orch.SetLimit(2)

	summary, err := orch.ProcessAllStores(context.Background(), storeDir, outDir)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalStores)
	assert.Equal(t, 2, summary.Processed)

	_, err = os.Stat(filepath.Join(outDir, "300.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestProcessAllStoresParallel(t *testing.T) {
	storeDir := t.TempDir()
	outDir := t.TempDir()

	for _, store := range []string{"100", "200", "300", "400", "500"} {
		writeStoreFile(t, storeDir, store, vapingStoreCSV(store))
	}

	orch := newTestOrchestrator(t)
	orch.SetWorkers(4)

	summary, err := orch.ProcessAllStores(context.Background(), storeDir, outDir)
	require.NoError(t, err)
	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, 0, summary.Skipped)
}

func TestProcessAllStoresMissingValueColumn(t *testing.T) {
	storeDir := t.TempDir()
	outDir := t.TempDir()

	// The file carries vaping GTIN rows but no unit_value_q column.
	writeStoreFile(t, storeDir, "100",
		"store_id,calendar_year,calendar_month,gtin,subcategory,product_type,scan_type,quantity,total_revenue_amount\n"+
			"100,2023,1,9310001,Vaping Products,Disposables,GTIN,5,50\n")

	orch := newTestOrchestrator(t)
	_, err := orch.ProcessAllStores(context.Background(), storeDir, outDir)
	require.Error(t, err)

	var ce *ColumnError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "unit_value_q", ce.Column)
}

func TestBuildPanel(t *testing.T) {
	indexDir := t.TempDir()
	panelPath := filepath.Join(t.TempDir(), "panel.csv")
	columns := KindPrice.Columns()

	require.NoError(t, WriteStoreIndexCSV([]StoreIndexRow{
		{StoreID: "100", Date: NewPeriod(2023, 1), Index: math.NaN(), LogIndex: math.NaN()},
		{StoreID: "100", Date: NewPeriod(2023, 2), Index: 1.1, LogIndex: math.Log(1.1)},
	}, columns, filepath.Join(indexDir, "100.csv")))

	require.NoError(t, WriteStoreIndexCSV([]StoreIndexRow{
		{StoreID: "200", Date: NewPeriod(2023, 2), Index: 0.95, LogIndex: math.Log(0.95)},
	}, columns, filepath.Join(indexDir, "200.csv")))

	orch := newTestOrchestrator(t)
	panel, err := orch.BuildPanel(context.Background(), indexDir, panelPath)
	require.NoError(t, err)
	assert.Len(t, panel, 3)

	saved, err := ReadStoreIndexCSV(panelPath, columns)
	require.NoError(t, err)
	assert.Len(t, saved, 3)
}

func TestBuildPanelDropsDuplicates(t *testing.T) {
	indexDir := t.TempDir()
	panelPath := filepath.Join(t.TempDir(), "panel.csv")
	columns := KindPrice.Columns()

	// Both files claim store 100 in February; the file that sorts first
	// wins and the later occurrence is dropped.
	require.NoError(t, WriteStoreIndexCSV([]StoreIndexRow{
		{StoreID: "100", Date: NewPeriod(2023, 2), Index: 1.1, LogIndex: math.Log(1.1)},
	}, columns, filepath.Join(indexDir, "100.csv")))
	require.NoError(t, WriteStoreIndexCSV([]StoreIndexRow{
		{StoreID: "100", Date: NewPeriod(2023, 2), Index: 2.0, LogIndex: math.Log(2.0)},
	}, columns, filepath.Join(indexDir, "999.csv")))

	orch := newTestOrchestrator(t)
	panel, err := orch.BuildPanel(context.Background(), indexDir, panelPath)
	require.NoError(t, err)
	require.Len(t, panel, 1)
	assert.Equal(t, 1.1, panel[0].Index)
}

func TestBuildPanelNoInputsIsFatal(t *testing.T) {
	orch := newTestOrchestrator(t)

	_, err := orch.BuildPanel(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "panel.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no store-level index files found")
}

func TestBuildPanelRejectsMismatchedColumns(t *testing.T) {
	indexDir := t.TempDir()

	require.NoError(t, WriteStoreIndexCSV([]StoreIndexRow{
		{StoreID: "100", Date: NewPeriod(2023, 2), Index: 1.1, LogIndex: math.Log(1.1)},
	}, KindQty.Columns(), filepath.Join(indexDir, "100.csv")))

	orch := newTestOrchestrator(t) // price run
	_, err := orch.BuildPanel(context.Background(), indexDir, filepath.Join(t.TempDir(), "panel.csv"))
	require.Error(t, err)

	var ce *ColumnError
	assert.True(t, errors.As(err, &ce))
}
