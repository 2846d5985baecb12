package vapeindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareRecords(t *testing.T) {
	cal := NewFiscalCalendar()

	t.Run("keeps only gtin scans", func(t *testing.T) {
		manual := scanRow("S1", "100", "Disposables", 2023, 1, 10, 5, 50)
		manual.ScanType = "MANUAL"

		prepared, err := PrepareRecords([]TransactionRecord{
			scanRow("S1", "100", "Disposables", 2023, 1, 10, 5, 50),
			manual,
		}, cal)
		require.NoError(t, err)
		require.Len(t, prepared, 1)
		assert.Equal(t, TargetScanType, prepared[0].ScanType)
	})

	t.Run("derives date and fiscal year", func(t *testing.T) {
		prepared, err := PrepareRecords([]TransactionRecord{
			scanRow("S1", "100", "Disposables", 2022, 12, 10, 5, 50),
		}, cal)
		require.NoError(t, err)
		require.Len(t, prepared, 1)
		assert.Equal(t, NewPeriod(2022, 12), prepared[0].Date)
		assert.Equal(t, 2023, prepared[0].FiscalYear)
	})

	t.Run("unknown fiscal year annotated as zero", func(t *testing.T) {
		prepared, err := PrepareRecords([]TransactionRecord{
			scanRow("S1", "100", "Disposables", 2030, 1, 10, 5, 50),
		}, cal)
		require.NoError(t, err)
		require.Len(t, prepared, 1)
		assert.Equal(t, 0, prepared[0].FiscalYear)
	})

	t.Run("empty result is not an error", func(t *testing.T) {
		manual := scanRow("S1", "100", "Disposables", 2023, 1, 10, 5, 50)
		manual.ScanType = "MANUAL"

		prepared, err := PrepareRecords([]TransactionRecord{manual}, cal)
		require.NoError(t, err)
		assert.Empty(t, prepared)
	})

	t.Run("invalid month fails", func(t *testing.T) {
		bad := scanRow("S1", "100", "Disposables", 2023, 0, 10, 5, 50)
		_, err := PrepareRecords([]TransactionRecord{bad}, cal)
		assert.Error(t, err)
	})
}

func TestSubsetSubcategory(t *testing.T) {
	other := scanRow("S1", "300", "Rolling Papers", 2023, 1, 5, 5, 25)
	other.Subcategory = "Smoking Accessories"

	records := []TransactionRecord{
		scanRow("S1", "100", "Disposables", 2023, 1, 10, 5, 50),
		other,
		scanRow("S1", "200", "Pods", 2023, 1, 20, 5, 100),
	}

	subset := SubsetSubcategory(records, TargetSubcategory)
	require.Len(t, subset, 2)
	for _, rec := range subset {
		assert.Equal(t, TargetSubcategory, rec.Subcategory)
	}

	assert.Empty(t, SubsetSubcategory(records, "Cigars"))
}
