package vapeindex

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// scanRow builds a vaping-subcategory GTIN scan record for tests. Price
// doubles as the quantity-weighted unit value; revenue feeds the weight
// totals.
func scanRow(store, gtin, ptype string, year, month int, price, qty, revenue float64) TransactionRecord {
	return TransactionRecord{
		StoreID:       store,
		CalendarYear:  year,
		CalendarMonth: month,
		GTIN:          gtin,
		Subcategory:   TargetSubcategory,
		ProductType:   ptype,
		ScanType:      TargetScanType,
		Quantity:      qty,
		TotalRevenue:  decimal.NewFromFloat(revenue),
		UnitValue:     price,
	}
}

// prepareRows runs the standard preparation over test records and fails
// the test on any validation error.
func prepareRows(t *testing.T, records []TransactionRecord) []TransactionRecord {
	t.Helper()
	prepared, err := PrepareRecords(records, NewFiscalCalendar())
	require.NoError(t, err)
	return prepared
}
