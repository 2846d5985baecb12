package vapeindex

import (
	"fmt"
	"math"
)

// ValidateStoreRecords checks the contract for prepared store-level
// records: identifiers present, calendar fields in range, and no NaN
// numeric observations. It runs after preparation, before the subcategory
// subset.
func ValidateStoreRecords(records []TransactionRecord) error {
	for i, rec := range records {
		if rec.StoreID == "" {
			return &ValidationError{
				Field:   "store_id",
				Message: fmt.Sprintf("empty store_id at record %d", i),
			}
		}
		if rec.GTIN == "" {
			return &ValidationError{
				Field:   "gtin",
				Message: fmt.Sprintf("empty gtin at record %d", i),
			}
		}
		if rec.CalendarMonth < 1 || rec.CalendarMonth > 12 {
			return &ValidationError{
				Field:   "calendar_month",
				Message: fmt.Sprintf("calendar_month out of range at record %d", i),
				Value:   rec.CalendarMonth,
			}
		}
		if rec.CalendarYear < 1900 || rec.CalendarYear > 2200 {
			return &ValidationError{
				Field:   "calendar_year",
				Message: fmt.Sprintf("calendar_year out of range at record %d", i),
				Value:   rec.CalendarYear,
			}
		}
		if rec.Date.IsZero() {
			return &ValidationError{
				Field:   "date",
				Message: fmt.Sprintf("missing derived date at record %d", i),
			}
		}
		for _, v := range []float64{rec.Quantity, rec.QuantityWithDiscount, rec.UnitValue} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return &ValidationError{
					Field:   "values",
					Message: fmt.Sprintf("NaN or Inf observation at record %d", i),
				}
			}
		}
	}
	return nil
}

// ValidateStoreIndex enforces the output invariants: a present index is
// non-negative and finite, a present log index is finite, and (store,
// date) pairs are unique. It runs after per-store construction and again
// after panel concatenation.
func ValidateStoreIndex(rows []StoreIndexRow) error {
	type rowKey struct {
		StoreID string
		Date    Period
	}
	seen := make(map[rowKey]bool, len(rows))

	for i, row := range rows {
		if row.StoreID == "" {
			return &ValidationError{
				Field:   "store_id",
				Message: fmt.Sprintf("empty store_id at row %d", i),
			}
		}
		if row.Date.IsZero() {
			return &ValidationError{
				Field:   "date",
				Message: fmt.Sprintf("missing date at row %d", i),
			}
		}

		if row.HasIndex() {
			if math.IsInf(row.Index, 0) {
				return &ValidationError{
					Field:   "index",
					Message: fmt.Sprintf("index is infinite at row %d", i),
					Value:   row.Index,
				}
			}
			if row.Index < 0 {
				return &ValidationError{
					Field:   "index",
					Message: fmt.Sprintf("index is negative at row %d", i),
					Value:   row.Index,
				}
			}
		}
		if row.HasLogIndex() && math.IsInf(row.LogIndex, 0) {
			return &ValidationError{
				Field:   "log_index",
				Message: fmt.Sprintf("log index is infinite at row %d", i),
				Value:   row.LogIndex,
			}
		}

		key := rowKey{StoreID: row.StoreID, Date: row.Date}
		if seen[key] {
			return &ValidationError{
				Field:   "store_id,date",
				Message: fmt.Sprintf("duplicate (store_id, date) combination: (%s, %s)", row.StoreID, row.Date),
				Value:   key,
			}
		}
		seen[key] = true
	}

	return nil
}
