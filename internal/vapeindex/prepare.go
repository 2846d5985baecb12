package vapeindex

import (
	"fmt"
)

// PrepareRecords performs the basic per-store preparation: derive the
// monthly date from the calendar fields, keep only the target scan type,
// and annotate each row with its fiscal year. The returned slice may be
// empty when no row survives the scan-type filter; that is a skip
// condition, not an error.
func PrepareRecords(records []TransactionRecord, cal *FiscalCalendar) ([]TransactionRecord, error) {
	prepared := make([]TransactionRecord, 0, len(records))

	for _, rec := range records {
		if rec.ScanType != TargetScanType {
			continue
		}
		if rec.CalendarMonth < 1 || rec.CalendarMonth > 12 {
			return nil, fmt.Errorf("invalid calendar_month %d for store %s", rec.CalendarMonth, rec.StoreID)
		}

		rec.Date = NewPeriod(rec.CalendarYear, rec.CalendarMonth)
		if fy, ok := cal.FiscalYear(rec.Date); ok {
			rec.FiscalYear = fy
		} else {
			rec.FiscalYear = 0
		}

		prepared = append(prepared, rec)
	}

	if len(prepared) == 0 {
		return prepared, nil
	}

	if err := ValidateStoreRecords(prepared); err != nil {
		return nil, fmt.Errorf("store records validation: %w", err)
	}

	return prepared, nil
}

// SubsetSubcategory returns only the rows in the target subcategory.
func SubsetSubcategory(records []TransactionRecord, subcategory string) []TransactionRecord {
	var subset []TransactionRecord
	for _, rec := range records {
		if rec.Subcategory == subcategory {
			subset = append(subset, rec)
		}
	}
	return subset
}
