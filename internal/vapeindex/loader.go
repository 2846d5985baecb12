package vapeindex

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// StoreFrame is one store's raw monthly records together with the column
// set observed in the source file. Column names are normalized to
// lowercase on load.
type StoreFrame struct {
	Records []TransactionRecord
	Columns []string
}

// HasColumn reports whether the source carried the named column.
func (f StoreFrame) HasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// RequireColumn returns a ColumnError naming the missing column and the
// observed columns when the frame does not carry it.
func (f StoreFrame) RequireColumn(name string) error {
	if !f.HasColumn(name) {
		return &ColumnError{Column: name, Available: f.Columns}
	}
	return nil
}

// StoreLoader abstracts the external per-store columnar source. The
// production collaborator reads one file per store, named by store
// identifier; tests substitute in-memory frames.
type StoreLoader interface {
	// ListStores returns the store identifiers with a source file under dir.
	ListStores(dir string) ([]string, error)
	// LoadStore reads one store's records from dir.
	LoadStore(dir, storeID string) (StoreFrame, error)
}

// CSVStoreLoader loads per-store CSV files named <store_id>.csv.
type CSVStoreLoader struct{}

// NewCSVStoreLoader creates a CSV-backed store loader.
func NewCSVStoreLoader() *CSVStoreLoader {
	return &CSVStoreLoader{}
}

// ListStores extracts store numbers from file names like "28380.csv".
func (l *CSVStoreLoader) ListStores(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read store directory %s: %w", dir, err)
	}

	var stores []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasSuffix(strings.ToLower(name), ".csv") {
			stores = append(stores, strings.TrimSuffix(name, filepath.Ext(name)))
		}
	}

	sort.Strings(stores)
	return stores, nil
}

// LoadStore reads and parses one store's CSV file.
func (l *CSVStoreLoader) LoadStore(dir, storeID string) (StoreFrame, error) {
	path := filepath.Join(dir, storeID+".csv")

	file, err := os.Open(path)
	if err != nil {
		return StoreFrame{}, fmt.Errorf("open store file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return StoreFrame{}, fmt.Errorf("read header of %s: %w", path, err)
	}

	columns := make([]string, len(header))
	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		columns[i] = name
		colIdx[name] = i
	}

	records, err := reader.ReadAll()
	if err != nil {
		return StoreFrame{}, fmt.Errorf("read records of %s: %w", path, err)
	}

	frame := StoreFrame{Columns: columns}
	for i, record := range records {
		rec, err := parseTransactionRecord(record, colIdx)
		if err != nil {
			return StoreFrame{}, fmt.Errorf("parse %s line %d: %w", filepath.Base(path), i+2, err)
		}
		frame.Records = append(frame.Records, rec)
	}

	return frame, nil
}

// parseTransactionRecord parses one CSV record using the lowercased
// header index. Absent optional columns leave zero values.
func parseTransactionRecord(record []string, colIdx map[string]int) (TransactionRecord, error) {
	field := func(name string) string {
		idx, ok := colIdx[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	storeID := field("store_id")
	if storeID == "" {
		return TransactionRecord{}, fmt.Errorf("empty store_id")
	}

	year, err := strconv.Atoi(field("calendar_year"))
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("parse calendar_year: %w", err)
	}
	month, err := strconv.Atoi(field("calendar_month"))
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("parse calendar_month: %w", err)
	}

	rec := TransactionRecord{
		StoreID:       storeID,
		CalendarYear:  year,
		CalendarMonth: month,
		GTIN:          field("gtin"),
		Subcategory:   field("subcategory"),
		ProductType:   field("product_type"),
		ScanType:      field("scan_type"),
	}

	rec.Quantity, err = parseOptionalFloat(field("quantity"))
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("parse quantity: %w", err)
	}
	rec.QuantityWithDiscount, err = parseOptionalFloat(field("quantity_with_discount"))
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("parse quantity_with_discount: %w", err)
	}
	rec.UnitValue, err = parseOptionalFloat(field("unit_value_q"))
	if err != nil {
		return TransactionRecord{}, fmt.Errorf("parse unit_value_q: %w", err)
	}

	if revenue := field("total_revenue_amount"); revenue != "" {
		rec.TotalRevenue, err = decimal.NewFromString(revenue)
		if err != nil {
			return TransactionRecord{}, fmt.Errorf("parse total_revenue_amount: %w", err)
		}
	}

	return rec, nil
}

// parseOptionalFloat parses a float field, treating empty as zero.
func parseOptionalFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}
