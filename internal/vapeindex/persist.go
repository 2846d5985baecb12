package vapeindex

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// WriteStoreIndexCSV saves store index rows to a CSV file. Output column
// names follow the index kind's resolved triple; absent values serialize
// as empty fields.
func WriteStoreIndexCSV(rows []StoreIndexRow, columns IndexColumns, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"store_id", "date", columns.IndexName, columns.LogName}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}

	sorted := make([]StoreIndexRow, len(rows))
	copy(sorted, rows)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].StoreID != sorted[j].StoreID {
			return sorted[i].StoreID < sorted[j].StoreID
		}
		return sorted[i].Date.Before(sorted[j].Date)
	})

	for _, row := range sorted {
		record := []string{
			row.StoreID,
			row.Date.String(),
			formatIndexValue(row.Index),
			formatIndexValue(row.LogIndex),
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write CSV record for %s: %w", row.StoreID, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadStoreIndexCSV reads a per-store index file back for panel assembly.
// Missing required columns surface as a ColumnError naming the column and
// the observed header.
func ReadStoreIndexCSV(path string, columns IndexColumns) ([]StoreIndexRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}

	colIdx := make(map[string]int, len(header))
	observed := make([]string, len(header))
	for i, col := range header {
		name := strings.ToLower(strings.TrimSpace(col))
		observed[i] = name
		colIdx[name] = i
	}

	for _, required := range []string{"store_id", "date", columns.IndexName, columns.LogName} {
		if _, ok := colIdx[required]; !ok {
			return nil, &ColumnError{Column: required, Available: observed}
		}
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read records of %s: %w", path, err)
	}

	rows := make([]StoreIndexRow, 0, len(records))
	for i, record := range records {
		date, err := ParsePeriod(record[colIdx["date"]])
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", filepath.Base(path), i+2, err)
		}

		index, err := parseIndexValue(record[colIdx[columns.IndexName]])
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", filepath.Base(path), i+2, err)
		}
		logIndex, err := parseIndexValue(record[colIdx[columns.LogName]])
		if err != nil {
			return nil, fmt.Errorf("parse %s line %d: %w", filepath.Base(path), i+2, err)
		}

		rows = append(rows, StoreIndexRow{
			StoreID:  record[colIdx["store_id"]],
			Date:     date,
			Index:    index,
			LogIndex: logIndex,
		})
	}

	return rows, nil
}

// formatIndexValue formats an index value for CSV output; NaN becomes an
// empty field.
func formatIndexValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseIndexValue parses a CSV index field; empty means absent.
func parseIndexValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}
