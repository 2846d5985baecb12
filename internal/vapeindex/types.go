package vapeindex

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// WeightBasis selects the annual period used for revenue-share weights.
type WeightBasis string

const (
	// BasisFiscal weights revenue over fiscal years (July through June).
	BasisFiscal WeightBasis = "fiscal"
	// BasisCalendar weights revenue over calendar years.
	BasisCalendar WeightBasis = "calendar"
)

// IsValid checks whether the weight basis is a known value
func (b WeightBasis) IsValid() bool {
	return b == BasisFiscal || b == BasisCalendar
}

func (b WeightBasis) String() string {
	return string(b)
}

// IndexKind selects which unit value feeds the index: the quantity-weighted
// unit price or the raw quantity.
type IndexKind string

const (
	// KindPrice builds the index from the per-unit price (unit_value_q).
	KindPrice IndexKind = "price"
	// KindQty builds the index from the observed quantity.
	KindQty IndexKind = "qty"
)

// IsValid checks whether the index kind is a known value
func (k IndexKind) IsValid() bool {
	return k == KindPrice || k == KindQty
}

func (k IndexKind) String() string {
	return string(k)
}

// IndexColumns is the resolved column triple for one run: which input column
// feeds the algorithm and how the output columns are named. It is computed
// once at the start of a run instead of branching on the kind inline.
type IndexColumns struct {
	ValueColumn string
	IndexName   string
	LogName     string
}

// Columns resolves the column triple for the kind.
func (k IndexKind) Columns() IndexColumns {
	if k == KindQty {
		return IndexColumns{
			ValueColumn: "quantity",
			IndexName:   "vape_qty_index",
			LogName:     "l_vape_qty_index",
		}
	}
	return IndexColumns{
		ValueColumn: "unit_value_q",
		IndexName:   "vape_price_index",
		LogName:     "l_vape_price_index",
	}
}

// Filter constants for the pipeline. Only GTIN-scanned rows in the target
// subcategory participate in the index.
const (
	TargetSubcategory = "Vaping Products"
	TargetScanType    = "GTIN"
)

// Period is a calendar month. It is comparable and usable as a map key;
// subtraction is defined as an integer month count.
type Period struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// NewPeriod builds a Period from a calendar year and month number (1-12).
func NewPeriod(year, month int) Period {
	return Period{Year: year, Month: time.Month(month)}
}

// PeriodOf truncates a time to its calendar month.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// IsZero reports whether the period is unset.
func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

// Sub returns the signed number of months between p and other.
func (p Period) Sub(other Period) int {
	return (p.Year-other.Year)*12 + int(p.Month) - int(other.Month)
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Before reports whether p is strictly earlier than other.
func (p Period) Before(other Period) bool {
	return p.Sub(other) < 0
}

// Time converts the period to the first day of its month (UTC).
func (p Period) Time() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// String formats the period as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// ParsePeriod parses a YYYY-MM label.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("parse period %q: %w", s, err)
	}
	return PeriodOf(t), nil
}

// TransactionRecord is one store x product x month observation from the
// scan data, after column names have been lowercased by the loader.
// ProductType may be empty when the product is untyped; an empty value
// still forms its own aggregation group.
type TransactionRecord struct {
	StoreID              string          `json:"store_id"`
	CalendarYear         int             `json:"calendar_year"`
	CalendarMonth        int             `json:"calendar_month"`
	GTIN                 string          `json:"gtin"`
	Subcategory          string          `json:"subcategory"`
	ProductType          string          `json:"product_type"`
	ScanType             string          `json:"scan_type"`
	Quantity             float64         `json:"quantity"`
	QuantityWithDiscount float64         `json:"quantity_with_discount"`
	TotalRevenue         decimal.Decimal `json:"total_revenue_amount"`
	UnitValue            float64         `json:"unit_value_q"`

	// Derived during preparation.
	Date       Period `json:"date"`
	FiscalYear int    `json:"fiscal_year"` // 0 when outside the fiscal table
}

// Value returns the observation value the index kind selects.
func (tr TransactionRecord) Value(kind IndexKind) float64 {
	if kind == KindQty {
		return tr.Quantity
	}
	return tr.UnitValue
}

// PeriodLabel returns the annual period key for the weight basis. An
// unknown fiscal year yields 0 and groups with other unknown rows.
func (tr TransactionRecord) PeriodLabel(basis WeightBasis) int {
	if basis == BasisFiscal {
		return tr.FiscalYear
	}
	return tr.CalendarYear
}

// StoreIndexRow is one store x month output row. Absent values are NaN and
// serialize as empty fields; a present index is strictly positive and
// finite, and a present log index is finite.
type StoreIndexRow struct {
	StoreID  string  `json:"store_id"`
	Date     Period  `json:"date"`
	Index    float64 `json:"index"`
	LogIndex float64 `json:"log_index"`
}

// HasIndex reports whether the index value is present.
func (r StoreIndexRow) HasIndex() bool {
	return !math.IsNaN(r.Index)
}

// HasLogIndex reports whether the log index value is present.
func (r StoreIndexRow) HasLogIndex() bool {
	return !math.IsNaN(r.LogIndex)
}

// ValidationError represents contract violations found at the pipeline's
// validation checkpoints.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// Error implements the error interface
func (ve *ValidationError) Error() string {
	return ve.Message
}

// ColumnError reports a missing required column together with the columns
// that were actually observed.
type ColumnError struct {
	Column    string
	Available []string
}

// Error implements the error interface
func (ce *ColumnError) Error() string {
	return fmt.Sprintf("expected column %q not found; available: %v", ce.Column, ce.Available)
}
