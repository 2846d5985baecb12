package vapeindex

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"
)

// Builder constructs the chained, revenue-weighted store-month index from
// prepared transaction records. The computation is pure and deterministic:
// numerical degeneracy in a single cell becomes an absent value, never an
// error, while configuration problems fail before any processing begins.
type Builder struct {
	basis   WeightBasis
	kind    IndexKind
	columns IndexColumns
	logger  *slog.Logger
}

// NewBuilder creates a builder for the given weight basis and index kind.
// Invalid values are rejected immediately as configuration errors.
func NewBuilder(basis WeightBasis, kind IndexKind, logger *slog.Logger) (*Builder, error) {
	if !basis.IsValid() {
		return nil, fmt.Errorf("weight_basis must be %q or %q, got %q", BasisFiscal, BasisCalendar, basis)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("index_kind must be %q or %q, got %q", KindPrice, KindQty, kind)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Builder{
		basis:   basis,
		kind:    kind,
		columns: kind.Columns(),
		logger:  logger,
	}, nil
}

// Columns returns the resolved column triple for this builder's kind.
func (b *Builder) Columns() IndexColumns {
	return b.columns
}

// typeDateKey identifies one product type's index level on one month.
type typeDateKey struct {
	StoreID     string
	Subcategory string
	ProductType string
	Date        Period
}

// BuildStoreIndex computes the store-month index series for a single
// store's subcategory records. Records must already be filtered to the
// target subcategory and scan type and carry their fiscal annotation.
func (b *Builder) BuildStoreIndex(ctx context.Context, records []TransactionRecord) ([]StoreIndexRow, error) {
	start := time.Now()

	b.logger.InfoContext(ctx, "building store index",
		"records", len(records),
		"weight_basis", b.basis.String(),
		"index_kind", b.kind.String(),
	)

	// Lagged unit values with the consecutive-month guard.
	obs := ComputeUnitValueLags(records, b.kind)

	// Three nested annual revenue totals.
	weights := ComputeRevenueWeights(records, b.basis)

	// Stage 1: raise each product's month-over-month relative to its
	// revenue share within the product type, then chain the relatives
	// into a per-type index by date.
	typeIndex := make(map[typeDateKey]*nanProd)
	dateToPeriod := make(map[Period]int)

	for _, o := range obs {
		rec := o.Record
		period := rec.PeriodLabel(b.basis)
		dateToPeriod[rec.Date] = period

		w1 := weights.Stage1Weight(ProductKey{
			StoreID:     rec.StoreID,
			Subcategory: rec.Subcategory,
			ProductType: rec.ProductType,
			GTIN:        rec.GTIN,
			Period:      period,
		})

		unitValueIndex := Sanitize(math.Pow(o.Value/o.LagValue, w1))

		key := typeDateKey{
			StoreID:     rec.StoreID,
			Subcategory: rec.Subcategory,
			ProductType: rec.ProductType,
			Date:        rec.Date,
		}
		prod, ok := typeIndex[key]
		if !ok {
			prod = &nanProd{}
			typeIndex[key] = prod
		}
		prod.add(unitValueIndex)
	}

	// Stage 2: raise each type index to the type's revenue share within
	// the category and chain across types into the store-month index.
	// Keys are walked in sorted order so the float product accumulates
	// deterministically.
	typeKeys := make([]typeDateKey, 0, len(typeIndex))
	for key := range typeIndex {
		typeKeys = append(typeKeys, key)
	}
	sort.Slice(typeKeys, func(i, j int) bool {
		x, y := typeKeys[i], typeKeys[j]
		if x.StoreID != y.StoreID {
			return x.StoreID < y.StoreID
		}
		if x.ProductType != y.ProductType {
			return x.ProductType < y.ProductType
		}
		return x.Date.Before(y.Date)
	})

	type storeDateKey struct {
		StoreID string
		Date    Period
	}
	storeIndex := make(map[storeDateKey]*nanProd)

	for _, key := range typeKeys {
		period := dateToPeriod[key.Date]

		w2 := weights.Stage2Weight(TypeKey{
			StoreID:     key.StoreID,
			Subcategory: key.Subcategory,
			ProductType: key.ProductType,
			Period:      period,
		})

		ti := Sanitize(typeIndex[key].value())
		weighted := math.Pow(ti, w2)

		sk := storeDateKey{StoreID: key.StoreID, Date: key.Date}
		prod, ok := storeIndex[sk]
		if !ok {
			prod = &nanProd{}
			storeIndex[sk] = prod
		}
		prod.add(weighted)
	}

	// Final sanitize and natural log. The subcategory key is constant and
	// dropped from the output.
	rows := make([]StoreIndexRow, 0, len(storeIndex))
	for sk, prod := range storeIndex {
		index := Sanitize(prod.value())
		rows = append(rows, StoreIndexRow{
			StoreID:  sk.StoreID,
			Date:     sk.Date,
			Index:    index,
			LogIndex: SanitizeLog(math.Log(index)),
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].StoreID != rows[j].StoreID {
			return rows[i].StoreID < rows[j].StoreID
		}
		return rows[i].Date.Before(rows[j].Date)
	})

	b.logger.InfoContext(ctx, "store index built",
		"rows", len(rows),
		"duration", time.Since(start),
	)

	return rows, nil
}
