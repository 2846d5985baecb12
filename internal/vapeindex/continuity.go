package vapeindex

import (
	"math"
	"sort"
)

// UnitValueObs is one observation in a (store, product) unit-value series
// after lag computation. LagValue is present only when the previous
// observation for the same product is exactly one month earlier; a lag
// across a data gap is never kept, so every ratio built downstream is a
// true consecutive-month comparison.
type UnitValueObs struct {
	Record    TransactionRecord
	Value     float64
	LagValue  float64 // NaN when no consecutive-month predecessor exists
	MonthDiff int     // months since the previous observation; 0 for the first
	HasPrev   bool
}

// ComputeUnitValueLags sorts the records by (store, product, date) and
// attaches the lagged value within each (store, product) group. The lag is
// nulled out wherever the month distance to the predecessor is not exactly
// one, guarding against silently comparing non-adjacent months after a gap.
func ComputeUnitValueLags(records []TransactionRecord, kind IndexKind) []UnitValueObs {
	sorted := make([]TransactionRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.StoreID != b.StoreID {
			return a.StoreID < b.StoreID
		}
		if a.GTIN != b.GTIN {
			return a.GTIN < b.GTIN
		}
		return a.Date.Before(b.Date)
	})

	obs := make([]UnitValueObs, 0, len(sorted))
	for i, rec := range sorted {
		o := UnitValueObs{
			Record:   rec,
			Value:    rec.Value(kind),
			LagValue: math.NaN(),
		}

		if i > 0 {
			prev := sorted[i-1]
			if prev.StoreID == rec.StoreID && prev.GTIN == rec.GTIN {
				o.HasPrev = true
				o.MonthDiff = rec.Date.Sub(prev.Date)
				if o.MonthDiff == 1 {
					o.LagValue = prev.Value(kind)
				}
			}
		}

		obs = append(obs, o)
	}

	return obs
}
