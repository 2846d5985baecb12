package vapeindex

import (
	"math"

	"github.com/shopspring/decimal"
)

// CategoryKey identifies a (store, subcategory, annual period) revenue
// group. Period is the fiscal or calendar year depending on the weight
// basis; 0 groups rows whose fiscal year is unknown.
type CategoryKey struct {
	StoreID     string
	Subcategory string
	Period      int
}

// TypeKey identifies a (store, subcategory, product type, period) revenue
// group. An empty ProductType is a valid group of its own.
type TypeKey struct {
	StoreID     string
	Subcategory string
	ProductType string
	Period      int
}

// ProductKey identifies a (store, subcategory, product type, product,
// period) revenue group.
type ProductKey struct {
	StoreID     string
	Subcategory string
	ProductType string
	GTIN        string
	Period      int
}

// RevenueWeights holds the three nested annual revenue totals the chained
// index weights are derived from. Totals accumulate exactly in decimals;
// ratios are formed in floating point only when weights are needed.
type RevenueWeights struct {
	Category map[CategoryKey]decimal.Decimal
	Type     map[TypeKey]decimal.Decimal
	Product  map[ProductKey]decimal.Decimal
	Basis    WeightBasis
}

// ComputeRevenueWeights sums total revenue at category, product-type and
// product granularity over the annual period the basis selects. Finer
// totals never exceed their coarser parent for the same (store, period)
// because every row contributes to all three levels.
func ComputeRevenueWeights(records []TransactionRecord, basis WeightBasis) *RevenueWeights {
	rw := &RevenueWeights{
		Category: make(map[CategoryKey]decimal.Decimal),
		Type:     make(map[TypeKey]decimal.Decimal),
		Product:  make(map[ProductKey]decimal.Decimal),
		Basis:    basis,
	}

	for _, rec := range records {
		period := rec.PeriodLabel(basis)

		ck := CategoryKey{StoreID: rec.StoreID, Subcategory: rec.Subcategory, Period: period}
		rw.Category[ck] = rw.Category[ck].Add(rec.TotalRevenue)

		tk := TypeKey{StoreID: rec.StoreID, Subcategory: rec.Subcategory, ProductType: rec.ProductType, Period: period}
		rw.Type[tk] = rw.Type[tk].Add(rec.TotalRevenue)

		pk := ProductKey{StoreID: rec.StoreID, Subcategory: rec.Subcategory, ProductType: rec.ProductType, GTIN: rec.GTIN, Period: period}
		rw.Product[pk] = rw.Product[pk].Add(rec.TotalRevenue)
	}

	return rw
}

// Stage1Weight returns the product's revenue share within its product type
// for the annual period: product revenue / type revenue. A zero or missing
// type total yields a non-finite value that the sanitize step downstream
// converts to absent.
func (rw *RevenueWeights) Stage1Weight(key ProductKey) float64 {
	product := rw.Product[key]
	typ := rw.Type[TypeKey{
		StoreID:     key.StoreID,
		Subcategory: key.Subcategory,
		ProductType: key.ProductType,
		Period:      key.Period,
	}]
	return product.InexactFloat64() / typ.InexactFloat64()
}

// Stage2Weight returns the product type's revenue share within the
// category for the annual period: type revenue / category revenue. Under
// the fiscal basis, months outside the fiscal table have no annual
// category total, so their type share is undefined and the weight is
// absent; the months drop out of the index downstream.
func (rw *RevenueWeights) Stage2Weight(key TypeKey) float64 {
	if rw.Basis == BasisFiscal && key.Period == 0 {
		return math.NaN()
	}

	typ := rw.Type[key]
	category := rw.Category[CategoryKey{
		StoreID:     key.StoreID,
		Subcategory: key.Subcategory,
		Period:      key.Period,
	}]
	return typ.InexactFloat64() / category.InexactFloat64()
}
