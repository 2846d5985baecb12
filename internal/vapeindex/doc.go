// Package vapeindex builds chained, revenue-weighted unit-value indexes
// for retail stores from monthly scan data.
//
// For each store the pipeline restricts the data to GTIN-scanned rows in
// the vaping-products subcategory, computes month-over-month unit-value
// relatives per product, and chains them upward in two stages: product
// relatives are raised to the product's revenue share within its product
// type and multiplied into a type index, then type indexes are raised to
// the type's revenue share within the category and multiplied into the
// store-month index. Revenue shares are annual, on either a fiscal-year
// or calendar-year basis.
//
// # Components
//
//   - fiscal.go: fiscal-year lookup table (FY2022-FY2025, July-June years)
//   - continuity.go: lagged unit values with the consecutive-month guard
//   - weights.go: nested annual revenue totals and share weights
//   - builder.go: the two-stage chained index construction
//   - sanitize.go: non-finite / non-positive handling and the
//     null-ignoring product aggregation
//   - validate.go: contract checks at the three pipeline checkpoints
//   - loader.go: per-store columnar source behind the StoreLoader interface
//   - persist.go: per-store and panel CSV output
//   - orchestrator.go: multi-store loop, skip handling, panel assembly
//   - report.go: xlsx run summary
//
// # Usage
//
//	loader := vapeindex.NewCSVStoreLoader()
//	orch, err := vapeindex.NewOrchestrator(loader, vapeindex.BasisFiscal, vapeindex.KindPrice, slog.Default())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	summary, err := orch.ProcessAllStores(ctx, storeDir, outDir)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	panel, err := orch.BuildPanel(ctx, outDir, panelPath)
//
// # Numerical conventions
//
// Absent values are NaN. Division by zero, zero lags and non-positive
// levels never abort a run; each stage boundary converts them to absent
// so a degenerate store-month-product cell drops out of the chained
// product. Configuration and schema violations, by contrast, fail
// immediately and loudly.
package vapeindex
