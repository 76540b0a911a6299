// Package telemetry implements the core transformation pipeline over the
// two radio-network telemetry tables: file-arrival percentages and delay
// minutes, keyed by (region, market, gNodeB, report date) with 96
// intraday 15-minute interval columns.
//
// # Architecture
//
// The package is pure: every function takes immutable tables and returns
// fresh derived structures. It is organized by pipeline stage:
//
//   - types.go: Value (optional numeric), Record, Table, Granularity, FilterSelection
//   - normalize.go: header canonicalization and permissive date parsing
//   - resample.go: 15-minute → hourly → daily re-bucketing and the dense 5-day grid
//   - filter.go: cascading Region → Market → Date → Site domains and table narrowing
//   - risk.go: problematic-site detection
//   - pivot.go: site × interval pivots, grouped aggregates, zero-reading counts
//   - band.go: the shared heatmap color step function
//
// Transformation functions never fail on bad data: unparsable dates and
// absent readings degrade to explicit missing values, which are always
// distinguishable from real zeros.
package telemetry
