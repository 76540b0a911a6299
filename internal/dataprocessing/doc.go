// Package dataprocessing loads the two delimited telemetry source files
// and produces normalized, immutable telemetry tables.
//
// Parsing is tolerant of data problems (unparsable dates and
// non-numeric readings become explicit missing values) but strict
// about configuration: an absent source file fails fast with
// ErrSourceMissing rather than continuing with partial data.
package dataprocessing
