// Package services orchestrates the telemetry pipeline: it owns the
// TTL-cached immutable snapshot of both source tables and exposes the
// filter, heatmap, trend, summary and export operations as pure
// recomputations over that snapshot.
package services
