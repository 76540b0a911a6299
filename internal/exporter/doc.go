// Package exporter renders pivot matrices into downloadable spreadsheet
// workbooks with the same color banding as the interactive heatmaps.
package exporter
