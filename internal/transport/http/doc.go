// Package http contains the chi HTTP handlers for the telemetry API.
// Handlers bind query parameters into a FilterSelection, delegate to the
// service layer and render JSON views; empty-result conditions render as
// notices, not errors.
package http
