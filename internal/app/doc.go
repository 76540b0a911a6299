// Package app wires configuration, logging, metrics, the telemetry
// service and the HTTP router into a runnable server with graceful
// shutdown.
package app
