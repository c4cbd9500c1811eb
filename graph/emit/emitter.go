// Package emit provides event emission and observability for graph walks.
package emit

// Emitter receives observability events from a walk.
//
// Emitters enable pluggable backends:
//   - Logging: text or JSON lines, log/slog
//   - Distributed tracing: OpenTelemetry
//   - In-memory history for tests and post-run analysis
//
// Implementations should be:
//   - Non-blocking: a slow backend must not stall the stepping loop
//   - Safe for concurrent use: independent walks may share one emitter
//   - Resilient: Emit never panics and never returns an error
type Emitter interface {
	// Emit sends an observability event to the configured backend.
	// Failures are handled internally (dropped or logged).
	Emit(event Event)
}
