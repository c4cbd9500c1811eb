package emit

// Standard event messages produced by graph.Machine.
const (
	MsgWalkStart      = "walk_start"
	MsgElementVisited = "element_visited"
	MsgStepFailed     = "step_failed"
	MsgWalkDone       = "walk_done"
	MsgWalkError      = "walk_error"
)

// Event represents an observability event emitted during a walk.
//
// Events describe:
//   - Walk start and completion
//   - Each element that becomes current
//   - Recoverable step failures
//   - Fatal errors that abort the walk
type Event struct {
	// RunID identifies the walk that emitted this event.
	RunID string

	// Step is the sequential step number in the walk (1-indexed).
	// Zero for walk-level events and for the seeded start element.
	Step int

	// ElementID identifies the vertex or edge the event is about.
	// Empty for walk-level events.
	ElementID string

	// Msg is the event type, e.g. "element_visited".
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "name": element name
	//   - "kind": "vertex" or "edge"
	//   - "error": error message
	//   - "latency_ms": step duration in milliseconds
	//   - "edge_coverage", "vertex_coverage": coverage ratios
	Meta map[string]interface{}
}
