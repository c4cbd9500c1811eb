package graph

// Edge is a directed transition between two vertices of a Model.
//
// Edges usually represent the actions a test performs against the system
// under test. The guard and actions are opaque to the engine: they are
// carried so that collaborators (test adapters, reporters) can interpret them.
//
// Edges are immutable once the owning Model is built.
type Edge struct {
	id      string
	name    string
	source  *Vertex
	target  *Vertex
	guard   string
	actions []string
	weight  float64
	props   map[string]string
	index   int
}

// ID returns the unique identifier of the edge within its model.
func (e *Edge) ID() string { return e.id }

// Name returns the human-readable name, which may be empty.
func (e *Edge) Name() string { return e.name }

// Kind reports KindEdge.
func (e *Edge) Kind() ElementKind { return KindEdge }

// Source returns the vertex the edge leaves from.
func (e *Edge) Source() *Vertex { return e.source }

// Target returns the vertex the edge arrives at.
func (e *Edge) Target() *Vertex { return e.target }

// Guard returns the guard expression, or "" when the edge is unguarded.
func (e *Edge) Guard() string { return e.guard }

// Actions returns a copy of the action payloads attached to the edge.
func (e *Edge) Actions() []string {
	if len(e.actions) == 0 {
		return nil
	}
	out := make([]string, len(e.actions))
	copy(out, e.actions)
	return out
}

// Weight returns the selection weight used by weighted strategies.
// Zero means "no preference".
func (e *Edge) Weight() float64 { return e.weight }

// Property returns a named property of the edge.
func (e *Edge) Property(key string) (string, bool) {
	v, ok := e.props[key]
	return v, ok
}

// String returns the name when set, otherwise the id.
func (e *Edge) String() string {
	if e.name != "" {
		return e.name
	}
	return e.id
}
