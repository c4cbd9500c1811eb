package graph

// ElementKind distinguishes the two kinds of elements a walk can visit.
type ElementKind int

const (
	// KindVertex marks a Vertex (a state of the system under test).
	KindVertex ElementKind = iota
	// KindEdge marks an Edge (a transition between states).
	KindEdge
)

// String returns "vertex" or "edge".
func (k ElementKind) String() string {
	switch k {
	case KindVertex:
		return "vertex"
	case KindEdge:
		return "edge"
	default:
		return "unknown"
	}
}

// Element is the unit a walk observes per step: either a *Vertex or an *Edge.
type Element interface {
	ID() string
	Name() string
	Kind() ElementKind
}

// Vertex is a state of the model.
//
// Requirements are free-form tags (for example requirement ids) that
// coverage-oriented stop conditions track. Vertices are immutable once the
// owning Model is built.
type Vertex struct {
	id           string
	name         string
	requirements []string
	props        map[string]string
	index        int
}

// ID returns the unique identifier of the vertex within its model.
func (v *Vertex) ID() string { return v.id }

// Name returns the human-readable name, which may be empty.
func (v *Vertex) Name() string { return v.name }

// Kind reports KindVertex.
func (v *Vertex) Kind() ElementKind { return KindVertex }

// Requirements returns a copy of the requirement tags attached to the vertex.
func (v *Vertex) Requirements() []string {
	if len(v.requirements) == 0 {
		return nil
	}
	out := make([]string, len(v.requirements))
	copy(out, v.requirements)
	return out
}

// Property returns a named property of the vertex.
func (v *Vertex) Property(key string) (string, bool) {
	v2, ok := v.props[key]
	return v2, ok
}

// String returns the name when set, otherwise the id.
func (v *Vertex) String() string {
	if v.name != "" {
		return v.name
	}
	return v.id
}
