package graph

// Model is an immutable directed graph of vertices and edges.
//
// A Model is produced by a Builder and never changes afterwards, so a single
// *Model may be walked by any number of independent ExecutionContexts,
// including from different goroutines.
//
// Adjacency is pre-indexed at build time: InEdges and OutEdges are O(1) and
// are safe to call on every step of a walk.
type Model struct {
	vertices []*Vertex
	edges    []*Edge

	inEdges  [][]*Edge
	outEdges [][]*Edge

	vertexByID   map[string]*Vertex
	edgeByID     map[string]*Edge
	vertexByName map[string][]*Vertex
	edgeByName   map[string][]*Edge
}

// VertexSpec describes a vertex to add to a Builder.
type VertexSpec struct {
	ID           string
	Name         string
	Requirements []string
	Properties   map[string]string
}

// EdgeSpec describes an edge to add to a Builder.
// SourceID and TargetID must reference vertices added to the same Builder.
type EdgeSpec struct {
	ID         string
	Name       string
	SourceID   string
	TargetID   string
	Guard      string
	Actions    []string
	Weight     float64
	Properties map[string]string
}

// Builder accumulates vertex and edge specs and validates them into a Model.
//
// Example:
//
//	b := graph.NewBuilder()
//	b.AddVertex(graph.VertexSpec{ID: "v0", Name: "Start"})
//	b.AddVertex(graph.VertexSpec{ID: "v1", Name: "LoggedIn"})
//	b.AddEdge(graph.EdgeSpec{ID: "e0", Name: "login", SourceID: "v0", TargetID: "v1"})
//	model, err := b.Build()
type Builder struct {
	vertices []VertexSpec
	edges    []EdgeSpec
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddVertex queues a vertex. Validation happens in Build.
func (b *Builder) AddVertex(spec VertexSpec) *Builder {
	b.vertices = append(b.vertices, spec)
	return b
}

// AddEdge queues an edge. Validation happens in Build.
func (b *Builder) AddEdge(spec EdgeSpec) *Builder {
	b.edges = append(b.edges, spec)
	return b
}

// Build validates the queued specs and returns the immutable Model.
//
// Returns *StructuralModelError if:
//   - a vertex or edge id is empty or duplicated
//   - an edge references a vertex id that was never added
//   - an edge has a negative weight
func (b *Builder) Build() (*Model, error) {
	m := &Model{
		vertices:     make([]*Vertex, 0, len(b.vertices)),
		edges:        make([]*Edge, 0, len(b.edges)),
		vertexByID:   make(map[string]*Vertex, len(b.vertices)),
		edgeByID:     make(map[string]*Edge, len(b.edges)),
		vertexByName: make(map[string][]*Vertex),
		edgeByName:   make(map[string][]*Edge),
	}

	for _, spec := range b.vertices {
		if spec.ID == "" {
			return nil, &StructuralModelError{Code: "EMPTY_ID", Message: "vertex id cannot be empty"}
		}
		if _, dup := m.vertexByID[spec.ID]; dup {
			return nil, &StructuralModelError{Code: "DUPLICATE_ID", Message: "duplicate vertex id: " + spec.ID}
		}
		v := &Vertex{
			id:           spec.ID,
			name:         spec.Name,
			requirements: cloneStrings(spec.Requirements),
			props:        cloneProps(spec.Properties),
			index:        len(m.vertices),
		}
		m.vertices = append(m.vertices, v)
		m.vertexByID[v.id] = v
		m.vertexByName[v.name] = append(m.vertexByName[v.name], v)
	}

	m.inEdges = make([][]*Edge, len(m.vertices))
	m.outEdges = make([][]*Edge, len(m.vertices))

	for _, spec := range b.edges {
		if spec.ID == "" {
			return nil, &StructuralModelError{Code: "EMPTY_ID", Message: "edge id cannot be empty"}
		}
		if _, dup := m.edgeByID[spec.ID]; dup {
			return nil, &StructuralModelError{Code: "DUPLICATE_ID", Message: "duplicate edge id: " + spec.ID}
		}
		if _, dup := m.vertexByID[spec.ID]; dup {
			return nil, &StructuralModelError{Code: "DUPLICATE_ID", Message: "edge id collides with vertex id: " + spec.ID}
		}
		src, ok := m.vertexByID[spec.SourceID]
		if !ok {
			return nil, &StructuralModelError{
				Code:    "DANGLING_EDGE",
				Message: "edge " + spec.ID + " references unknown source vertex " + quoteID(spec.SourceID),
			}
		}
		dst, ok := m.vertexByID[spec.TargetID]
		if !ok {
			return nil, &StructuralModelError{
				Code:    "DANGLING_EDGE",
				Message: "edge " + spec.ID + " references unknown target vertex " + quoteID(spec.TargetID),
			}
		}
		if spec.Weight < 0 {
			return nil, &StructuralModelError{Code: "NEGATIVE_WEIGHT", Message: "edge " + spec.ID + " has a negative weight"}
		}
		e := &Edge{
			id:      spec.ID,
			name:    spec.Name,
			source:  src,
			target:  dst,
			guard:   spec.Guard,
			actions: cloneStrings(spec.Actions),
			weight:  spec.Weight,
			props:   cloneProps(spec.Properties),
			index:   len(m.edges),
		}
		m.edges = append(m.edges, e)
		m.edgeByID[e.id] = e
		m.edgeByName[e.name] = append(m.edgeByName[e.name], e)
		m.outEdges[src.index] = append(m.outEdges[src.index], e)
		m.inEdges[dst.index] = append(m.inEdges[dst.index], e)
	}

	return m, nil
}

// FindVertices returns every vertex named name, in construction order.
// Names are not unique; a miss returns an empty slice.
func (m *Model) FindVertices(name string) []*Vertex {
	return cloneVertices(m.vertexByName[name])
}

// FindEdges returns every edge named name, in construction order.
func (m *Model) FindEdges(name string) []*Edge {
	return cloneEdges(m.edgeByName[name])
}

// Vertices returns all vertices in construction order.
func (m *Model) Vertices() []*Vertex {
	return cloneVertices(m.vertices)
}

// Edges returns all edges in construction order.
func (m *Model) Edges() []*Edge {
	return cloneEdges(m.edges)
}

// VertexCount returns the number of vertices.
func (m *Model) VertexCount() int { return len(m.vertices) }

// EdgeCount returns the number of edges.
func (m *Model) EdgeCount() int { return len(m.edges) }

// Vertex looks a vertex up by id.
func (m *Model) Vertex(id string) (*Vertex, bool) {
	v, ok := m.vertexByID[id]
	return v, ok
}

// Edge looks an edge up by id.
func (m *Model) Edge(id string) (*Edge, bool) {
	e, ok := m.edgeByID[id]
	return e, ok
}

// InEdges returns the edges arriving at v. Vertices from another model
// yield an empty slice.
func (m *Model) InEdges(v *Vertex) []*Edge {
	if !m.Contains(v) {
		return []*Edge{}
	}
	return cloneEdges(m.inEdges[v.index])
}

// OutEdges returns the edges leaving v. Vertices from another model
// yield an empty slice.
func (m *Model) OutEdges(v *Vertex) []*Edge {
	if !m.Contains(v) {
		return []*Edge{}
	}
	return cloneEdges(m.outEdges[v.index])
}

// InDegree returns len(InEdges(v)) without copying.
func (m *Model) InDegree(v *Vertex) int {
	if !m.Contains(v) {
		return 0
	}
	return len(m.inEdges[v.index])
}

// OutDegree returns len(OutEdges(v)) without copying.
func (m *Model) OutDegree(v *Vertex) int {
	if !m.Contains(v) {
		return 0
	}
	return len(m.outEdges[v.index])
}

// Contains reports whether the element belongs to this model instance.
func (m *Model) Contains(el Element) bool {
	switch e := el.(type) {
	case *Vertex:
		return e != nil && e.index < len(m.vertices) && m.vertices[e.index] == e
	case *Edge:
		return e != nil && e.index < len(m.edges) && m.edges[e.index] == e
	default:
		return false
	}
}

// Requirements returns the distinct requirement tags of all vertices,
// in first-seen order.
func (m *Model) Requirements() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range m.vertices {
		for _, r := range v.requirements {
			if _, ok := seen[r]; ok {
				continue
			}
			seen[r] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

func cloneVertices(in []*Vertex) []*Vertex {
	out := make([]*Vertex, len(in))
	copy(out, in)
	return out
}

func cloneEdges(in []*Edge) []*Edge {
	out := make([]*Edge, len(in))
	copy(out, in)
	return out
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneProps(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func quoteID(id string) string {
	return "\"" + id + "\""
}
