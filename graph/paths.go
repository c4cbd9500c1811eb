package graph

// ReachableVertices returns every vertex reachable from v by following
// edges, v included, in breadth-first order.
func (m *Model) ReachableVertices(v *Vertex) []*Vertex {
	if !m.Contains(v) {
		return []*Vertex{}
	}
	seen := make([]bool, len(m.vertices))
	seen[v.index] = true
	out := []*Vertex{v}
	for i := 0; i < len(out); i++ {
		for _, e := range m.outEdges[out[i].index] {
			t := e.target
			if !seen[t.index] {
				seen[t.index] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// ShortestPath returns the edges of a shortest path from v to the first
// element for which goal returns true. Edges count as path elements, so a
// goal edge ends the path with that edge and a goal vertex ends it with the
// edge entering it. Ties are broken by construction order, so the result is
// deterministic. When v itself satisfies goal the path is empty.
//
// The second result is false when no element satisfying goal is reachable.
func (m *Model) ShortestPath(v *Vertex, goal func(Element) bool) ([]*Edge, bool) {
	if !m.Contains(v) {
		return nil, false
	}
	if goal(v) {
		return []*Edge{}, true
	}

	via := make([]*Edge, len(m.vertices)) // edge used to first reach each vertex
	seen := make([]bool, len(m.vertices))
	seen[v.index] = true
	queue := []*Vertex{v}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range m.outEdges[cur.index] {
			if goal(e) {
				return append(m.trace(via, cur), e), true
			}
			t := e.target
			if seen[t.index] {
				continue
			}
			seen[t.index] = true
			via[t.index] = e
			if goal(t) {
				return m.trace(via, t), true
			}
			queue = append(queue, t)
		}
	}
	return nil, false
}

// trace rebuilds the edge path ending at v from the BFS predecessor table.
func (m *Model) trace(via []*Edge, v *Vertex) []*Edge {
	var rev []*Edge
	for e := via[v.index]; e != nil; e = via[e.source.index] {
		rev = append(rev, e)
	}
	out := make([]*Edge, len(rev))
	for i, e := range rev {
		out[len(rev)-1-i] = e
	}
	return out
}
