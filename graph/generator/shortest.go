package generator

import (
	"math/rand"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/condition"
)

// AStar walks a shortest path to the element named by its stop condition,
// which must contain a reached_vertex or reached_edge goal.
//
// An unreachable goal is a fatal *graph.AmbiguousModelError: no later step
// can make it reachable, since the walk only moves forward along edges.
// Standing on the goal while the rest of the condition is unmet, as in
// reached_vertex(B) && length(100), is fatal for the same reason.
type AStar struct {
	Base
}

// NewAStar returns a shortest-path generator.
func NewAStar(cond graph.StopCondition) *AStar {
	return &AStar{Base{Condition: cond}}
}

func (g *AStar) NextStep(ec *graph.ExecutionContext) (*graph.Edge, error) {
	goal, ok := condition.FindGoal(g.Condition)
	if !ok {
		return nil, &graph.AmbiguousModelError{
			Strategy: "a_star",
			Message:  "stop condition " + conditionString(g.Condition) + " names no goal element",
			Fatal:    true,
		}
	}

	v, _, err := outEdges(ec)
	if err != nil {
		return nil, err
	}

	path, ok := ec.Model().ShortestPath(v, goal.Goal)
	if !ok {
		return nil, &graph.AmbiguousModelError{
			Strategy: "a_star",
			Message:  "goal " + conditionString(g.Condition) + " is unreachable from " + label(v),
			Fatal:    true,
		}
	}
	if len(path) == 0 {
		return nil, &graph.AmbiguousModelError{
			Strategy: "a_star",
			Message:  "goal reached at " + label(v) + " but " + conditionString(g.Condition) + " is not fulfilled",
			Fatal:    true,
		}
	}
	return path[0], nil
}

func (g *AStar) String() string { return g.describe("a_star") }

// QuickRandom covers edges fast: it picks a random unvisited edge, walks a
// shortest path to it, and repeats. Once every reachable edge is visited it
// falls back to uniform random choice.
type QuickRandom struct {
	Base
	rng    *rand.Rand
	target *graph.Edge
}

// NewQuickRandom returns a coverage-driven generator.
func NewQuickRandom(cond graph.StopCondition, seed int64) *QuickRandom {
	return &QuickRandom{Base: Base{Condition: cond}, rng: rand.New(rand.NewSource(seed))}
}

func (g *QuickRandom) NextStep(ec *graph.ExecutionContext) (*graph.Edge, error) {
	v, edges, err := outEdges(ec)
	if err != nil {
		return nil, err
	}
	m := ec.Model()

	if g.target == nil || ec.Visited(g.target) {
		g.target = nil
		var candidates []*graph.Edge
		for _, e := range m.Edges() {
			if !ec.Visited(e) {
				candidates = append(candidates, e)
			}
		}
		g.rng.Shuffle(len(candidates), func(i, j int) {
			candidates[i], candidates[j] = candidates[j], candidates[i]
		})
		for _, e := range candidates {
			if path, ok := m.ShortestPath(v, isElement(e)); ok && len(path) > 0 {
				g.target = e
				return path[0], nil
			}
		}
		return edges[g.rng.Intn(len(edges))], nil
	}

	path, ok := m.ShortestPath(v, isElement(g.target))
	if !ok || len(path) == 0 {
		// The target fell behind the walk; choose again on the next call.
		g.target = nil
		return edges[g.rng.Intn(len(edges))], nil
	}
	return path[0], nil
}

func (g *QuickRandom) String() string { return g.describe("quick_random") }

func isElement(target graph.Element) func(graph.Element) bool {
	return func(el graph.Element) bool { return el == target }
}

func conditionString(sc graph.StopCondition) string {
	if sc == nil {
		return "<none>"
	}
	return sc.String()
}

func label(el graph.Element) string {
	if el.Name() != "" {
		return el.Name()
	}
	return el.ID()
}
