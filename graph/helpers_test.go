package graph_test

import (
	"testing"

	"github.com/dshills/graphwalker-go/graph"
)

// scenarioModel builds {Start, A, B} with toA: Start->A, toB: A->B and
// backToA: B->A.
func scenarioModel(t *testing.T) *graph.Model {
	t.Helper()
	m, err := graph.NewBuilder().
		AddVertex(graph.VertexSpec{ID: "v0", Name: "Start"}).
		AddVertex(graph.VertexSpec{ID: "v1", Name: "A", Requirements: []string{"REQ-1"}}).
		AddVertex(graph.VertexSpec{ID: "v2", Name: "B", Requirements: []string{"REQ-2"}}).
		AddEdge(graph.EdgeSpec{ID: "e0", Name: "toA", SourceID: "v0", TargetID: "v1"}).
		AddEdge(graph.EdgeSpec{ID: "e1", Name: "toB", SourceID: "v1", TargetID: "v2"}).
		AddEdge(graph.EdgeSpec{ID: "e2", Name: "backToA", SourceID: "v2", TargetID: "v1"}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

// newWalk resolves the start vertex of a fresh context for gen over m and
// returns a Machine ready to walk.
func newWalk(t *testing.T, m *graph.Model, gen graph.PathGenerator, opts ...graph.Option) *graph.Machine {
	t.Helper()
	ec := graph.NewExecutionContext(m, gen)
	if _, err := graph.ResolveStart(ec); err != nil {
		t.Fatalf("ResolveStart failed: %v", err)
	}
	machine, err := graph.NewMachine(ec, opts...)
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	return machine
}

// flakyGenerator delegates to inner but fails the calls listed in failOn
// (1-based NextStep call numbers) with err.
type flakyGenerator struct {
	inner  graph.PathGenerator
	failOn map[int]bool
	err    error
	calls  int
}

func (g *flakyGenerator) StopCondition() graph.StopCondition { return g.inner.StopCondition() }

func (g *flakyGenerator) HasNextStep(ec *graph.ExecutionContext) (bool, error) {
	return g.inner.HasNextStep(ec)
}

func (g *flakyGenerator) NextStep(ec *graph.ExecutionContext) (*graph.Edge, error) {
	g.calls++
	if g.failOn[g.calls] {
		return nil, g.err
	}
	return g.inner.NextStep(ec)
}

func (g *flakyGenerator) String() string { return "flaky(" + g.inner.String() + ")" }
