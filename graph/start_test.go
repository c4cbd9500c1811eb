package graph_test

import (
	"testing"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/condition"
	"github.com/dshills/graphwalker-go/graph/generator"
)

func TestResolveStart(t *testing.T) {
	never := generator.NewFirst(condition.Never{})

	t.Run("vertex named Start becomes current even with in-edges", func(t *testing.T) {
		m, err := graph.NewBuilder().
			AddVertex(graph.VertexSpec{ID: "root", Name: "Root"}).
			AddVertex(graph.VertexSpec{ID: "s", Name: "Start"}).
			AddEdge(graph.EdgeSpec{ID: "e0", SourceID: "root", TargetID: "s"}).
			AddEdge(graph.EdgeSpec{ID: "e1", SourceID: "s", TargetID: "root"}).
			Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		ec := graph.NewExecutionContext(m, never)
		res, err := graph.ResolveStart(ec)
		if err != nil {
			t.Fatalf("ResolveStart failed: %v", err)
		}
		if res != graph.StartByName {
			t.Errorf("expected by_name, got %v", res)
		}
		if cur := ec.CurrentElement(); cur == nil || cur.Name() != "Start" {
			t.Errorf("expected current element Start, got %v", cur)
		}
		if ec.NextElement() != nil {
			t.Errorf("expected no next element, got %v", ec.NextElement())
		}
		if ec.StepCount() != 0 {
			t.Errorf("seeding must not count as a step, got %d", ec.StepCount())
		}
		if ec.StartVertex() == nil || ec.StartVertex().Name() != "Start" {
			t.Errorf("expected start vertex Start, got %v", ec.StartVertex())
		}
	})

	t.Run("first vertex with zero in-edges becomes next", func(t *testing.T) {
		m, err := graph.NewBuilder().
			AddVertex(graph.VertexSpec{ID: "a", Name: "A"}).
			AddVertex(graph.VertexSpec{ID: "b", Name: "B"}).
			AddVertex(graph.VertexSpec{ID: "c", Name: "C"}).
			AddEdge(graph.EdgeSpec{ID: "e0", SourceID: "b", TargetID: "a"}).
			AddEdge(graph.EdgeSpec{ID: "e1", SourceID: "c", TargetID: "a"}).
			Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		ec := graph.NewExecutionContext(m, never)
		res, err := graph.ResolveStart(ec)
		if err != nil {
			t.Fatalf("ResolveStart failed: %v", err)
		}
		if res != graph.StartByInDegree {
			t.Errorf("expected by_in_degree, got %v", res)
		}
		if ec.CurrentElement() != nil {
			t.Errorf("expected no current element, got %v", ec.CurrentElement())
		}
		if next := ec.NextElement(); next == nil || next.Name() != "B" {
			t.Errorf("expected next element B, got %v", next)
		}
		if ec.StartVertex() != nil {
			t.Errorf("start vertex is only known after the first step, got %v", ec.StartVertex())
		}
	})

	t.Run("no candidate leaves the context unpositioned", func(t *testing.T) {
		m, err := graph.NewBuilder().
			AddVertex(graph.VertexSpec{ID: "a", Name: "A"}).
			AddVertex(graph.VertexSpec{ID: "b", Name: "B"}).
			AddEdge(graph.EdgeSpec{ID: "ab", SourceID: "a", TargetID: "b"}).
			AddEdge(graph.EdgeSpec{ID: "ba", SourceID: "b", TargetID: "a"}).
			Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		ec := graph.NewExecutionContext(m, never)
		res, err := graph.ResolveStart(ec)
		if err != nil {
			t.Fatalf("ResolveStart failed: %v", err)
		}
		if res != graph.StartUnresolved {
			t.Errorf("expected unresolved, got %v", res)
		}
		if ec.Position() != nil {
			t.Errorf("expected no position, got %v", ec.Position())
		}
	})

	t.Run("duplicate Start names pick the first in construction order", func(t *testing.T) {
		m, err := graph.NewBuilder().
			AddVertex(graph.VertexSpec{ID: "s1", Name: "Start"}).
			AddVertex(graph.VertexSpec{ID: "s2", Name: "Start"}).
			Build()
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		ec := graph.NewExecutionContext(m, never)
		if _, err := graph.ResolveStart(ec); err != nil {
			t.Fatalf("ResolveStart failed: %v", err)
		}
		if ec.CurrentElement().ID() != "s1" {
			t.Errorf("expected s1, got %s", ec.CurrentElement().ID())
		}
	})

	t.Run("nil model", func(t *testing.T) {
		ec := graph.NewExecutionContext(nil, never)
		if _, err := graph.ResolveStart(ec); err == nil {
			t.Fatal("expected error for context without model")
		}
	})
}

func TestStartResolution_String(t *testing.T) {
	tests := map[graph.StartResolution]string{
		graph.StartUnresolved: "unresolved",
		graph.StartByName:     "by_name",
		graph.StartByInDegree: "by_in_degree",
	}
	for res, want := range tests {
		if got := res.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
