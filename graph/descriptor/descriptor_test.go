package descriptor_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/hashicorp/hcl/v2"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/condition"
	"github.com/dshills/graphwalker-go/graph/descriptor"
)

func testModel(t *testing.T) *graph.Model {
	t.Helper()
	m, err := graph.NewBuilder().
		AddVertex(graph.VertexSpec{ID: "v0", Name: "Start"}).
		AddVertex(graph.VertexSpec{ID: "v1", Name: "v_Goal"}).
		AddVertex(graph.VertexSpec{ID: "v2", Name: "Shopping Cart"}).
		AddEdge(graph.EdgeSpec{ID: "e0", Name: "e_Go", SourceID: "v0", TargetID: "v1"}).
		AddEdge(graph.EdgeSpec{ID: "e1", Name: "e_Cart", SourceID: "v1", TargetID: "v2"}).
		AddEdge(graph.EdgeSpec{ID: "e2", Name: "e_Back", SourceID: "v2", TargetID: "v0"}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return m
}

func TestParse(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		src  string
		want string
	}{
		{"random(edge_coverage(100))", "random(edge_coverage(100))"},
		{"random_path(vertex_coverage(50))", "random(vertex_coverage(50))"},
		{"weighted_random(length(24))", "weighted_random(length(24))"},
		{"quick_random(requirement_coverage(80))", "quick_random(requirement_coverage(80))"},
		{"a_star(reached_vertex(v_Goal))", "a_star(reached_vertex(v_Goal))"},
		{`a_star(reached_vertex("Shopping Cart"))`, `a_star(reached_vertex("Shopping Cart"))`},
		{"shortest_path(reached_edge(e_Cart))", "a_star(reached_edge(e_Cart))"},
		{"first(length(3))", "first(length(3))"},
		{"random(never)", "random(never())"},
		{"random(reachable_coverage())", "random(reachable_coverage())"},
		{"random(time_duration(1.5))", "random(time_duration(1.5))"},
		{"random(edge_coverage(100) && length(50))", "random(edge_coverage(100) && length(50))"},
		{"random(edge_coverage(100) and length(50))", "random(edge_coverage(100) && length(50))"},
		{"random(length(1) or length(2) or length(3))", "random(length(1) || length(2) || length(3))"},
		{"random((length(1) || never) && vertex_coverage(10))", "random((length(1) || never()) && vertex_coverage(10))"},
		{"  random( length( 10 ) )  ", "random(length(10))"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			gen, err := descriptor.Parse(tt.src, m)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := gen.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_RoundTrip(t *testing.T) {
	m := testModel(t)
	for _, src := range []string{
		"quick_random((edge_coverage(100) && never()) || reached_vertex(v_Goal))",
		`a_star(reached_vertex("Shopping Cart") && length(99))`,
	} {
		gen, err := descriptor.Parse(src, m)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", src, err)
		}
		again, err := descriptor.Parse(gen.String(), m)
		if err != nil {
			t.Fatalf("re-Parse(%q) failed: %v", gen.String(), err)
		}
		if gen.String() != again.String() {
			t.Errorf("round trip changed %q to %q", gen.String(), again.String())
		}
	}
}

func TestParse_Errors(t *testing.T) {
	m := testModel(t)

	tests := []struct {
		src     string
		summary string
	}{
		{"random(", ""},
		{"edge_coverage(100)", "Unknown strategy"},
		{"length", "Invalid generator"},
		{"bogus(length(1))", "Unknown strategy"},
		{"random(bogus(1))", "Unknown stop condition"},
		{"random(length(1), length(2))", "Invalid generator"},
		{"random(length(-1))", "Invalid argument"},
		{"random(length(2.5))", "Invalid argument"},
		{"random(edge_coverage(101))", "Invalid argument"},
		{`random(length("ten"))`, "Invalid argument"},
		{"random(length())", "Wrong number of arguments"},
		{"random(never(1))", "Wrong number of arguments"},
		{"random(length(1) + length(2))", "Invalid operator"},
		{"random(reached_vertex(v_Missing))", "Unknown vertex"},
		{"random(reached_edge(e_Missing))", "Unknown edge"},
		{"random(reached_vertex(a.b))", "Invalid argument"},
		{"a_star(length(10))", "Invalid generator"},
		{"random(time_duration(-3))", "Invalid argument"},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			_, err := descriptor.Parse(tt.src, m)
			if err == nil {
				t.Fatal("expected error")
			}
			var diags hcl.Diagnostics
			if !errors.As(err, &diags) {
				t.Fatalf("expected hcl.Diagnostics, got %T: %v", err, err)
			}
			if !diags.HasErrors() {
				t.Fatal("expected error diagnostics")
			}
			if tt.summary != "" && diags[0].Summary != tt.summary {
				t.Errorf("summary = %q, want %q (%v)", diags[0].Summary, tt.summary, err)
			}
			if diags[0].Subject == nil {
				t.Error("diagnostic should carry a source range")
			}
		})
	}
}

func TestParse_DiagnosticRange(t *testing.T) {
	_, err := descriptor.Parse("random(length(5) and bogus(1))", nil)
	var diags hcl.Diagnostics
	if !errors.As(err, &diags) {
		t.Fatalf("expected hcl.Diagnostics, got %v", err)
	}
	rng := diags[0].Subject
	// "bogus(1)" starts at byte 21 of the original text.
	if rng.Start.Byte != 21 || rng.Start.Column != 22 {
		t.Errorf("range start = %+v, want byte 21 column 22", rng.Start)
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error should name the condition: %v", err)
	}
}

func TestParse_WithoutModelSkipsNameChecks(t *testing.T) {
	gen, err := descriptor.Parse("a_star(reached_vertex(anything))", nil)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if gen.String() != "a_star(reached_vertex(anything))" {
		t.Errorf("String() = %q", gen.String())
	}
}

func TestParse_Seed(t *testing.T) {
	m := testModel(t)

	run := func(seed int64) []string {
		gen, err := descriptor.Parse("random(length(30))", m, descriptor.WithSeed(seed))
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		ec := graph.NewExecutionContext(m, gen)
		if _, err := graph.ResolveStart(ec); err != nil {
			t.Fatalf("ResolveStart failed: %v", err)
		}
		machine, err := graph.NewMachine(ec)
		if err != nil {
			t.Fatalf("NewMachine failed: %v", err)
		}
		w, err := machine.Walk(context.Background())
		if err != nil {
			t.Fatalf("Walk failed: %v", err)
		}
		return w.Names()
	}

	if diff := cmp.Diff(run(5), run(5)); diff != "" {
		t.Errorf("same seed produced different walks:\n%s", diff)
	}
}

func TestParseCondition(t *testing.T) {
	cond, err := descriptor.ParseCondition("time_duration(30) or length(10)", nil)
	if err != nil {
		t.Fatalf("ParseCondition failed: %v", err)
	}
	or, ok := cond.(condition.Or)
	if !ok || len(or) != 2 {
		t.Fatalf("expected a two-part Or, got %#v", cond)
	}
	td, ok := or[0].(*condition.TimeDuration)
	if !ok || td.D != 30*time.Second {
		t.Errorf("unexpected first part %#v", or[0])
	}
}
