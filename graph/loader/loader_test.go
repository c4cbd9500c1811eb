package loader_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/condition"
	"github.com/dshills/graphwalker-go/graph/generator"
	"github.com/dshills/graphwalker-go/graph/loader"
)

func names[E interface{ Name() string }](elems []E) []string {
	out := make([]string, 0, len(elems))
	for _, e := range elems {
		out = append(out, e.Name())
	}
	return out
}

func TestLoadFile_YEdGraphML(t *testing.T) {
	loaded, err := loader.LoadFile(filepath.Join("testdata", "login.graphml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	m := loaded.Model

	if loaded.Name != "Login" {
		t.Errorf("expected model name Login, got %q", loaded.Name)
	}
	wantVertices := []string{"Start", "v_ClientNotRunning", "v_LoginPrompted"}
	if diff := cmp.Diff(wantVertices, names(m.Vertices())); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	wantEdges := []string{"e_Init", "e_StartClient", "e_Close"}
	if diff := cmp.Diff(wantEdges, names(m.Edges())); diff != "" {
		t.Errorf("edges mismatch (-want +got):\n%s", diff)
	}

	v, ok := m.Vertex("n1")
	if !ok {
		t.Fatal("vertex n1 missing")
	}
	if diff := cmp.Diff([]string{"UC01", "UC02"}, v.Requirements()); diff != "" {
		t.Errorf("requirements mismatch (-want +got):\n%s", diff)
	}

	initEdge, _ := m.Edge("e0")
	if diff := cmp.Diff([]string{"validLogin=false", "rememberMe=false"}, initEdge.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}

	start, _ := m.Edge("e1")
	if start.Guard() != "!rememberMe||!validLogin" {
		t.Errorf("unexpected guard %q", start.Guard())
	}
	if start.Weight() != 0.8 {
		t.Errorf("expected weight 0.8, got %v", start.Weight())
	}

	if _, ok := m.Vertex("n3"); ok {
		t.Error("blocked vertex should be dropped")
	}
	if _, ok := m.Edge("e3"); ok {
		t.Error("edge into a blocked vertex should be dropped")
	}
}

func TestLoadFile_PlainGraphML(t *testing.T) {
	loaded, err := loader.LoadFile(filepath.Join("testdata", "plain.graphml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	m := loaded.Model

	if diff := cmp.Diff([]string{"v_A", "v_B", ""}, names(m.Vertices())); diff != "" {
		t.Errorf("vertices mismatch (-want +got):\n%s", diff)
	}
	if _, ok := m.Vertex("group"); ok {
		t.Error("group node should not become a vertex")
	}

	edges := m.Edges()
	if len(edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(edges))
	}
	if edges[0].ID() != "e0" || edges[0].Name() != "e_AB" {
		t.Errorf("unexpected first edge %s/%s", edges[0].ID(), edges[0].Name())
	}
	if edges[1].Name() != "" || edges[1].Target().ID() != "c" {
		t.Errorf("unlabeled edge should keep an empty name, got %q", edges[1].Name())
	}
}

func TestLoadFile_YAML(t *testing.T) {
	loaded, err := loader.LoadFile(filepath.Join("testdata", "shop.yaml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	m := loaded.Model

	if loaded.Name != "shop" || loaded.Generator != "random(edge_coverage(100))" {
		t.Errorf("unexpected metadata: name=%q generator=%q", loaded.Name, loaded.Generator)
	}
	if m.VertexCount() != 2 || m.EdgeCount() != 2 {
		t.Fatalf("expected 2 vertices and 2 edges, got %d and %d", m.VertexCount(), m.EdgeCount())
	}

	cart, _ := m.Vertex("v1")
	if color, ok := cart.Property("color"); !ok || color != "blue" {
		t.Errorf("expected color property blue, got %q", color)
	}

	add, _ := m.Edge("e0")
	if add.Guard() != "stock > 0" {
		t.Errorf("guard should be trimmed, got %q", add.Guard())
	}
	if add.Weight() != 0.25 {
		t.Errorf("expected weight 0.25, got %v", add.Weight())
	}
	if diff := cmp.Diff([]string{"items++"}, add.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}

	start, err := loaded.StartElement()
	if err != nil || start != nil {
		t.Errorf("expected no declared start element, got %v, %v", start, err)
	}
}

func TestLoadFile_GraphWalkerJSON(t *testing.T) {
	loaded, err := loader.LoadFile(filepath.Join("testdata", "petclinic.json"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if loaded.Name != "FindOwners" {
		t.Errorf("expected model name FindOwners, got %q", loaded.Name)
	}
	search, ok := loaded.Model.Edge("e0")
	if !ok {
		t.Fatal("edge e0 missing")
	}
	if search.Source().ID() != "n0" || search.Target().ID() != "n1" {
		t.Errorf("sourceVertexId/targetVertexId not honored: %s -> %s", search.Source().ID(), search.Target().ID())
	}
	if diff := cmp.Diff([]string{"found = true;"}, search.Actions()); diff != "" {
		t.Errorf("actions mismatch (-want +got):\n%s", diff)
	}

	start, err := loaded.StartElement()
	if err != nil {
		t.Fatalf("StartElement failed: %v", err)
	}
	if start != graph.Element(search) {
		t.Errorf("expected start element e0, got %v", start)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		format loader.Format
		input  string
		is     error
		substr string
	}{
		{
			name:   "unsupported format",
			format: loader.Format("dot"),
			input:  "digraph {}",
			is:     loader.ErrUnsupportedFormat,
		},
		{
			name:   "graphml without graph",
			format: loader.FormatGraphML,
			input:  `<graphml xmlns="http://graphml.graphdrawing.org/xmlns"></graphml>`,
			is:     loader.ErrNoModel,
		},
		{
			name:   "malformed graphml",
			format: loader.FormatGraphML,
			input:  `<graphml><graph>`,
			substr: "invalid graphml",
		},
		{
			name:   "dangling edge",
			format: loader.FormatYAML,
			input:  "vertices: [{id: a}]\nedges: [{id: e, source: a, target: zz}]\n",
			substr: "DANGLING_EDGE",
		},
		{
			name:   "empty document",
			format: loader.FormatYAML,
			input:  "name: nothing\n",
			is:     loader.ErrNoModel,
		},
		{
			name:   "several models",
			format: loader.FormatJSON,
			input:  `{"models": [{"vertices": [{"id": "a"}]}, {"vertices": [{"id": "b"}]}]}`,
			substr: "declares 2 models",
		},
		{
			name:   "bad edge label",
			format: loader.FormatGraphML,
			input: `<graphml><key id="l" attr.name="label"/><graph>
<node id="a"/><edge source="a" target="a"><data key="l">e_Loop [x &gt; 1</data></edge>
</graph></graphml>`,
			substr: "unterminated guard",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.Load(strings.NewReader(tt.input), tt.format)
			if err == nil {
				t.Fatal("expected an error")
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Errorf("expected %v, got %v", tt.is, err)
			}
			if tt.substr != "" && !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("expected error containing %q, got %v", tt.substr, err)
			}
		})
	}
}

func TestLoadFile_UnknownExtension(t *testing.T) {
	_, err := loader.LoadFile("model.dot")
	if !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadFile_WalkLoadedModel(t *testing.T) {
	loaded, err := loader.LoadFile(filepath.Join("testdata", "login.graphml"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	ec := graph.NewExecutionContext(loaded.Model, generator.NewFirst(&condition.Length{N: 3}))
	rule, err := graph.ResolveStart(ec)
	if err != nil {
		t.Fatalf("ResolveStart failed: %v", err)
	}
	if rule != graph.StartByName {
		t.Errorf("expected the Start vertex to be found by name, got %v", rule)
	}

	m, err := graph.NewMachine(ec)
	if err != nil {
		t.Fatalf("NewMachine failed: %v", err)
	}
	w, err := m.Walk(context.Background())
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	want := []string{"Start", "e_Init", "v_ClientNotRunning", "e_StartClient"}
	if diff := cmp.Diff(want, w.Names()); diff != "" {
		t.Errorf("walk mismatch (-want +got):\n%s", diff)
	}
}
