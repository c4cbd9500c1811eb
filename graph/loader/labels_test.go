package loader

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseVertexLabel(t *testing.T) {
	tests := []struct {
		label string
		want  vertexLabel
	}{
		{label: "", want: vertexLabel{}},
		{label: "v_Home", want: vertexLabel{Name: "v_Home"}},
		{label: "  v_Home  ", want: vertexLabel{Name: "v_Home"}},
		{
			label: "v_Cart\nREQTAG=UC01, UC02 ,",
			want:  vertexLabel{Name: "v_Cart", Requirements: []string{"UC01", "UC02"}},
		},
		{
			label: "v_Cart reqtag: R1",
			want:  vertexLabel{Name: "v_Cart", Requirements: []string{"R1"}},
		},
		{label: "v_Old BLOCKED", want: vertexLabel{Name: "v_Old", Blocked: true}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got := parseVertexLabel(tt.label)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseVertexLabel(%q) mismatch (-want +got):\n%s", tt.label, diff)
			}
		})
	}
}

func TestParseEdgeLabel(t *testing.T) {
	tests := []struct {
		label string
		want  edgeLabel
	}{
		{label: "", want: edgeLabel{}},
		{label: "e_Login", want: edgeLabel{Name: "e_Login"}},
		{
			label: "e_Login [loggedIn == false]",
			want:  edgeLabel{Name: "e_Login", Guard: "loggedIn == false"},
		},
		{
			label: "e_Login / loggedIn = true; attempts++;",
			want:  edgeLabel{Name: "e_Login", Actions: []string{"loggedIn = true", "attempts++"}},
		},
		{
			label: "e_Pick [items[0] > 1] / pick();\nweight=0.3",
			want:  edgeLabel{Name: "e_Pick", Guard: "items[0] > 1", Actions: []string{"pick()"}, Weight: 0.3},
		},
		{
			label: "[ready] / go()",
			want:  edgeLabel{Guard: "ready", Actions: []string{"go()"}},
		},
		{label: "e_Skip BLOCKED", want: edgeLabel{Name: "e_Skip", Blocked: true}},
		{label: "e_UNBLOCKED", want: edgeLabel{Name: "e_UNBLOCKED"}},
		{label: "e_BLOCKED_Retry / undo;", want: edgeLabel{Name: "e_BLOCKED_Retry", Actions: []string{"undo"}}},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := parseEdgeLabel(tt.label)
			if err != nil {
				t.Fatalf("parseEdgeLabel(%q) failed: %v", tt.label, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseEdgeLabel(%q) mismatch (-want +got):\n%s", tt.label, diff)
			}
		})
	}
}

func TestParseEdgeLabel_Errors(t *testing.T) {
	for _, label := range []string{
		"e_A [open",
		"e_A weight=heavy",
		"e_A e_B",
		"e_A [ok] trailing",
	} {
		if _, err := parseEdgeLabel(label); err == nil {
			t.Errorf("parseEdgeLabel(%q) should fail", label)
		}
	}
}

func TestLabelText(t *testing.T) {
	tests := []struct {
		name  string
		inner string
		want  string
	}{
		{name: "plain", inner: "  v_Home ", want: "v_Home"},
		{
			name:  "yed node",
			inner: `<y:ShapeNode><y:Geometry x="1"/><y:NodeLabel a="b">v_Home</y:NodeLabel></y:ShapeNode>`,
			want:  "v_Home",
		},
		{
			name:  "first label wins",
			inner: `<y:PolyLineEdge><y:EdgeLabel>e_One</y:EdgeLabel><y:EdgeLabel>e_Two</y:EdgeLabel></y:PolyLineEdge>`,
			want:  "e_One",
		},
		{name: "entities", inner: "e_A [x &lt; 2]", want: "e_A [x < 2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := labelText([]byte(tt.inner))
			if err != nil {
				t.Fatalf("labelText failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
