package loader

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dshills/graphwalker-go/graph"
)

// document is the declarative model format. It accepts both the flat form
//
//	name: login
//	vertices: [...]
//	edges: [...]
//
// and GraphWalker's JSON layout with a single entry under "models".
// JSON input is decoded by the YAML parser.
type document struct {
	Flat   modelDoc   `yaml:",inline"`
	Models []modelDoc `yaml:"models"`
}

type modelDoc struct {
	ID             string      `yaml:"id"`
	Name           string      `yaml:"name"`
	Generator      string      `yaml:"generator"`
	StartElementID string      `yaml:"startElementId"`
	Vertices       []vertexDoc `yaml:"vertices"`
	Edges          []edgeDoc   `yaml:"edges"`
}

type vertexDoc struct {
	ID           string            `yaml:"id"`
	Name         string            `yaml:"name"`
	Requirements []string          `yaml:"requirements"`
	Properties   map[string]string `yaml:"properties"`
	Blocked      bool              `yaml:"blocked"`
}

type edgeDoc struct {
	ID             string            `yaml:"id"`
	Name           string            `yaml:"name"`
	Source         string            `yaml:"source"`
	Target         string            `yaml:"target"`
	SourceVertexID string            `yaml:"sourceVertexId"`
	TargetVertexID string            `yaml:"targetVertexId"`
	Guard          string            `yaml:"guard"`
	Actions        actionList        `yaml:"actions"`
	Weight         float64           `yaml:"weight"`
	Properties     map[string]string `yaml:"properties"`
	Blocked        bool              `yaml:"blocked"`
}

// actionList accepts plain strings as well as {script: ...} objects.
type actionList []string

func (a *actionList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: actions must be a list", node.Line)
	}
	for _, item := range node.Content {
		switch item.Kind {
		case yaml.ScalarNode:
			*a = append(*a, item.Value)
		case yaml.MappingNode:
			var obj struct {
				Script string `yaml:"script"`
			}
			if err := item.Decode(&obj); err != nil {
				return err
			}
			*a = append(*a, obj.Script)
		default:
			return fmt.Errorf("line %d: invalid action", item.Line)
		}
	}
	return nil
}

func parseDocument(data []byte) (*Loaded, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid model document: %w", err)
	}

	md := doc.Flat
	switch len(doc.Models) {
	case 0:
		if len(md.Vertices) == 0 {
			return nil, ErrNoModel
		}
	case 1:
		md = doc.Models[0]
		if md.Name == "" {
			md.Name = doc.Flat.Name
		}
	default:
		return nil, fmt.Errorf("document declares %d models, expected one", len(doc.Models))
	}

	blocked := make(map[string]bool)
	vertices := make([]graph.VertexSpec, 0, len(md.Vertices))
	for _, v := range md.Vertices {
		if v.Blocked {
			blocked[v.ID] = true
		}
		vertices = append(vertices, graph.VertexSpec{
			ID:           v.ID,
			Name:         v.Name,
			Requirements: v.Requirements,
			Properties:   v.Properties,
		})
	}

	edges := make([]graph.EdgeSpec, 0, len(md.Edges))
	for _, e := range md.Edges {
		if e.Blocked {
			blocked[e.ID] = true
		}
		edges = append(edges, graph.EdgeSpec{
			ID:         e.ID,
			Name:       e.Name,
			SourceID:   firstNonEmpty(e.Source, e.SourceVertexID),
			TargetID:   firstNonEmpty(e.Target, e.TargetVertexID),
			Guard:      strings.TrimSpace(e.Guard),
			Actions:    e.Actions,
			Weight:     e.Weight,
			Properties: e.Properties,
		})
	}

	model, err := assemble(vertices, edges, blocked)
	if err != nil {
		return nil, err
	}
	return &Loaded{
		Model:          model,
		Name:           md.Name,
		Generator:      md.Generator,
		StartElementID: md.StartElementID,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
