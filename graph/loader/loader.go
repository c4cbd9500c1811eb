// Package loader reads graph models from files.
//
// Two families of formats are supported:
//
//   - GraphML as written by yEd and GraphWalker Studio. Element names,
//     requirements, guards, actions and weights are parsed from the node
//     and edge labels.
//   - Declarative YAML or JSON documents listing vertices and edges,
//     including GraphWalker's JSON model format.
//
// Elements whose label carries the BLOCKED keyword are left out of the
// model, together with every edge touching a blocked vertex.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dshills/graphwalker-go/graph"
)

var (
	// ErrUnsupportedFormat is returned for unknown file extensions.
	ErrUnsupportedFormat = errors.New("unsupported model format")

	// ErrNoModel is returned when a document contains no graph.
	ErrNoModel = errors.New("document contains no model")
)

// Format identifies a model file format.
type Format string

const (
	FormatGraphML Format = "graphml"
	FormatYAML    Format = "yaml"
	FormatJSON    Format = "json"
)

// Loaded is the result of loading one model document.
type Loaded struct {
	Model *graph.Model

	// Name is the model name declared by the document, or the file name
	// without extension when the document declares none.
	Name string

	// Generator is the generator descriptor stored with the model, if any.
	Generator string

	// StartElementID is the element the document asks the walk to start
	// from, if any.
	StartElementID string
}

// StartElement returns the declared start element, or nil when the
// document declares none.
func (l *Loaded) StartElement() (graph.Element, error) {
	if l.StartElementID == "" {
		return nil, nil
	}
	if v, ok := l.Model.Vertex(l.StartElementID); ok {
		return v, nil
	}
	if e, ok := l.Model.Edge(l.StartElementID); ok {
		return e, nil
	}
	return nil, fmt.Errorf("start element %q not found in model %s", l.StartElementID, l.Name)
}

// FormatFor maps a file extension to its format.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".graphml", ".xml":
		return FormatGraphML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// LoadFile loads the model stored at path. The format follows the file
// extension.
func LoadFile(path string) (*Loaded, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open model: %w", err)
	}
	defer f.Close()

	loaded, err := Load(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if loaded.Name == "" {
		base := filepath.Base(path)
		loaded.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return loaded, nil
}

// Load reads one model document in the given format from r.
func Load(r io.Reader, format Format) (*Loaded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}

	switch format {
	case FormatGraphML:
		return parseGraphML(data)
	case FormatYAML, FormatJSON:
		return parseDocument(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// assemble builds the model from parsed specs, dropping blocked vertices
// and the edges attached to them.
func assemble(vertices []graph.VertexSpec, edges []graph.EdgeSpec, blocked map[string]bool) (*graph.Model, error) {
	b := graph.NewBuilder()
	for _, v := range vertices {
		if blocked[v.ID] {
			continue
		}
		b.AddVertex(v)
	}
	for _, e := range edges {
		if blocked[e.ID] || blocked[e.SourceID] || blocked[e.TargetID] {
			continue
		}
		b.AddEdge(e)
	}
	return b.Build()
}
