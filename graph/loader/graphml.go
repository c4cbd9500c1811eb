package loader

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dshills/graphwalker-go/graph"
)

type graphmlDoc struct {
	XMLName xml.Name       `xml:"graphml"`
	Keys    []graphmlKey   `xml:"key"`
	Graphs  []graphmlGraph `xml:"graph"`
}

type graphmlKey struct {
	ID       string `xml:"id,attr"`
	For      string `xml:"for,attr"`
	AttrName string `xml:"attr.name,attr"`
	YFiles   string `xml:"yfiles.type,attr"`
}

type graphmlGraph struct {
	ID    string        `xml:"id,attr"`
	Nodes []graphmlNode `xml:"node"`
	Edges []graphmlEdge `xml:"edge"`
}

type graphmlNode struct {
	ID    string        `xml:"id,attr"`
	Data  []graphmlData `xml:"data"`
	Graph *graphmlGraph `xml:"graph"`
}

type graphmlEdge struct {
	ID     string        `xml:"id,attr"`
	Source string        `xml:"source,attr"`
	Target string        `xml:"target,attr"`
	Data   []graphmlData `xml:"data"`
}

type graphmlData struct {
	Key   string `xml:"key,attr"`
	Inner []byte `xml:",innerxml"`
}

func parseGraphML(data []byte) (*Loaded, error) {
	var doc graphmlDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid graphml: %w", err)
	}
	if len(doc.Graphs) == 0 {
		return nil, ErrNoModel
	}

	labelKeys := make(map[string]bool)
	for _, k := range doc.Keys {
		if strings.EqualFold(k.AttrName, "label") || k.YFiles == "nodegraphics" || k.YFiles == "edgegraphics" {
			labelKeys[k.ID] = true
		}
	}
	if len(doc.Keys) == 0 {
		labelKeys["label"] = true
	}

	var (
		vertices []graph.VertexSpec
		edges    []graph.EdgeSpec
		blocked  = make(map[string]bool)
	)

	var walk func(g *graphmlGraph) error
	walk = func(g *graphmlGraph) error {
		for i := range g.Nodes {
			n := &g.Nodes[i]
			if n.Graph != nil {
				// Group nodes only contribute their children.
				if err := walk(n.Graph); err != nil {
					return err
				}
				continue
			}
			label, err := dataLabel(n.Data, labelKeys)
			if err != nil {
				return fmt.Errorf("node %s: %w", n.ID, err)
			}
			vl := parseVertexLabel(label)
			if vl.Blocked {
				blocked[n.ID] = true
			}
			vertices = append(vertices, graph.VertexSpec{
				ID:           n.ID,
				Name:         vl.Name,
				Requirements: vl.Requirements,
			})
		}
		for i := range g.Edges {
			e := &g.Edges[i]
			id := e.ID
			if id == "" {
				id = "e" + strconv.Itoa(len(edges))
			}
			label, err := dataLabel(e.Data, labelKeys)
			if err != nil {
				return fmt.Errorf("edge %s: %w", id, err)
			}
			el, err := parseEdgeLabel(label)
			if err != nil {
				return fmt.Errorf("edge %s: %w", id, err)
			}
			if el.Blocked {
				blocked[id] = true
			}
			edges = append(edges, graph.EdgeSpec{
				ID:       id,
				Name:     el.Name,
				SourceID: e.Source,
				TargetID: e.Target,
				Guard:    el.Guard,
				Actions:  el.Actions,
				Weight:   el.Weight,
			})
		}
		return nil
	}

	root := &doc.Graphs[0]
	if err := walk(root); err != nil {
		return nil, err
	}

	model, err := assemble(vertices, edges, blocked)
	if err != nil {
		return nil, err
	}
	return &Loaded{Model: model, Name: root.ID}, nil
}

func dataLabel(data []graphmlData, labelKeys map[string]bool) (string, error) {
	for _, d := range data {
		if labelKeys[d.Key] {
			return labelText(d.Inner)
		}
	}
	return "", nil
}

// labelText extracts the text of the first y:NodeLabel or y:EdgeLabel in
// inner. Without such an element the top-level character data is used.
func labelText(inner []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(inner))

	var (
		plain, label strings.Builder
		depth        int
		labelDepth   = -1
		found        bool
	)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("invalid label data: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if !found && labelDepth < 0 && (t.Name.Local == "NodeLabel" || t.Name.Local == "EdgeLabel") {
				labelDepth = depth
			}
		case xml.EndElement:
			if depth == labelDepth {
				labelDepth = -1
				found = true
			}
			depth--
		case xml.CharData:
			switch {
			case labelDepth > 0:
				label.Write(t)
			case depth == 0:
				plain.Write(t)
			}
		}
	}
	if found {
		return strings.TrimSpace(label.String()), nil
	}
	return strings.TrimSpace(plain.String()), nil
}
