package generator

import (
	"errors"
	"sort"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/condition"
	"github.com/dshills/graphwalker-go/graph/store"
)

// ErrEmptyRecording is returned when a recording holds no successful steps.
var ErrEmptyRecording = errors.New("recording contains no successful steps")

// Replay re-walks a recorded path. At every vertex it takes the next
// recorded edge, and it stops after as many steps as the recording made,
// so the replayed walk reproduces the recorded one element for element.
//
// A recorded edge that does not leave the current vertex means the model
// changed since the recording; NextStep reports it as a fatal
// *graph.AmbiguousModelError.
type Replay struct {
	Base
	edges []string
	pos   int
}

// NewReplay replays edgeIDs, in order, over steps steps.
func NewReplay(edgeIDs []string, steps int) *Replay {
	return &Replay{
		Base:  Base{Condition: &condition.Length{N: steps}},
		edges: append([]string(nil), edgeIDs...),
	}
}

// Recording is a walk history prepared for replay.
type Recording struct {
	// StartID is the element observed at step 0, or "" when the recorded
	// walk had no seeded start element.
	StartID string
	// Generator replays the recorded edge choices.
	Generator *Replay
}

// FromRecords prepares a replay of records as returned by store.LoadWalk.
// Failed steps are skipped.
func FromRecords(records []store.Record) (*Recording, error) {
	sorted := append([]store.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Seq < sorted[j].Seq })

	var (
		rec   Recording
		edges []string
		steps int
		ok    int
	)
	for _, r := range sorted {
		if r.Status != store.StatusOK {
			continue
		}
		ok++
		if r.Step == 0 {
			rec.StartID = r.ElementID
			continue
		}
		if r.Kind == graph.KindEdge.String() {
			edges = append(edges, r.ElementID)
		}
		steps = max(steps, r.Step)
	}
	if ok == 0 {
		return nil, ErrEmptyRecording
	}
	rec.Generator = NewReplay(edges, steps)
	return &rec, nil
}

func (g *Replay) NextStep(ec *graph.ExecutionContext) (*graph.Edge, error) {
	v, edges, err := outEdges(ec)
	if err != nil {
		return nil, err
	}
	if g.pos >= len(g.edges) {
		return nil, &graph.AmbiguousModelError{
			Strategy: "replay",
			Message:  "recording exhausted at " + label(v),
			Fatal:    true,
		}
	}

	want := g.edges[g.pos]
	for _, e := range edges {
		if e.ID() == want {
			g.pos++
			return e, nil
		}
	}
	return nil, &graph.AmbiguousModelError{
		Strategy: "replay",
		Message:  "recorded edge " + want + " does not leave " + label(v),
		Fatal:    true,
	}
}

// Remaining returns the number of recorded edges not yet taken.
func (g *Replay) Remaining() int { return len(g.edges) - g.pos }

func (g *Replay) String() string { return g.describe("replay") }
