// Package condition provides the stop conditions that bound a walk.
//
// Every condition is a pure predicate over a graph.ExecutionContext and
// renders itself in descriptor syntax, so String output can be parsed back
// by graph/descriptor.
package condition

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/hclsyntax"

	"github.com/dshills/graphwalker-go/graph"
)

// Length is fulfilled once the walk has taken N steps. Each step lands on
// one element, vertex or edge.
type Length struct {
	N int
}

// NewLength returns a Length condition. n must not be negative.
func NewLength(n int) (*Length, error) {
	if n < 0 {
		return nil, fmt.Errorf("length must be >= 0, got %d", n)
	}
	return &Length{N: n}, nil
}

func (c *Length) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	return ec.StepCount() >= c.N, nil
}

func (c *Length) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	return ratio(ec.StepCount(), c.N), nil
}

func (c *Length) String() string { return "length(" + strconv.Itoa(c.N) + ")" }

// EdgeCoverage is fulfilled when at least Percent of the model's edges have
// been visited.
type EdgeCoverage struct {
	Percent int
}

// NewEdgeCoverage validates percent in [0, 100].
func NewEdgeCoverage(percent int) (*EdgeCoverage, error) {
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	return &EdgeCoverage{Percent: percent}, nil
}

func (c *EdgeCoverage) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	f, err := c.Fulfilment(ec)
	return f >= 1, err
}

func (c *EdgeCoverage) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	return coverage(ec.VisitedEdgeCount(), ec.Model().EdgeCount(), c.Percent), nil
}

func (c *EdgeCoverage) String() string {
	return "edge_coverage(" + strconv.Itoa(c.Percent) + ")"
}

// VertexCoverage is fulfilled when at least Percent of the model's vertices
// have been visited.
type VertexCoverage struct {
	Percent int
}

// NewVertexCoverage validates percent in [0, 100].
func NewVertexCoverage(percent int) (*VertexCoverage, error) {
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	return &VertexCoverage{Percent: percent}, nil
}

func (c *VertexCoverage) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	f, err := c.Fulfilment(ec)
	return f >= 1, err
}

func (c *VertexCoverage) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	return coverage(ec.VisitedVertexCount(), ec.Model().VertexCount(), c.Percent), nil
}

func (c *VertexCoverage) String() string {
	return "vertex_coverage(" + strconv.Itoa(c.Percent) + ")"
}

// RequirementCoverage is fulfilled when at least Percent of the requirement
// tags declared on the model's vertices have been visited. A model without
// requirements is always covered.
type RequirementCoverage struct {
	Percent int
}

// NewRequirementCoverage validates percent in [0, 100].
func NewRequirementCoverage(percent int) (*RequirementCoverage, error) {
	if err := checkPercent(percent); err != nil {
		return nil, err
	}
	return &RequirementCoverage{Percent: percent}, nil
}

func (c *RequirementCoverage) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	f, err := c.Fulfilment(ec)
	return f >= 1, err
}

func (c *RequirementCoverage) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	total := len(ec.Model().Requirements())
	return coverage(ec.VisitedRequirementCount(), total, c.Percent), nil
}

func (c *RequirementCoverage) String() string {
	return "requirement_coverage(" + strconv.Itoa(c.Percent) + ")"
}

// ReachedVertex is fulfilled once a vertex named Name has been the current
// element. Evaluating it against a model without such a vertex is an error.
type ReachedVertex struct {
	Name string
}

func (c *ReachedVertex) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	targets := ec.Model().FindVertices(c.Name)
	if len(targets) == 0 {
		return false, c.missing()
	}
	for _, v := range targets {
		if ec.Visited(v) {
			return true, nil
		}
	}
	return false, nil
}

func (c *ReachedVertex) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	return binary(c.IsFulfilled(ec))
}

// Goal reports whether el is a vertex named Name. Shortest-path generators
// steer toward it.
func (c *ReachedVertex) Goal(el graph.Element) bool {
	return el.Kind() == graph.KindVertex && el.Name() == c.Name
}

func (c *ReachedVertex) String() string { return "reached_vertex(" + nameArg(c.Name) + ")" }

func (c *ReachedVertex) missing() error {
	return &graph.StopConditionEvaluationError{Condition: c.String(), Message: "no vertex named " + strconv.Quote(c.Name)}
}

// ReachedEdge is fulfilled once an edge named Name has been traversed.
type ReachedEdge struct {
	Name string
}

func (c *ReachedEdge) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	targets := ec.Model().FindEdges(c.Name)
	if len(targets) == 0 {
		return false, &graph.StopConditionEvaluationError{Condition: c.String(), Message: "no edge named " + strconv.Quote(c.Name)}
	}
	for _, e := range targets {
		if ec.Visited(e) {
			return true, nil
		}
	}
	return false, nil
}

func (c *ReachedEdge) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	return binary(c.IsFulfilled(ec))
}

// Goal reports whether el is an edge named Name.
func (c *ReachedEdge) Goal(el graph.Element) bool {
	return el.Kind() == graph.KindEdge && el.Name() == c.Name
}

func (c *ReachedEdge) String() string { return "reached_edge(" + nameArg(c.Name) + ")" }

// ReachableCoverage is fulfilled when every vertex reachable from the walk's
// start vertex has been visited. Before the walk stands on a vertex it is
// not fulfilled.
type ReachableCoverage struct{}

func (c *ReachableCoverage) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	f, err := c.Fulfilment(ec)
	return f >= 1, err
}

func (c *ReachableCoverage) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	start := ec.StartVertex()
	if start == nil {
		return 0, nil
	}
	reachable := ec.Model().ReachableVertices(start)
	visited := 0
	for _, v := range reachable {
		if ec.Visited(v) {
			visited++
		}
	}
	return ratio(visited, len(reachable)), nil
}

func (c *ReachableCoverage) String() string { return "reachable_coverage()" }

// TimeDuration is fulfilled once D has elapsed since the context started.
type TimeDuration struct {
	D time.Duration
}

func (c *TimeDuration) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	return ec.Now().Sub(ec.StartedAt()) >= c.D, nil
}

func (c *TimeDuration) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	if c.D <= 0 {
		return 1, nil
	}
	return math.Min(float64(ec.Now().Sub(ec.StartedAt()))/float64(c.D), 1), nil
}

func (c *TimeDuration) String() string {
	return "time_duration(" + strconv.FormatFloat(c.D.Seconds(), 'f', -1, 64) + ")"
}

// Never is never fulfilled. The walk ends only when the position has no
// outgoing edge.
type Never struct{}

func (Never) IsFulfilled(*graph.ExecutionContext) (bool, error)   { return false, nil }
func (Never) Fulfilment(*graph.ExecutionContext) (float64, error) { return 0, nil }
func (Never) String() string                                      { return "never()" }

// And is fulfilled when all of its conditions are. Fulfilment is the mean
// of the parts.
type And []graph.StopCondition

func (c And) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	for _, sc := range c {
		ok, err := sc.IsFulfilled(ec)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (c And) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	if len(c) == 0 {
		return 1, nil
	}
	sum := 0.0
	for _, sc := range c {
		f, err := sc.Fulfilment(ec)
		if err != nil {
			return 0, err
		}
		sum += f
	}
	return sum / float64(len(c)), nil
}

func (c And) String() string { return join([]graph.StopCondition(c), " && ") }

// Or is fulfilled when any of its conditions is. Fulfilment is the maximum
// of the parts.
type Or []graph.StopCondition

func (c Or) IsFulfilled(ec *graph.ExecutionContext) (bool, error) {
	for _, sc := range c {
		ok, err := sc.IsFulfilled(ec)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (c Or) Fulfilment(ec *graph.ExecutionContext) (float64, error) {
	best := 0.0
	for _, sc := range c {
		f, err := sc.Fulfilment(ec)
		if err != nil {
			return 0, err
		}
		best = math.Max(best, f)
	}
	return best, nil
}

func (c Or) String() string { return join([]graph.StopCondition(c), " || ") }

// Goal is implemented by conditions that name a target element.
type Goal interface {
	Goal(el graph.Element) bool
}

// FindGoal returns the first goal condition in sc, descending into And and
// Or.
func FindGoal(sc graph.StopCondition) (Goal, bool) {
	switch c := sc.(type) {
	case Goal:
		return c, true
	case And:
		return firstGoal(c)
	case Or:
		return firstGoal(c)
	}
	return nil, false
}

func firstGoal(list []graph.StopCondition) (Goal, bool) {
	for _, sc := range list {
		if g, ok := FindGoal(sc); ok {
			return g, true
		}
	}
	return nil, false
}

func join(list []graph.StopCondition, sep string) string {
	parts := make([]string, len(list))
	for i, sc := range list {
		s := sc.String()
		switch sc.(type) {
		case And, Or:
			s = "(" + s + ")"
		}
		parts[i] = s
	}
	return strings.Join(parts, sep)
}

// nameArg renders an element name as a bare identifier when possible and as
// a quoted string otherwise.
func nameArg(name string) string {
	if hclsyntax.ValidIdentifier(name) {
		return name
	}
	return strconv.Quote(name)
}

func checkPercent(p int) error {
	if p < 0 || p > 100 {
		return fmt.Errorf("percent must be in [0, 100], got %d", p)
	}
	return nil
}

// coverage maps visited/total against a percent target to [0, 1]. An empty
// total or a zero target is fully covered.
func coverage(visited, total, percent int) float64 {
	if total == 0 || percent == 0 {
		return 1
	}
	need := float64(total) * float64(percent) / 100
	return math.Min(float64(visited)/need, 1)
}

func ratio(n, of int) float64 {
	if of <= 0 {
		return 1
	}
	return math.Min(float64(n)/float64(of), 1)
}

func binary(ok bool, err error) (float64, error) {
	if err != nil || !ok {
		return 0, err
	}
	return 1, nil
}
