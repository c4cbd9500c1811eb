package graph

import (
	"sort"
	"time"
)

// ExecutionContext is the mutable state of a single walk.
//
// It binds one shared, read-only Model to one owned PathGenerator and tracks
// where the walk currently is, plus the visit profile that stop conditions
// read (step counters, per-element visit counts, covered requirements).
//
// The context is single-writer: it is mutated only by its Machine and by the
// one-time start seeding (ResolveStart or the Set* methods). It must not be
// shared across goroutines or reused across runs.
type ExecutionContext struct {
	model     *Model
	generator PathGenerator

	current Element
	next    Element
	start   *Vertex

	startedAt time.Time
	clock     func() time.Time

	steps          int
	edgeTraversals int

	vertexVisits    []int
	edgeVisits      []int
	visitedVertices int
	visitedEdges    int
	requirements    map[string]struct{}
}

// NewExecutionContext creates a context for one run of gen over model.
// Validation of the pair happens in NewMachine.
func NewExecutionContext(model *Model, gen PathGenerator) *ExecutionContext {
	ec := &ExecutionContext{
		model:        model,
		generator:    gen,
		clock:        time.Now,
		requirements: make(map[string]struct{}),
	}
	if model != nil {
		ec.vertexVisits = make([]int, len(model.vertices))
		ec.edgeVisits = make([]int, len(model.edges))
	}
	ec.startedAt = ec.clock()
	return ec
}

// Model returns the model being walked.
func (ec *ExecutionContext) Model() *Model { return ec.model }

// Generator returns the owned path generator.
func (ec *ExecutionContext) Generator() PathGenerator { return ec.generator }

// CurrentElement returns where the walk currently is, or nil.
func (ec *ExecutionContext) CurrentElement() Element { return ec.current }

// NextElement returns the pending element that the next step will make
// current, or nil.
func (ec *ExecutionContext) NextElement() Element { return ec.next }

// Position returns the pending next element if one is set, otherwise the
// current element. Generators and conditions reason about this position.
func (ec *ExecutionContext) Position() Element {
	if ec.next != nil {
		return ec.next
	}
	return ec.current
}

// CurrentVertex returns the current element as a vertex, or nil when the
// walk is on an edge or has no position.
func (ec *ExecutionContext) CurrentVertex() *Vertex {
	v, _ := ec.current.(*Vertex)
	return v
}

// SetCurrentElement seeds the walk directly at el. The element counts as
// visited but not as a step. Returns *StructuralModelError when el is not
// part of the model.
func (ec *ExecutionContext) SetCurrentElement(el Element) error {
	if err := ec.checkMember(el); err != nil {
		return err
	}
	ec.current = el
	ec.markStart(el)
	ec.recordVisit(el)
	return nil
}

// SetNextElement seeds el as the element the first step will make current.
func (ec *ExecutionContext) SetNextElement(el Element) error {
	if err := ec.checkMember(el); err != nil {
		return err
	}
	ec.next = el
	return nil
}

// StartVertex returns the first vertex the walk stood on, or nil.
func (ec *ExecutionContext) StartVertex() *Vertex { return ec.start }

// StartedAt returns the creation time of the context.
func (ec *ExecutionContext) StartedAt() time.Time { return ec.startedAt }

// Now returns the context clock's current time.
func (ec *ExecutionContext) Now() time.Time { return ec.clock() }

// SetClock replaces the time source and resets StartedAt. Intended for
// tests of time-based stop conditions.
func (ec *ExecutionContext) SetClock(clock func() time.Time) {
	if clock == nil {
		clock = time.Now
	}
	ec.clock = clock
	ec.startedAt = clock()
}

// StepCount returns the number of completed steps.
func (ec *ExecutionContext) StepCount() int { return ec.steps }

// EdgeTraversals returns how many completed steps landed on an edge.
func (ec *ExecutionContext) EdgeTraversals() int { return ec.edgeTraversals }

// VisitCount returns how many times el has been the current element.
func (ec *ExecutionContext) VisitCount(el Element) int {
	if ec.model == nil || !ec.model.Contains(el) {
		return 0
	}
	switch e := el.(type) {
	case *Vertex:
		return ec.vertexVisits[e.index]
	case *Edge:
		return ec.edgeVisits[e.index]
	}
	return 0
}

// Visited reports whether el has been the current element at least once.
func (ec *ExecutionContext) Visited(el Element) bool {
	return ec.VisitCount(el) > 0
}

// VisitedVertexCount returns the number of distinct vertices visited.
func (ec *ExecutionContext) VisitedVertexCount() int { return ec.visitedVertices }

// VisitedEdgeCount returns the number of distinct edges visited.
func (ec *ExecutionContext) VisitedEdgeCount() int { return ec.visitedEdges }

// RequirementVisited reports whether a vertex carrying tag has been visited.
func (ec *ExecutionContext) RequirementVisited(tag string) bool {
	_, ok := ec.requirements[tag]
	return ok
}

// VisitedRequirementCount returns the number of distinct requirement tags
// covered so far.
func (ec *ExecutionContext) VisitedRequirementCount() int { return len(ec.requirements) }

// advance makes el current as the result of one completed step.
func (ec *ExecutionContext) advance(el Element) {
	ec.current = el
	ec.next = nil
	ec.steps++
	if el.Kind() == KindEdge {
		ec.edgeTraversals++
	}
	ec.markStart(el)
	ec.recordVisit(el)
}

func (ec *ExecutionContext) markStart(el Element) {
	if ec.start != nil {
		return
	}
	if v, ok := el.(*Vertex); ok {
		ec.start = v
	}
}

func (ec *ExecutionContext) recordVisit(el Element) {
	switch e := el.(type) {
	case *Vertex:
		if ec.vertexVisits[e.index] == 0 {
			ec.visitedVertices++
		}
		ec.vertexVisits[e.index]++
		for _, r := range e.requirements {
			ec.requirements[r] = struct{}{}
		}
	case *Edge:
		if ec.edgeVisits[e.index] == 0 {
			ec.visitedEdges++
		}
		ec.edgeVisits[e.index]++
	}
}

func (ec *ExecutionContext) checkMember(el Element) error {
	if ec.model == nil {
		return &StructuralModelError{Code: "NO_MODEL", Message: "execution context has no model"}
	}
	if el == nil || !ec.model.Contains(el) {
		return &StructuralModelError{Code: "FOREIGN_ELEMENT", Message: "element is not part of the model"}
	}
	return nil
}

// VisitedRequirements returns the covered requirement tags, sorted.
func (ec *ExecutionContext) VisitedRequirements() []string {
	out := make([]string, 0, len(ec.requirements))
	for r := range ec.requirements {
		out = append(out, r)
	}
	sort.Strings(out)
	return out
}
