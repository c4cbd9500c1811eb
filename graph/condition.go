package graph

// StopCondition decides when a walk must end.
//
// Conditions are pure predicates over an ExecutionContext snapshot: they
// read the current position, the model and the visit profile, and never
// mutate the context. Implementations live in graph/condition; new ones can
// be added without touching the Machine.
type StopCondition interface {
	// IsFulfilled reports whether the walk should stop.
	// A non-nil error is a *StopConditionEvaluationError and is fatal.
	IsFulfilled(ec *ExecutionContext) (bool, error)

	// Fulfilment reports progress toward the condition in [0, 1].
	Fulfilment(ec *ExecutionContext) (float64, error)

	// String renders the condition in descriptor syntax, e.g. "length(10)".
	String() string
}

// PathGenerator selects the next edge to traverse.
//
// A generator owns its stop condition and may keep private memory (random
// source, distance tables) but must treat the Model as read-only. Each
// generator instance belongs to exactly one ExecutionContext.
type PathGenerator interface {
	// StopCondition returns the condition the generator polls.
	StopCondition() StopCondition

	// HasNextStep reports whether the current position has an outgoing
	// transition and the stop condition is not fulfilled. It must not
	// mutate the context.
	HasNextStep(ec *ExecutionContext) (bool, error)

	// NextStep picks one out-edge of the current vertex. It returns an error
	// matching ErrNoPathFound when no edge can be chosen this iteration, or
	// an *AmbiguousModelError when the strategy cannot be satisfied.
	NextStep(ec *ExecutionContext) (*Edge, error)

	// String renders the generator in descriptor syntax,
	// e.g. "random(edge_coverage(100))".
	String() string
}

// DefaultHasNextStep implements the common HasNextStep contract:
//   - no position: false
//   - position is a vertex without out-edges: false
//   - otherwise: true unless cond is fulfilled
//
// A nil cond is never fulfilled.
func DefaultHasNextStep(ec *ExecutionContext, cond StopCondition) (bool, error) {
	pos := ec.Position()
	if pos == nil {
		return false, nil
	}
	if v, ok := pos.(*Vertex); ok && ec.Model().OutDegree(v) == 0 {
		return false, nil
	}
	if cond == nil {
		return true, nil
	}
	done, err := cond.IsFulfilled(ec)
	if err != nil {
		return false, err
	}
	return !done, nil
}

// Fulfilled reports whether gen's stop condition is fulfilled, independent of
// stepping. Used for external progress queries.
func Fulfilled(gen PathGenerator, ec *ExecutionContext) (bool, error) {
	cond := gen.StopCondition()
	if cond == nil {
		return false, nil
	}
	return cond.IsFulfilled(ec)
}
