// Package graph provides the model-based traversal engine for graphwalker-go.
package graph

import "errors"

// ErrNoPathFound indicates that a generator could not select an edge from the
// current position this iteration. It is recoverable: the machine keeps the
// current element and the walk continues polling.
var ErrNoPathFound = errors.New("no path found from current position")

// ErrNoPosition indicates that NextStep was called on a context that has
// neither a current nor a pending next element.
var ErrNoPosition = errors.New("execution context has no current or next element")

// ErrMachineDone is returned when stepping a machine that already reached
// StateDone.
var ErrMachineDone = errors.New("machine is done")

// ErrTooManyFailures indicates the walk hit the configured MaxFailures limit
// of consecutive recoverable step failures.
var ErrTooManyFailures = errors.New("too many consecutive step failures")

// StructuralModelError reports a model that is internally inconsistent or
// unusable for a walk (empty, dangling edge, duplicate id). Always fatal.
type StructuralModelError struct {
	Message string
	Code    string
}

func (e *StructuralModelError) Error() string {
	if e.Code != "" {
		return "structural model error: " + e.Code + ": " + e.Message
	}
	return "structural model error: " + e.Message
}

// NoPathFoundError carries the element from which no edge could be picked.
// It matches ErrNoPathFound with errors.Is.
type NoPathFoundError struct {
	From   Element
	Reason string
}

func (e *NoPathFoundError) Error() string {
	msg := ErrNoPathFound.Error()
	if e.From != nil {
		msg += " (at " + describe(e.From) + ")"
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrNoPathFound) match.
func (e *NoPathFoundError) Unwrap() error {
	return ErrNoPathFound
}

// AmbiguousModelError reports that the model cannot satisfy a strategy's
// assumptions, e.g. a shortest-path goal that is unreachable.
//
// Strategies decide whether the condition is permanent (Fatal) or may clear
// up on a later step.
type AmbiguousModelError struct {
	Strategy string
	Message  string
	Fatal    bool
}

func (e *AmbiguousModelError) Error() string {
	if e.Strategy != "" {
		return "ambiguous model for " + e.Strategy + ": " + e.Message
	}
	return "ambiguous model: " + e.Message
}

// StopConditionEvaluationError reports a stop condition that cannot be
// evaluated against the current context. Always fatal: the walk cannot
// decide whether to terminate.
type StopConditionEvaluationError struct {
	Condition string
	Message   string
	Cause     error
}

func (e *StopConditionEvaluationError) Error() string {
	msg := "stop condition " + e.Condition + ": " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StopConditionEvaluationError) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether err is a per-step failure that the machine
// swallows at the step boundary. Everything else is fatal.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNoPathFound) {
		return true
	}
	var amb *AmbiguousModelError
	if errors.As(err, &amb) {
		return !amb.Fatal
	}
	return false
}

func describe(el Element) string {
	name := el.Name()
	if name == "" {
		return el.Kind().String() + " " + el.ID()
	}
	return el.Kind().String() + " " + name
}

// WalkError reports a walk aborted by infrastructure rather than by the model:
// a failing store, a cancelled context, or the MaxFailures limit.
type WalkError struct {
	Message string
	Code    string
	Cause   error
}

func (e *WalkError) Error() string {
	msg := e.Message
	if e.Code != "" {
		msg = e.Code + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *WalkError) Unwrap() error {
	return e.Cause
}
