package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/graphwalker-go/graph/emit"
	"github.com/dshills/graphwalker-go/graph/store"
)

// MachineState is the lifecycle state of a Machine.
type MachineState int

const (
	// StateReady: created, no step taken yet.
	StateReady MachineState = iota
	// StateStepping: at least one step completed.
	StateStepping
	// StateDone: HasNextStep reported false or a fatal error occurred.
	// Terminal.
	StateDone
)

func (s MachineState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateStepping:
		return "stepping"
	default:
		return "done"
	}
}

// Machine drives one ExecutionContext through a model, one element per step.
//
// Usage follows a poll loop:
//
//	for {
//	    ok, err := m.HasNextStep()
//	    if err != nil || !ok {
//	        break
//	    }
//	    res := m.NextStep()
//	    ...
//	}
//
// or the Walk convenience method, which also feeds emitters, metrics and the
// store. A Machine is not safe for concurrent use; run parallel walks with one
// Machine (and one ExecutionContext) each over a shared Model.
type Machine struct {
	ec    *ExecutionContext
	opts  Options
	state MachineState

	failures    int
	consecutive int
	lastFailure *StepResult
}

// NewMachine validates ec and returns a Machine in StateReady.
//
// Returns *StructuralModelError when the context has no model, an empty
// model, or no generator.
func NewMachine(ec *ExecutionContext, opts ...Option) (*Machine, error) {
	if ec == nil || ec.Model() == nil {
		return nil, &StructuralModelError{Code: "NO_MODEL", Message: "execution context has no model"}
	}
	if ec.Model().VertexCount() == 0 {
		return nil, &StructuralModelError{Code: "EMPTY_MODEL", Message: "model has no vertices"}
	}
	if ec.Generator() == nil {
		return nil, &StructuralModelError{Code: "NO_GENERATOR", Message: "execution context has no path generator"}
	}

	var o Options
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, fmt.Errorf("invalid option: %w", err)
		}
	}
	if o.RunID == "" {
		o.RunID = uuid.NewString()
	}
	if o.Emitter == nil {
		o.Emitter = emit.NewNullEmitter()
	}

	return &Machine{ec: ec, opts: o}, nil
}

// Context returns the machine's execution context.
func (m *Machine) Context() *ExecutionContext { return m.ec }

// State returns the lifecycle state.
func (m *Machine) State() MachineState { return m.state }

// RunID returns the run identifier.
func (m *Machine) RunID() string { return m.opts.RunID }

// Failures returns the number of recoverable failures so far.
func (m *Machine) Failures() int { return m.failures }

// LastFailure returns the most recent recoverable failure, if any.
func (m *Machine) LastFailure() (StepResult, bool) {
	if m.lastFailure == nil {
		return StepResult{}, false
	}
	return *m.lastFailure, true
}

// HasNextStep reports whether another step may be taken.
//
// It does not touch the execution context. When it reports false the
// machine moves to StateDone. An error is fatal and also ends the machine.
func (m *Machine) HasNextStep() (bool, error) {
	if m.state == StateDone {
		return false, nil
	}
	ok, err := m.ec.Generator().HasNextStep(m.ec)
	if err != nil {
		m.state = StateDone
		return false, err
	}
	if !ok {
		m.state = StateDone
	}
	return ok, nil
}

// NextStep performs exactly one transition:
//   - a pending next element becomes current
//   - on an edge, its target vertex becomes current
//   - on a vertex, the generator picks an out-edge which becomes current
//
// Recoverable failures leave the context unchanged and return StepFailed
// with the last-known element. Anything else returns StepFatal and moves the
// machine to StateDone.
func (m *Machine) NextStep() StepResult {
	attempt := m.ec.StepCount() + 1
	if m.state == StateDone {
		return StepResult{Step: attempt, Element: m.ec.CurrentElement(), Status: StepFatal, Err: ErrMachineDone}
	}

	el, err := m.resolveNext()
	if err != nil {
		res := StepResult{Step: attempt, Element: m.ec.CurrentElement(), Err: err}
		if IsRecoverable(err) {
			res.Status = StepFailed
			m.failures++
			m.consecutive++
			m.lastFailure = &res
			return res
		}
		res.Status = StepFatal
		m.state = StateDone
		return res
	}

	m.ec.advance(el)
	m.state = StateStepping
	m.consecutive = 0
	return StepResult{Step: m.ec.StepCount(), Element: el, Status: StepOK}
}

func (m *Machine) resolveNext() (Element, error) {
	if next := m.ec.NextElement(); next != nil {
		return next, nil
	}

	switch cur := m.ec.CurrentElement().(type) {
	case nil:
		return nil, ErrNoPosition
	case *Edge:
		return cur.Target(), nil
	case *Vertex:
		gen := m.ec.Generator()
		edge, err := gen.NextStep(m.ec)
		if err != nil {
			return nil, err
		}
		if edge == nil {
			return nil, &NoPathFoundError{From: cur, Reason: gen.String() + " returned no edge"}
		}
		if !m.ec.Model().Contains(edge) || edge.Source() != cur {
			return nil, &StructuralModelError{
				Code:    "INVALID_STEP",
				Message: fmt.Sprintf("%s returned %s which does not leave %s", gen.String(), describe(edge), describe(cur)),
			}
		}
		return edge, nil
	default:
		return nil, &StructuralModelError{Code: "FOREIGN_ELEMENT", Message: fmt.Sprintf("unsupported element type %T", cur)}
	}
}

// Fulfilment reports progress of the generator's stop condition in [0, 1].
func (m *Machine) Fulfilment() (float64, error) {
	cond := m.ec.Generator().StopCondition()
	if cond == nil {
		return 0, nil
	}
	return cond.Fulfilment(m.ec)
}

// Walk runs the machine until HasNextStep reports false.
//
// The seeded start element (see ResolveStart) is the first observation.
// Recoverable failures are collected in Walk.Failures and the loop keeps
// polling. On a fatal error, cancellation or the MaxFailures limit, the
// partial walk is returned together with the error.
func (m *Machine) Walk(ctx context.Context) (*Walk, error) {
	if m.state == StateDone {
		return nil, ErrMachineDone
	}

	w := &Walk{RunID: m.opts.RunID}
	rec := &recorder{m: m, ctx: ctx, startedAt: time.Now()}

	m.opts.Emitter.Emit(emit.Event{
		RunID: m.opts.RunID,
		Msg:   emit.MsgWalkStart,
		Meta: map[string]interface{}{
			"generator": m.ec.Generator().String(),
			"vertices":  m.ec.Model().VertexCount(),
			"edges":     m.ec.Model().EdgeCount(),
		},
	})

	if cur := m.ec.CurrentElement(); cur != nil && m.state == StateReady && m.ec.StepCount() == 0 {
		res := StepResult{Step: 0, Element: cur, Status: StepOK}
		w.observe(0, cur)
		if err := rec.observed(res, 0); err != nil {
			return m.abort(w, rec, err)
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return m.abort(w, rec, &WalkError{Code: "CANCELLED", Message: "walk cancelled", Cause: err})
		}

		ok, err := m.HasNextStep()
		if err != nil {
			return m.abort(w, rec, err)
		}
		if !ok {
			break
		}

		began := time.Now()
		res := m.NextStep()
		latency := time.Since(began)

		switch res.Status {
		case StepOK:
			w.observe(res.Step, res.Element)
			if err := rec.observed(res, latency); err != nil {
				return m.abort(w, rec, err)
			}
		case StepFailed:
			w.Failures = append(w.Failures, res)
			if err := rec.failed(res, latency); err != nil {
				return m.abort(w, rec, err)
			}
			if m.opts.MaxFailures > 0 && m.consecutive >= m.opts.MaxFailures {
				return m.abort(w, rec, &WalkError{
					Code:    "TOO_MANY_FAILURES",
					Message: fmt.Sprintf("%d consecutive step failures", m.consecutive),
					Cause:   ErrTooManyFailures,
				})
			}
		default:
			if m.opts.Metrics != nil {
				m.opts.Metrics.RecordStepLatency(latency, StepFatal.String())
			}
			return m.abort(w, rec, res.Err)
		}
	}

	w.Outcome = OutcomeExhausted
	if err := rec.finish(w, nil); err != nil {
		return w, err
	}
	return w, nil
}

func (m *Machine) abort(w *Walk, rec *recorder, err error) (*Walk, error) {
	m.state = StateDone
	w.Outcome = OutcomeError
	var we *WalkError
	if errors.As(err, &we) && we.Code == "CANCELLED" {
		w.Outcome = OutcomeCancelled
	}
	if ferr := rec.finish(w, err); ferr != nil {
		return w, errors.Join(err, ferr)
	}
	return w, err
}

// recorder fans one walk's observations out to the hook, emitter, metrics
// and store configured on the machine.
type recorder struct {
	m         *Machine
	ctx       context.Context
	seq       int
	startedAt time.Time
}

func (r *recorder) observed(res StepResult, latency time.Duration) error {
	o := r.m.opts
	if o.StepHook != nil {
		o.StepHook(res)
	}
	o.Emitter.Emit(emit.Event{
		RunID:     o.RunID,
		Step:      res.Step,
		ElementID: res.Element.ID(),
		Msg:       emit.MsgElementVisited,
		Meta: map[string]interface{}{
			"name":       res.Element.Name(),
			"kind":       res.Element.Kind().String(),
			"latency_ms": millis(latency),
		},
	})
	if o.Metrics != nil && res.Step > 0 {
		o.Metrics.RecordStep(res.Element.Kind())
		o.Metrics.RecordStepLatency(latency, StepOK.String())
	}
	return r.save(res)
}

func (r *recorder) failed(res StepResult, latency time.Duration) error {
	o := r.m.opts
	if o.StepHook != nil {
		o.StepHook(res)
	}
	ev := emit.Event{
		RunID: o.RunID,
		Step:  res.Step,
		Msg:   emit.MsgStepFailed,
		Meta: map[string]interface{}{
			"error":      res.Err.Error(),
			"latency_ms": millis(latency),
		},
	}
	if res.Element != nil {
		ev.ElementID = res.Element.ID()
		ev.Meta["name"] = res.Element.Name()
		ev.Meta["kind"] = res.Element.Kind().String()
	}
	o.Emitter.Emit(ev)
	if o.Metrics != nil {
		o.Metrics.IncrementFailures(failureReason(res.Err))
		o.Metrics.RecordStepLatency(latency, StepFailed.String())
	}
	return r.save(res)
}

func (r *recorder) save(res StepResult) error {
	st := r.m.opts.Store
	if st == nil {
		return nil
	}
	rec := store.Record{Seq: r.seq, Step: res.Step, Status: store.StatusOK, At: time.Now()}
	if res.Element != nil {
		rec.ElementID = res.Element.ID()
		rec.ElementName = res.Element.Name()
		rec.Kind = res.Element.Kind().String()
	}
	if res.Status != StepOK {
		rec.Status = store.StatusFailed
		if res.Err != nil {
			rec.Error = res.Err.Error()
		}
	}
	r.seq++
	if err := st.SaveRecord(r.ctx, r.m.opts.RunID, rec); err != nil {
		return &WalkError{Code: "STORE_ERROR", Message: "failed to record step", Cause: err}
	}
	return nil
}

func (r *recorder) finish(w *Walk, cause error) error {
	m := r.m
	o := m.opts
	edgeCov, vertexCov := coverage(m.ec)

	meta := map[string]interface{}{
		"steps":           m.ec.StepCount(),
		"failures":        len(w.Failures),
		"length":          w.Len(),
		"outcome":         w.Outcome.String(),
		"edge_coverage":   edgeCov,
		"vertex_coverage": vertexCov,
	}
	msg := emit.MsgWalkDone
	if cause != nil {
		msg = emit.MsgWalkError
		meta["error"] = cause.Error()
	}
	o.Emitter.Emit(emit.Event{RunID: o.RunID, Step: m.ec.StepCount(), Msg: msg, Meta: meta})

	if o.Metrics != nil {
		o.Metrics.RecordWalk(o.RunID, w.Outcome, w.Len(), edgeCov, vertexCov)
	}

	if o.Store == nil {
		return nil
	}
	// The summary is written even when the walk context was cancelled.
	err := o.Store.SaveSummary(context.WithoutCancel(r.ctx), store.Summary{
		RunID:          o.RunID,
		Model:          o.ModelName,
		Generator:      m.ec.Generator().String(),
		Outcome:        w.Outcome.String(),
		Steps:          m.ec.StepCount(),
		Failures:       len(w.Failures),
		Length:         w.Len(),
		EdgeCoverage:   edgeCov,
		VertexCoverage: vertexCov,
		StartedAt:      r.startedAt,
		FinishedAt:     time.Now(),
	})
	if err != nil {
		return &WalkError{Code: "STORE_ERROR", Message: "failed to record summary", Cause: err}
	}
	return nil
}

// coverage returns the visited fractions of edges and vertices. An empty
// element set counts as fully covered.
func coverage(ec *ExecutionContext) (edges, vertices float64) {
	edges, vertices = 1, 1
	if n := ec.Model().EdgeCount(); n > 0 {
		edges = float64(ec.VisitedEdgeCount()) / float64(n)
	}
	if n := ec.Model().VertexCount(); n > 0 {
		vertices = float64(ec.VisitedVertexCount()) / float64(n)
	}
	return edges, vertices
}

func millis(d time.Duration) float64 {
	return float64(d.Microseconds()) / 1000
}
