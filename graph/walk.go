package graph

// StepStatus classifies the result of one NextStep call.
type StepStatus int

const (
	// StepOK means the machine advanced and Element is the new current
	// element.
	StepOK StepStatus = iota
	// StepFailed is a recoverable failure: the context is unchanged and
	// Element is the last-known current element.
	StepFailed
	// StepFatal aborts the run. Element is the last-known current element.
	StepFatal
)

func (s StepStatus) String() string {
	switch s {
	case StepOK:
		return "ok"
	case StepFailed:
		return "failed"
	default:
		return "fatal"
	}
}

// StepResult is what one step produced.
type StepResult struct {
	// Step is the step count after an OK step, or the attempted step number
	// for failures. The seeded start element is reported as step 0.
	Step    int
	Element Element
	Status  StepStatus
	Err     error
}

// Outcome describes how a walk ended.
type Outcome int

const (
	// OutcomeRunning is the outcome of a walk still in progress.
	OutcomeRunning Outcome = iota
	// OutcomeExhausted means HasNextStep reported false: the stop condition
	// was fulfilled or the position had no outgoing transition.
	OutcomeExhausted
	// OutcomeError means the walk aborted on a fatal error.
	OutcomeError
	// OutcomeCancelled means the walk's context was cancelled.
	OutcomeCancelled
)

func (o Outcome) String() string {
	switch o {
	case OutcomeExhausted:
		return "exhausted"
	case OutcomeError:
		return "error"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "running"
	}
}

// Observation is one element of the walk sequence.
type Observation struct {
	Step    int
	Element Element
}

// Walk is the recorded result of Machine.Walk.
type Walk struct {
	RunID        string
	Observations []Observation
	// Failures holds every recoverable failure in order of occurrence.
	Failures []StepResult
	Outcome  Outcome
}

// Len returns the number of observed elements.
func (w *Walk) Len() int { return len(w.Observations) }

// Elements returns the observed elements in order.
func (w *Walk) Elements() []Element {
	out := make([]Element, len(w.Observations))
	for i, o := range w.Observations {
		out[i] = o.Element
	}
	return out
}

// Names returns the names of the observed elements in order.
func (w *Walk) Names() []string {
	out := make([]string, len(w.Observations))
	for i, o := range w.Observations {
		out[i] = o.Element.Name()
	}
	return out
}

// Vertices returns only the observed vertices, in order.
func (w *Walk) Vertices() []*Vertex {
	out := []*Vertex{}
	for _, o := range w.Observations {
		if v, ok := o.Element.(*Vertex); ok {
			out = append(out, v)
		}
	}
	return out
}

func (w *Walk) observe(step int, el Element) {
	w.Observations = append(w.Observations, Observation{Step: step, Element: el})
}
