package graph

import (
	"errors"

	"github.com/dshills/graphwalker-go/graph/emit"
	"github.com/dshills/graphwalker-go/graph/store"
)

// Options configures Machine behavior.
//
// Zero values are valid: a Machine with no options walks with a random
// run id, no event output, no metrics and no recording.
type Options struct {
	// RunID labels events, metrics and stored records. Empty means a new
	// UUID is generated per Machine.
	RunID string

	// MaxFailures aborts Walk after this many consecutive recoverable step
	// failures. Zero means no limit: bounding a walk is the stop
	// condition's job, this is only a safety net for pathological
	// strategies.
	MaxFailures int

	// Emitter receives walk events. Nil disables events.
	Emitter emit.Emitter

	// Metrics records Prometheus metrics. Nil disables metrics.
	Metrics *PrometheusMetrics

	// Store records every observation and failure of Walk. Nil disables
	// recording.
	Store store.Store

	// ModelName labels stored summaries, typically the model file path.
	ModelName string

	// StepHook is called by Walk for the seeded start element and for every
	// step result, including recoverable failures.
	StepHook func(StepResult)
}

// Option is a functional option for configuring a Machine.
//
// Example:
//
//	m, err := graph.NewMachine(ec,
//	    graph.WithRunID("smoke-42"),
//	    graph.WithEmitter(emit.NewLogEmitter(os.Stderr, false)),
//	    graph.WithMaxFailures(100),
//	)
type Option func(*Options) error

// WithRunID sets the run identifier.
func WithRunID(id string) Option {
	return func(o *Options) error {
		o.RunID = id
		return nil
	}
}

// WithMaxFailures limits consecutive recoverable failures during Walk.
// Returns an error for negative values.
func WithMaxFailures(n int) Option {
	return func(o *Options) error {
		if n < 0 {
			return errors.New("max failures must be >= 0")
		}
		o.MaxFailures = n
		return nil
	}
}

// WithEmitter sets the event emitter.
func WithEmitter(e emit.Emitter) Option {
	return func(o *Options) error {
		o.Emitter = e
		return nil
	}
}

// WithMetrics enables Prometheus metrics.
func WithMetrics(m *PrometheusMetrics) Option {
	return func(o *Options) error {
		o.Metrics = m
		return nil
	}
}

// WithStore records the walk into s.
func WithStore(s store.Store) Option {
	return func(o *Options) error {
		o.Store = s
		return nil
	}
}

// WithModelName sets the model label used in stored summaries.
func WithModelName(name string) Option {
	return func(o *Options) error {
		o.ModelName = name
		return nil
	}
}

// WithStepHook registers a callback observing every step result of Walk.
func WithStepHook(hook func(StepResult)) Option {
	return func(o *Options) error {
		o.StepHook = hook
		return nil
	}
}

// WithOptions applies a whole Options struct; later options override it.
func WithOptions(opts Options) Option {
	return func(o *Options) error {
		if opts.MaxFailures < 0 {
			return errors.New("max failures must be >= 0")
		}
		*o = opts
		return nil
	}
}
