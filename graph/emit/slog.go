package emit

import (
	"context"
	"log/slog"
	"sort"
)

// SlogEmitter bridges events into a *slog.Logger.
//
// Walk errors and step failures are logged at Warn/Error, visits at Debug and
// walk boundaries at Info, so a logger configured at Info level shows the
// run outline without per-step noise.
type SlogEmitter struct {
	logger *slog.Logger
}

// NewSlogEmitter returns an emitter writing to logger, or slog.Default()
// when logger is nil.
func NewSlogEmitter(logger *slog.Logger) *SlogEmitter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogEmitter{logger: logger}
}

// Emit logs the event with its metadata as attributes.
func (s *SlogEmitter) Emit(event Event) {
	attrs := []slog.Attr{
		slog.String("run_id", event.RunID),
		slog.Int("step", event.Step),
	}
	if event.ElementID != "" {
		attrs = append(attrs, slog.String("element_id", event.ElementID))
	}

	keys := make([]string, 0, len(event.Meta))
	for k := range event.Meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, event.Meta[k]))
	}

	s.logger.LogAttrs(context.Background(), levelFor(event.Msg), event.Msg, attrs...)
}

func levelFor(msg string) slog.Level {
	switch msg {
	case MsgWalkError:
		return slog.LevelError
	case MsgStepFailed:
		return slog.LevelWarn
	case MsgWalkStart, MsgWalkDone:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
