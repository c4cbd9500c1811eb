package emit

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSlogEmitter_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	emitter := NewSlogEmitter(logger)

	emitter.Emit(Event{RunID: "run-001", Msg: MsgWalkStart})
	emitter.Emit(Event{RunID: "run-001", Step: 1, ElementID: "v1", Msg: MsgElementVisited})
	emitter.Emit(Event{RunID: "run-001", Step: 2, Msg: MsgStepFailed, Meta: map[string]interface{}{"error": "no path"}})

	out := buf.String()
	if !strings.Contains(out, "msg=walk_start") {
		t.Errorf("expected walk_start at info level, got: %s", out)
	}
	if strings.Contains(out, "element_visited") {
		t.Errorf("element_visited should be debug and filtered, got: %s", out)
	}
	if !strings.Contains(out, "level=WARN") || !strings.Contains(out, `error="no path"`) {
		t.Errorf("expected warn-level step failure with error attr, got: %s", out)
	}
}

func TestSlogEmitter_NilLoggerUsesDefault(t *testing.T) {
	emitter := NewSlogEmitter(nil)
	if emitter.logger == nil {
		t.Fatal("expected default logger")
	}
}
