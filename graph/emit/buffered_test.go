package emit

import (
	"sync"
	"testing"
)

func TestBufferedEmitter_StoresEvents(t *testing.T) {
	t.Run("stores events in order", func(t *testing.T) {
		emitter := NewBufferedEmitter()

		emitter.Emit(Event{RunID: "run-001", Step: 0, ElementID: "v0", Msg: MsgWalkStart})
		emitter.Emit(Event{RunID: "run-001", Step: 1, ElementID: "e0", Msg: MsgElementVisited})
		emitter.Emit(Event{RunID: "run-001", Step: 2, ElementID: "v1", Msg: MsgElementVisited})

		history := emitter.GetHistory("run-001")
		if len(history) != 3 {
			t.Fatalf("expected 3 events, got %d", len(history))
		}
		if history[1].ElementID != "e0" {
			t.Errorf("expected ElementID = 'e0', got %q", history[1].ElementID)
		}
	})

	t.Run("isolates events by runID", func(t *testing.T) {
		emitter := NewBufferedEmitter()

		emitter.Emit(Event{RunID: "run-001", Msg: "event1"})
		emitter.Emit(Event{RunID: "run-002", Msg: "event2"})
		emitter.Emit(Event{RunID: "run-001", Msg: "event3"})

		if got := len(emitter.GetHistory("run-001")); got != 2 {
			t.Errorf("expected 2 events for run-001, got %d", got)
		}
		if got := len(emitter.GetHistory("run-002")); got != 1 {
			t.Errorf("expected 1 event for run-002, got %d", got)
		}
		if got := len(emitter.RunIDs()); got != 2 {
			t.Errorf("expected 2 run ids, got %d", got)
		}
	})

	t.Run("returns empty slice for unknown runID", func(t *testing.T) {
		emitter := NewBufferedEmitter()

		history := emitter.GetHistory("unknown-run")
		if history == nil {
			t.Error("expected empty slice, got nil")
		}
	})

	t.Run("history is a copy", func(t *testing.T) {
		emitter := NewBufferedEmitter()
		emitter.Emit(Event{RunID: "run-001", Msg: "original"})

		history := emitter.GetHistory("run-001")
		history[0].Msg = "modified"

		if got := emitter.GetHistory("run-001")[0].Msg; got != "original" {
			t.Errorf("buffer was modified through returned slice: %q", got)
		}
	})
}

func TestBufferedEmitter_Filter(t *testing.T) {
	emitter := NewBufferedEmitter()
	for i, id := range []string{"v0", "e0", "v1", "e1", "v0"} {
		emitter.Emit(Event{RunID: "run-001", Step: i, ElementID: id, Msg: MsgElementVisited})
	}
	emitter.Emit(Event{RunID: "run-001", Step: 5, Msg: MsgStepFailed})

	tests := []struct {
		name   string
		filter HistoryFilter
		want   int
	}{
		{"empty filter", HistoryFilter{}, 6},
		{"by element", HistoryFilter{ElementID: "v0"}, 2},
		{"by msg", HistoryFilter{Msg: MsgStepFailed}, 1},
		{"by step range", HistoryFilter{MinStep: intPtr(1), MaxStep: intPtr(3)}, 3},
		{"combined", HistoryFilter{ElementID: "v0", MinStep: intPtr(1)}, 1},
		{"no match", HistoryFilter{ElementID: "missing"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := emitter.GetHistoryWithFilter("run-001", tt.filter)
			if got == nil {
				t.Fatal("expected non-nil slice")
			}
			if len(got) != tt.want {
				t.Errorf("expected %d events, got %d", tt.want, len(got))
			}
		})
	}
}

func TestBufferedEmitter_Clear(t *testing.T) {
	emitter := NewBufferedEmitter()
	emitter.Emit(Event{RunID: "run-001"})
	emitter.Emit(Event{RunID: "run-002"})

	emitter.Clear("run-001")
	if len(emitter.GetHistory("run-001")) != 0 {
		t.Error("expected run-001 cleared")
	}
	if len(emitter.GetHistory("run-002")) != 1 {
		t.Error("expected run-002 kept")
	}

	emitter.Clear("")
	if len(emitter.GetHistory("run-002")) != 0 {
		t.Error("expected all runs cleared")
	}
}

func TestBufferedEmitter_Concurrent(t *testing.T) {
	emitter := NewBufferedEmitter()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			emitter.Emit(Event{RunID: "run-001", Step: i})
			_ = emitter.GetHistory("run-001")
		}(i)
	}
	wg.Wait()

	if got := len(emitter.GetHistory("run-001")); got != 50 {
		t.Errorf("expected 50 events, got %d", got)
	}
}

func intPtr(i int) *int { return &i }
