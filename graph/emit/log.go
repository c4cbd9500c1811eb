package emit

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
)

// LogEmitter implements Emitter by writing one line per event to a writer.
//
// Text mode (default) puts the event first and names the element by kind:
//
//	element_visited run=run-001 step=3 edge=e_login(e0)
//	step_failed     run=run-001 step=4 vertex=v_Home(v1) error="no path found"
//	walk_done       run=run-001 step=12 edge_coverage=0.75 vertex_coverage=1
//
// JSON mode writes one object per line with the element pulled out of Meta:
//
//	{"msg":"element_visited","run":"run-001","step":3,"element":{"id":"e0","name":"e_login","kind":"edge"}}
//
// Writes are serialized, so independent walks may share one LogEmitter.
type LogEmitter struct {
	mu       sync.Mutex
	writer   io.Writer
	jsonMode bool
}

// NewLogEmitter creates a new LogEmitter. A nil writer means os.Stdout.
func NewLogEmitter(writer io.Writer, jsonMode bool) *LogEmitter {
	if writer == nil {
		writer = os.Stdout
	}
	return &LogEmitter{
		writer:   writer,
		jsonMode: jsonMode,
	}
}

// Emit writes event to the configured writer.
func (l *LogEmitter) Emit(event Event) {
	var line []byte
	if l.jsonMode {
		line = jsonLine(event)
	} else {
		line = textLine(event)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = l.writer.Write(line)
}

type elementJSON struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
	Kind string `json:"kind,omitempty"`
}

type eventJSON struct {
	Msg     string                 `json:"msg"`
	RunID   string                 `json:"run"`
	Step    int                    `json:"step"`
	Element *elementJSON           `json:"element,omitempty"`
	Meta    map[string]interface{} `json:"meta,omitempty"`
}

func jsonLine(event Event) []byte {
	name, kind, rest := splitElement(event)
	out := eventJSON{Msg: event.Msg, RunID: event.RunID, Step: event.Step}
	if event.ElementID != "" {
		out.Element = &elementJSON{ID: event.ElementID, Name: name, Kind: kind}
	}
	if len(rest) > 0 {
		out.Meta = rest
	}

	data, err := json.Marshal(out)
	if err != nil {
		return fmt.Appendf(nil, "{\"msg\":%q,\"error\":%q}\n", event.Msg, "failed to marshal event: "+err.Error())
	}
	return append(data, '\n')
}

func textLine(event Event) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "%-15s run=%s step=%d", event.Msg, event.RunID, event.Step)

	name, kind, rest := splitElement(event)
	if event.ElementID != "" {
		if kind == "" {
			kind = "element"
		}
		ref := event.ElementID
		if name != "" {
			ref = name + "(" + event.ElementID + ")"
		}
		fmt.Fprintf(&b, " %s=%s", kind, ref)
	}
	for _, k := range slices.Sorted(maps.Keys(rest)) {
		fmt.Fprintf(&b, " %s=%s", k, textValue(rest[k]))
	}
	b.WriteByte('\n')
	return []byte(b.String())
}

// splitElement separates the element's name and kind from the rest of Meta.
// Walk-level events keep all of Meta. Meta itself is not modified.
func splitElement(event Event) (name, kind string, rest map[string]interface{}) {
	rest = make(map[string]interface{}, len(event.Meta))
	for k, v := range event.Meta {
		switch {
		case event.ElementID != "" && k == "name":
			name, _ = v.(string)
		case event.ElementID != "" && k == "kind":
			kind, _ = v.(string)
		default:
			rest[k] = v
		}
	}
	return name, kind, rest
}

func textValue(v interface{}) string {
	s := fmt.Sprint(v)
	if s == "" || strings.ContainsAny(s, " =\"\t\n") {
		return strconv.Quote(s)
	}
	return s
}
