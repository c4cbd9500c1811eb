package loader

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// blockedKeyword excludes an element from the loaded model.
const blockedKeyword = "BLOCKED"

var (
	reqTagPattern  = regexp.MustCompile(`(?i)\bREQTAG\s*[=:]\s*([^\n]*)`)
	weightPattern  = regexp.MustCompile(`(?i)\bweight\s*=\s*([^\s;]+)`)
	blockedPattern = regexp.MustCompile(`\b` + blockedKeyword + `\b`)
)

type vertexLabel struct {
	Name         string
	Requirements []string
	Blocked      bool
}

type edgeLabel struct {
	Name    string
	Guard   string
	Actions []string
	Weight  float64
	Blocked bool
}

// parseVertexLabel reads a vertex label of the form
//
//	v_Name
//	REQTAG=UC01, UC02
//
// The first whitespace-delimited token is the name.
func parseVertexLabel(label string) vertexLabel {
	var out vertexLabel
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return out
	}
	out.Name = fields[0]
	for _, f := range fields[1:] {
		if f == blockedKeyword {
			out.Blocked = true
		}
	}
	if m := reqTagPattern.FindStringSubmatch(label); m != nil {
		out.Requirements = splitList(m[1], ",")
	}
	return out
}

// parseEdgeLabel reads an edge label of the form
//
//	e_Name [guard] / action1; action2;
//	weight=0.3
//
// Every part except the name is optional.
func parseEdgeLabel(label string) (edgeLabel, error) {
	var out edgeLabel

	rest := label
	if m := weightPattern.FindStringSubmatchIndex(rest); m != nil {
		w, err := strconv.ParseFloat(rest[m[2]:m[3]], 64)
		if err != nil {
			return out, fmt.Errorf("invalid weight %q", rest[m[2]:m[3]])
		}
		out.Weight = w
		rest = rest[:m[0]] + rest[m[1]:]
	}
	if loc := blockedPattern.FindStringIndex(rest); loc != nil {
		out.Blocked = true
		rest = rest[:loc[0]] + rest[loc[1]:]
	}
	rest = strings.TrimSpace(rest)

	if i := strings.IndexAny(rest, "[/"); i >= 0 {
		out.Name = strings.TrimSpace(rest[:i])
		rest = rest[i:]
	} else {
		out.Name = rest
		rest = ""
	}
	if strings.ContainsAny(out.Name, " \t\n") {
		return out, fmt.Errorf("edge name %q contains whitespace", out.Name)
	}

	if strings.HasPrefix(rest, "[") {
		end := closingBracket(rest)
		if end < 0 {
			return out, fmt.Errorf("unterminated guard in %q", label)
		}
		out.Guard = strings.TrimSpace(rest[1:end])
		rest = strings.TrimSpace(rest[end+1:])
	}

	switch {
	case strings.HasPrefix(rest, "/"):
		out.Actions = splitList(rest[1:], ";")
	case rest != "":
		return out, fmt.Errorf("unexpected %q in edge label", rest)
	}
	return out, nil
}

// closingBracket returns the index of the bracket closing s[0], or -1.
func closingBracket(s string) int {
	depth := 0
	for i, r := range s {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitList(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
