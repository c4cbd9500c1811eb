// Package descriptor parses path generator descriptors such as
//
//	random(edge_coverage(100) && length(50))
//	a_star(reached_vertex(v_Goal))
//	quick_random(vertex_coverage(100) or time_duration(30))
//
// Descriptors are HCL expressions: a strategy call wrapping one stop
// condition expression. Conditions combine with && / || (or the keywords
// and / or) and parentheses. Errors are hcl.Diagnostics with source ranges.
package descriptor

import (
	"fmt"
	"math"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"github.com/dshills/graphwalker-go/graph"
	"github.com/dshills/graphwalker-go/graph/condition"
	"github.com/dshills/graphwalker-go/graph/generator"
)

const filename = "<generator>"

type config struct {
	seed int64
}

// Option configures Parse.
type Option func(*config)

// WithSeed seeds random strategies. The default seed is 0, so unseeded
// descriptors are still reproducible.
func WithSeed(seed int64) Option {
	return func(c *config) { c.seed = seed }
}

// Parse builds a path generator from src. When model is non-nil, element
// names used by reached_vertex and reached_edge must exist in it.
func Parse(src string, model *graph.Model, opts ...Option) (graph.PathGenerator, error) {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	expr, diags := parseExpression(src)
	if diags.HasErrors() {
		return nil, diags
	}

	call, ok := unwrap(expr).(*hclsyntax.FunctionCallExpr)
	if !ok {
		return nil, diagnose(expr, "Invalid generator", "expected a strategy call such as random(edge_coverage(100))")
	}
	if len(call.Args) != 1 {
		return nil, diagnose(call, "Invalid generator", fmt.Sprintf("%s takes exactly one stop condition, got %d arguments", call.Name, len(call.Args)))
	}

	build, ok := strategies[call.Name]
	if !ok {
		return nil, diagnose(call, "Unknown strategy", fmt.Sprintf("%q is not a known path generator", call.Name))
	}

	p := &parser{model: model}
	cond := p.condition(call.Args[0])
	if p.diags.HasErrors() {
		return nil, p.diags
	}

	gen, detail := build(cond, cfg.seed)
	if gen == nil {
		return nil, diagnose(call.Args[0], "Invalid generator", call.Name+" "+detail)
	}
	return gen, nil
}

type strategy func(cond graph.StopCondition, seed int64) (graph.PathGenerator, string)

var strategies = map[string]strategy{
	"random":               random,
	"random_path":          random,
	"weighted_random":      weightedRandom,
	"weighted_random_path": weightedRandom,
	"quick_random":         quickRandom,
	"quick_random_path":    quickRandom,
	"a_star":               aStar,
	"a_star_path":          aStar,
	"shortest_path":        aStar,
	"first": func(cond graph.StopCondition, _ int64) (graph.PathGenerator, string) {
		return generator.NewFirst(cond), ""
	},
}

func random(cond graph.StopCondition, seed int64) (graph.PathGenerator, string) {
	return generator.NewRandom(cond, seed), ""
}

func weightedRandom(cond graph.StopCondition, seed int64) (graph.PathGenerator, string) {
	return generator.NewWeightedRandom(cond, seed), ""
}

func quickRandom(cond graph.StopCondition, seed int64) (graph.PathGenerator, string) {
	return generator.NewQuickRandom(cond, seed), ""
}

func aStar(cond graph.StopCondition, _ int64) (graph.PathGenerator, string) {
	if _, ok := condition.FindGoal(cond); !ok {
		return nil, "needs a reached_vertex or reached_edge condition"
	}
	return generator.NewAStar(cond), ""
}

// ParseCondition parses a stop condition expression on its own.
func ParseCondition(src string, model *graph.Model) (graph.StopCondition, error) {
	expr, diags := parseExpression(src)
	if diags.HasErrors() {
		return nil, diags
	}
	p := &parser{model: model}
	cond := p.condition(expr)
	if p.diags.HasErrors() {
		return nil, p.diags
	}
	return cond, nil
}

func parseExpression(src string) (hclsyntax.Expression, hcl.Diagnostics) {
	return hclsyntax.ParseExpression([]byte(normalize(src)), filename, hcl.Pos{Line: 1, Column: 1, Byte: 0})
}

type parser struct {
	model *graph.Model
	diags hcl.Diagnostics
}

func (p *parser) fail(expr hcl.Expression, summary, detail string) graph.StopCondition {
	p.diags = append(p.diags, &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  expr.Range().Ptr(),
	})
	return nil
}

func (p *parser) condition(expr hclsyntax.Expression) graph.StopCondition {
	switch e := unwrap(expr).(type) {
	case *hclsyntax.BinaryOpExpr:
		lhs, rhs := p.condition(e.LHS), p.condition(e.RHS)
		switch e.Op {
		case hclsyntax.OpLogicalAnd:
			return flattenAnd(lhs, rhs)
		case hclsyntax.OpLogicalOr:
			return flattenOr(lhs, rhs)
		}
		return p.fail(e, "Invalid operator", "stop conditions combine only with && and ||")
	case *hclsyntax.FunctionCallExpr:
		return p.call(e)
	case *hclsyntax.ScopeTraversalExpr:
		// Zero-argument conditions may drop their parentheses: random(never).
		if len(e.Traversal) == 1 {
			return p.call(&hclsyntax.FunctionCallExpr{Name: e.Traversal.RootName(), NameRange: e.SrcRange, OpenParenRange: e.SrcRange, CloseParenRange: e.SrcRange})
		}
		return p.fail(e, "Invalid stop condition", "expected a condition call such as length(10)")
	default:
		return p.fail(expr, "Invalid stop condition", "expected a condition call such as length(10)")
	}
}

func (p *parser) call(e *hclsyntax.FunctionCallExpr) graph.StopCondition {
	arity := func(n int) bool {
		if len(e.Args) != n {
			p.fail(e, "Wrong number of arguments", fmt.Sprintf("%s takes %d argument(s), got %d", e.Name, n, len(e.Args)))
			return false
		}
		return true
	}

	switch e.Name {
	case "never":
		if arity(0) {
			return condition.Never{}
		}
	case "reachable_coverage":
		if arity(0) {
			return &condition.ReachableCoverage{}
		}
	case "length":
		if n, ok := p.integer(e, 0, math.MaxInt32); ok {
			return &condition.Length{N: n}
		}
	case "edge_coverage":
		if n, ok := p.integer(e, 0, 100); ok {
			return &condition.EdgeCoverage{Percent: n}
		}
	case "vertex_coverage":
		if n, ok := p.integer(e, 0, 100); ok {
			return &condition.VertexCoverage{Percent: n}
		}
	case "requirement_coverage":
		if n, ok := p.integer(e, 0, 100); ok {
			return &condition.RequirementCoverage{Percent: n}
		}
	case "time_duration":
		if secs, ok := p.number(e); ok {
			if secs < 0 {
				return p.fail(e.Args[0], "Invalid argument", "time_duration needs a non-negative number of seconds")
			}
			return &condition.TimeDuration{D: time.Duration(secs * float64(time.Second))}
		}
	case "reached_vertex":
		if name, ok := p.name(e); ok {
			if p.model != nil && len(p.model.FindVertices(name)) == 0 {
				return p.fail(e.Args[0], "Unknown vertex", fmt.Sprintf("the model has no vertex named %q", name))
			}
			return &condition.ReachedVertex{Name: name}
		}
	case "reached_edge":
		if name, ok := p.name(e); ok {
			if p.model != nil && len(p.model.FindEdges(name)) == 0 {
				return p.fail(e.Args[0], "Unknown edge", fmt.Sprintf("the model has no edge named %q", name))
			}
			return &condition.ReachedEdge{Name: name}
		}
	default:
		return p.fail(e, "Unknown stop condition", fmt.Sprintf("%q is not a known stop condition", e.Name))
	}
	return nil
}

func (p *parser) number(e *hclsyntax.FunctionCallExpr) (float64, bool) {
	if len(e.Args) != 1 {
		p.fail(e, "Wrong number of arguments", e.Name+" takes 1 argument")
		return 0, false
	}
	arg := e.Args[0]
	val, diags := arg.Value(nil)
	if diags.HasErrors() || !val.Type().Equals(cty.Number) || val.IsNull() {
		p.fail(arg, "Invalid argument", e.Name+" expects a number")
		return 0, false
	}
	var f float64
	if err := gocty.FromCtyValue(val, &f); err != nil {
		p.fail(arg, "Invalid argument", err.Error())
		return 0, false
	}
	return f, true
}

func (p *parser) integer(e *hclsyntax.FunctionCallExpr, lo, hi int) (int, bool) {
	if len(e.Args) != 1 {
		p.fail(e, "Wrong number of arguments", e.Name+" takes 1 argument")
		return 0, false
	}
	arg := e.Args[0]
	val, diags := arg.Value(nil)
	if diags.HasErrors() || !val.Type().Equals(cty.Number) || val.IsNull() {
		p.fail(arg, "Invalid argument", e.Name+" expects a whole number")
		return 0, false
	}
	var n int
	if err := gocty.FromCtyValue(val, &n); err != nil {
		p.fail(arg, "Invalid argument", e.Name+" expects a whole number")
		return 0, false
	}
	if n < lo || n > hi {
		p.fail(arg, "Invalid argument", fmt.Sprintf("%s expects a value in [%d, %d], got %d", e.Name, lo, hi, n))
		return 0, false
	}
	return n, true
}

// name accepts a bare identifier (v_Goal) or a quoted string ("Shopping Cart").
func (p *parser) name(e *hclsyntax.FunctionCallExpr) (string, bool) {
	if len(e.Args) != 1 {
		p.fail(e, "Wrong number of arguments", e.Name+" takes 1 argument")
		return "", false
	}
	switch arg := e.Args[0].(type) {
	case *hclsyntax.ScopeTraversalExpr:
		if len(arg.Traversal) == 1 {
			return arg.Traversal.RootName(), true
		}
	case *hclsyntax.TemplateExpr:
		if val, diags := arg.Value(nil); !diags.HasErrors() && val.Type().Equals(cty.String) && val.IsKnown() && !val.IsNull() {
			return val.AsString(), true
		}
	}
	p.fail(e.Args[0], "Invalid argument", e.Name+" expects an element name")
	return "", false
}

func unwrap(expr hclsyntax.Expression) hclsyntax.Expression {
	for {
		paren, ok := expr.(*hclsyntax.ParenthesesExpr)
		if !ok {
			return expr
		}
		expr = paren.Expression
	}
}

func flattenAnd(parts ...graph.StopCondition) graph.StopCondition {
	var out condition.And
	for _, sc := range parts {
		if and, ok := sc.(condition.And); ok {
			out = append(out, and...)
		} else {
			out = append(out, sc)
		}
	}
	return out
}

func flattenOr(parts ...graph.StopCondition) graph.StopCondition {
	var out condition.Or
	for _, sc := range parts {
		if or, ok := sc.(condition.Or); ok {
			out = append(out, or...)
		} else {
			out = append(out, sc)
		}
	}
	return out
}

func diagnose(expr hcl.Expression, summary, detail string) hcl.Diagnostics {
	return hcl.Diagnostics{{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  expr.Range().Ptr(),
	}}
}
