// Package generator provides path generation strategies.
//
// A generator decides which out-edge of the current vertex the walk takes
// next. It owns its stop condition and may keep private memory such as a
// seeded random source, but never mutates the model or the context.
package generator

import (
	"math/rand"

	"github.com/dshills/graphwalker-go/graph"
)

// Base carries the stop condition and the shared HasNextStep rule. Concrete
// generators embed it and implement NextStep and String.
type Base struct {
	Condition graph.StopCondition
}

// StopCondition returns the owned stop condition.
func (b *Base) StopCondition() graph.StopCondition { return b.Condition }

// HasNextStep applies graph.DefaultHasNextStep.
func (b *Base) HasNextStep(ec *graph.ExecutionContext) (bool, error) {
	return graph.DefaultHasNextStep(ec, b.Condition)
}

func (b *Base) describe(strategy string) string {
	if b.Condition == nil {
		return strategy + "()"
	}
	return strategy + "(" + b.Condition.String() + ")"
}

// outEdges returns the current vertex and its out-edges, or a
// *graph.NoPathFoundError when there is nothing to choose from.
func outEdges(ec *graph.ExecutionContext) (*graph.Vertex, []*graph.Edge, error) {
	v := ec.CurrentVertex()
	if v == nil {
		return nil, nil, &graph.NoPathFoundError{From: ec.CurrentElement(), Reason: "current element is not a vertex"}
	}
	edges := ec.Model().OutEdges(v)
	if len(edges) == 0 {
		return v, nil, &graph.NoPathFoundError{From: v, Reason: "vertex has no out-edges"}
	}
	return v, edges, nil
}

// First always takes the first out-edge in construction order.
type First struct {
	Base
}

// NewFirst returns a deterministic first-edge generator.
func NewFirst(cond graph.StopCondition) *First {
	return &First{Base{Condition: cond}}
}

func (g *First) NextStep(ec *graph.ExecutionContext) (*graph.Edge, error) {
	_, edges, err := outEdges(ec)
	if err != nil {
		return nil, err
	}
	return edges[0], nil
}

func (g *First) String() string { return g.describe("first") }

// Random picks an out-edge uniformly at random.
type Random struct {
	Base
	rng *rand.Rand
}

// NewRandom returns a uniform random generator. Equal seeds produce equal
// walks over the same model.
func NewRandom(cond graph.StopCondition, seed int64) *Random {
	return &Random{Base: Base{Condition: cond}, rng: rand.New(rand.NewSource(seed))}
}

func (g *Random) NextStep(ec *graph.ExecutionContext) (*graph.Edge, error) {
	_, edges, err := outEdges(ec)
	if err != nil {
		return nil, err
	}
	return edges[g.rng.Intn(len(edges))], nil
}

func (g *Random) String() string { return g.describe("random") }

// WeightedRandom picks out-edges with probability given by their weights.
//
// Weights are probabilities in [0, 1]. Edges without a weight share whatever
// probability the weighted edges leave over. When the weights sum to 1 or
// more, unweighted edges are never picked and the weighted ones are chosen
// proportionally. When no edge has a weight the choice is uniform.
type WeightedRandom struct {
	Base
	rng *rand.Rand
}

// NewWeightedRandom returns a weighted random generator.
func NewWeightedRandom(cond graph.StopCondition, seed int64) *WeightedRandom {
	return &WeightedRandom{Base: Base{Condition: cond}, rng: rand.New(rand.NewSource(seed))}
}

func (g *WeightedRandom) NextStep(ec *graph.ExecutionContext) (*graph.Edge, error) {
	_, edges, err := outEdges(ec)
	if err != nil {
		return nil, err
	}

	var sum float64
	unweighted := 0
	for _, e := range edges {
		if e.Weight() > 0 {
			sum += e.Weight()
		} else {
			unweighted++
		}
	}
	if sum == 0 {
		return edges[g.rng.Intn(len(edges))], nil
	}

	share := 0.0
	total := sum
	if unweighted > 0 && sum < 1 {
		share = (1 - sum) / float64(unweighted)
		total = 1
	}

	r := g.rng.Float64() * total
	for _, e := range edges {
		p := e.Weight()
		if p <= 0 {
			p = share
		}
		if r < p {
			return e, nil
		}
		r -= p
	}
	// Floating point leftovers land on the last edge with non-zero chance.
	for i := len(edges) - 1; i >= 0; i-- {
		if edges[i].Weight() > 0 || share > 0 {
			return edges[i], nil
		}
	}
	return edges[len(edges)-1], nil
}

func (g *WeightedRandom) String() string { return g.describe("weighted_random") }
