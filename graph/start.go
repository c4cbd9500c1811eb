package graph

// StartVertexName is the vertex name that marks the start of a model in the
// name-based convention.
const StartVertexName = "Start"

// StartResolution reports which start-vertex rule fired.
type StartResolution int

const (
	// StartUnresolved means no rule found a candidate; the walk is empty.
	StartUnresolved StartResolution = iota
	// StartByName means a vertex named "Start" became the current element.
	StartByName
	// StartByInDegree means the first vertex without in-edges became the
	// next element; it turns current after the first step.
	StartByInDegree
)

// String returns a short label for logs.
func (r StartResolution) String() string {
	switch r {
	case StartByName:
		return "by_name"
	case StartByInDegree:
		return "by_in_degree"
	default:
		return "unresolved"
	}
}

// ResolveStart seeds ec with the initial position of the walk.
//
// Precedence:
//  1. The first vertex (construction order) named "Start" is set as the
//     current element, so it is the first observed element of the walk.
//  2. Otherwise the first vertex with zero in-edges is set as the next
//     element; one step is needed to make it current.
//  3. Otherwise nothing is set and the machine reports no next step.
//
// The context must not already have a position.
func ResolveStart(ec *ExecutionContext) (StartResolution, error) {
	m := ec.Model()
	if m == nil {
		return StartUnresolved, &StructuralModelError{Code: "NO_MODEL", Message: "execution context has no model"}
	}

	if starts := m.FindVertices(StartVertexName); len(starts) > 0 && starts[0] != nil {
		if err := ec.SetCurrentElement(starts[0]); err != nil {
			return StartUnresolved, err
		}
		return StartByName, nil
	}

	for _, v := range m.vertices {
		if m.InDegree(v) == 0 {
			if err := ec.SetNextElement(v); err != nil {
				return StartUnresolved, err
			}
			return StartByInDegree, nil
		}
	}

	return StartUnresolved, nil
}
