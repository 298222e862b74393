package governance

import "fmt"

// Outcome is the binary resolution of an issue.
type Outcome int8

const (
	// Against marks an issue resolved negatively (-1).
	Against Outcome = -1
	// For marks an issue resolved positively (+1).
	For Outcome = 1
)

// Bool maps For to true and Against to false.
func (o Outcome) Bool() bool { return o == For }

// Float returns the outcome as ±1.0 for arithmetic with opinions.
func (o Outcome) Float() float64 { return float64(o) }

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o == For {
		return "for"
	}
	return "against"
}

// outcomeOf maps a signed quantity to an Outcome with sign(0) = For.
func outcomeOf(x float64) Outcome {
	if x < 0 {
		return Against
	}
	return For
}

// History is the insertion-ordered Issue → Outcome record of a run.
// It grows monotonically and holds each issue at most once.
type History struct {
	order    []int
	outcomes map[int]Outcome
}

// NewHistory returns an empty History.
func NewHistory() *History {
	return &History{outcomes: make(map[int]Outcome)}
}

// Record appends issue with its outcome.
// A second record for the same issue is a contract violation.
func (h *History) Record(issue int, o Outcome) error {
	if _, ok := h.outcomes[issue]; ok {
		return configErrorf("issue %d already decided", issue)
	}
	if o != For && o != Against {
		return configErrorf("issue %d: outcome %d is not ±1", issue, o)
	}
	h.outcomes[issue] = o
	h.order = append(h.order, issue)
	return nil
}

// Has reports whether issue has been decided.
func (h *History) Has(issue int) bool {
	_, ok := h.outcomes[issue]
	return ok
}

// Outcome returns the outcome of issue and whether it has been decided.
func (h *History) Outcome(issue int) (Outcome, bool) {
	o, ok := h.outcomes[issue]
	return o, ok
}

// Len returns the number of decided issues.
func (h *History) Len() int { return len(h.order) }

// Order returns the decided issues in resolution order.
func (h *History) Order() []int {
	out := make([]int, len(h.order))
	copy(out, h.order)
	return out
}

// Map returns a copy of the record as a plain map.
func (h *History) Map() map[int]Outcome {
	out := make(map[int]Outcome, len(h.outcomes))
	for k, v := range h.outcomes {
		out[k] = v
	}
	return out
}

// Vector returns the record as a length-d ±1 array indexed by issue.
// Undecided issues are 0.
func (h *History) Vector(d int) ([]float64, error) {
	out := make([]float64, d)
	for issue, o := range h.outcomes {
		if issue < 0 || issue >= d {
			return nil, fmt.Errorf("Vector(%d): issue %d out of range: %w", d, issue, ErrShapeMismatch)
		}
		out[issue] = o.Float()
	}
	return out, nil
}

// Unresolved returns the issues in [0,d) not yet decided, ascending.
func (h *History) Unresolved(d int) []int {
	out := make([]int, 0, max(d-len(h.order), 0))
	for i := 0; i < d; i++ {
		if !h.Has(i) {
			out = append(out, i)
		}
	}
	return out
}
