// Package hypothesis declares the null hypothesis attached to a dataset and
// the design wrapper that pairs a table with validated column roles. The
// design is the single metadata-attachment boundary: column roles are
// resolved and checked here once, never re-derived by type inspection
// downstream.
package hypothesis

import (
	"fmt"
	"math"

	"goinfer/domain/core"
	"goinfer/domain/table"
)

// Null identifies the declared null hypothesis
type Null string

const (
	// NullNone marks a design without a declared hypothesis. Bootstrap
	// generation is valid; permutation and simulation are not.
	NullNone Null = ""
	// NullIndependence assumes the first column is independent of the rest
	NullIndependence Null = "independence"
	// NullEqualMeans assumes the response distribution is equal across groups
	NullEqualMeans Null = "equal means"
	// NullPoint assumes the response follows declared per-level probabilities
	NullPoint Null = "point"
)

// ParseNull maps a string onto a Null. Unknown values fail; there is no
// silent fallthrough.
func ParseNull(s string) (Null, error) {
	switch Null(s) {
	case NullNone, NullIndependence, NullEqualMeans, NullPoint:
		return Null(s), nil
	default:
		return NullNone, core.NewUnsupportedNullError(s)
	}
}

func (n Null) String() string { return string(n) }

// probTolerance bounds the allowed drift of a point mass sum from 1
const probTolerance = 1e-9

// LevelProb pairs a response level with its hypothesized probability
type LevelProb struct {
	Level string  `json:"level"`
	Prob  float64 `json:"prob"`
}

// PointMass is the ordered per-level probability declaration of a point
// null. Order must match the response column's level order.
type PointMass []LevelProb

// NewPointMass validates that probabilities lie in [0,1] and sum to 1
func NewPointMass(pairs ...LevelProb) (PointMass, error) {
	if len(pairs) == 0 {
		return nil, core.NewInputError("point null needs at least one level probability")
	}
	sum := 0.0
	for _, pair := range pairs {
		if pair.Prob < 0 || pair.Prob > 1 {
			return nil, core.NewInputError(fmt.Sprintf(
				"probability for level %q out of range: %v", pair.Level, pair.Prob))
		}
		sum += pair.Prob
	}
	if math.Abs(sum-1) > probTolerance {
		return nil, core.NewInputError(fmt.Sprintf("point probabilities sum to %v, want 1", sum))
	}
	return PointMass(pairs), nil
}

// Prob looks up the probability declared for a level
func (pm PointMass) Prob(level string) (float64, bool) {
	for _, pair := range pm {
		if pair.Level == level {
			return pair.Prob, true
		}
	}
	return 0, false
}

// AlignedWith checks one-to-one correspondence with a level order
func (pm PointMass) AlignedWith(levels []string) error {
	if len(pm) != len(levels) {
		return core.NewInputError(fmt.Sprintf(
			"point null declares %d levels, response has %d", len(pm), len(levels)))
	}
	for i, pair := range pm {
		if pair.Level != levels[i] {
			return core.NewInputError(fmt.Sprintf(
				"point null level %d is %q, response level is %q", i, pair.Level, levels[i]))
		}
	}
	return nil
}

// Design pairs a table with its declared hypothesis and validated column
// roles. Construct through NewDesign; the zero value is not valid.
type Design struct {
	Table    *table.Table
	Response string
	Group    string // optional
	Null     Null
	Point    PointMass // set only for NullPoint
}

// NewDesign resolves and validates column roles against the table once.
// Response must name an existing column. Group, when named, must be a
// factor. A point null requires a factor response whose level order the
// point mass matches; an equal-means null requires a numeric response.
func NewDesign(tbl *table.Table, response, group string, null Null, point PointMass) (Design, error) {
	if tbl == nil {
		return Design{}, core.NewInputError("design needs a table")
	}
	if response == "" {
		return Design{}, core.NewInputError("design needs a response column")
	}
	if !tbl.HasColumn(response) {
		return Design{}, core.NewColumnNotFoundError(response)
	}
	if group != "" {
		if _, err := tbl.Factor(group); err != nil {
			return Design{}, err
		}
	}

	switch null {
	case NullNone, NullIndependence:
		// no role constraints beyond the above
	case NullEqualMeans:
		if _, err := tbl.Numeric(response); err != nil {
			return Design{}, err
		}
	case NullPoint:
		fc, err := tbl.Factor(response)
		if err != nil {
			return Design{}, err
		}
		if point == nil {
			return Design{}, core.NewInputError("point null needs level probabilities")
		}
		if err := point.AlignedWith(fc.Levels); err != nil {
			return Design{}, err
		}
	default:
		return Design{}, core.NewUnsupportedNullError(string(null))
	}

	if null != NullPoint && point != nil {
		return Design{}, core.NewInputError(fmt.Sprintf(
			"level probabilities given but null is %q", null))
	}

	return Design{
		Table:    tbl,
		Response: response,
		Group:    group,
		Null:     null,
		Point:    point,
	}, nil
}

// HasNull reports whether a hypothesis is declared
func (d Design) HasNull() bool {
	return d.Null != NullNone
}

// WithTable returns the same design over a different table. Used to carry
// metadata unchanged onto generator output.
func (d Design) WithTable(tbl *table.Table) Design {
	next := d
	next.Table = tbl
	return next
}
