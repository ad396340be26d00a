// Package testkit wires the in-memory adapters and fixture designs that
// service and API tests share.
package testkit

import (
	"math/rand"

	"goinfer/adapters/memstore"
	"goinfer/adapters/rng"
	"goinfer/domain/hypothesis"
	"goinfer/domain/table"
	"goinfer/ports"
)

// TestKit provides testing utilities and fixtures
type TestKit struct {
	ledger *memstore.Ledger // Shared ledger instance
}

// NewTestKit creates a new test kit instance
func NewTestKit() (*TestKit, error) {
	return &TestKit{ledger: memstore.NewLedger()}, nil
}

// LedgerAdapter returns the shared in-memory ledger
func (t *TestKit) LedgerAdapter() ports.LedgerPort {
	// Return shared ledger instance so service and assertions use same storage
	return t.ledger
}

// LedgerReaderAdapter returns read-only access to the shared ledger
func (t *TestKit) LedgerReaderAdapter() ports.LedgerReaderPort {
	// Share the same storage as LedgerAdapter
	return t.ledger
}

// RNGAdapter returns the deterministic RNG adapter
func (t *TestKit) RNGAdapter() ports.RNGPort {
	return rng.New()
}

// MileageTable is the single-numeric-column fixture, handy for mean
// bootstraps with hand-checkable values.
func MileageTable() (*table.Table, error) {
	return table.New(table.NewNumericColumn("miles", []float64{1, 2, 3, 4, 5}))
}

// TwoArmDesign pairs a numeric score with a two-level arm column under the
// equal-means null, the canonical diff-in-means permutation setup.
func TwoArmDesign() (hypothesis.Design, error) {
	tbl, err := table.New(
		table.NewNumericColumn("score", []float64{12.5, 14.0, 11.5, 13.0, 9.0, 8.5, 10.0, 9.5}),
		table.NewFactorColumn("arm", []string{
			"treat", "treat", "treat", "treat",
			"control", "control", "control", "control",
		}),
	)
	if err != nil {
		return hypothesis.Design{}, err
	}
	return hypothesis.NewDesign(tbl, "score", "arm", hypothesis.NullEqualMeans, nil)
}

// SurveyDesign pairs a yes/no answer with a two-level group under the
// independence null, the canonical diff-in-props permutation setup.
func SurveyDesign() (hypothesis.Design, error) {
	tbl, err := table.New(
		table.NewFactorColumn("answer", []string{"yes", "yes", "no", "yes", "no", "no", "yes", "no"}),
		table.NewFactorColumn("group", []string{"x", "x", "x", "x", "y", "y", "y", "y"}),
	)
	if err != nil {
		return hypothesis.Design{}, err
	}
	return hypothesis.NewDesign(tbl, "answer", "group", hypothesis.NullIndependence, nil)
}

// PointDesign holds a single categorical column with a declared fair-coin
// point null, the simulate setup.
func PointDesign() (hypothesis.Design, error) {
	tbl, err := table.New(
		table.NewFactorColumn("flip", []string{"heads", "tails", "heads", "tails", "heads", "tails"}),
	)
	if err != nil {
		return hypothesis.Design{}, err
	}
	point, err := hypothesis.NewPointMass(
		hypothesis.LevelProb{Level: "heads", Prob: 0.5},
		hypothesis.LevelProb{Level: "tails", Prob: 0.5},
	)
	if err != nil {
		return hypothesis.Design{}, err
	}
	return hypothesis.NewDesign(tbl, "flip", "", hypothesis.NullPoint, point)
}

// SyntheticTwoArmDesign draws a larger two-arm dataset with a true group
// effect, for tests that want realistic permutation distributions rather
// than hand-picked rows.
func SyntheticTwoArmDesign(n int, effect float64, seed int64) (hypothesis.Design, error) {
	r := rand.New(rand.NewSource(seed))
	scores := make([]float64, n)
	arms := make([]string, n)
	for i := range scores {
		if i%2 == 0 {
			arms[i] = "treat"
			scores[i] = effect + r.NormFloat64()
		} else {
			arms[i] = "control"
			scores[i] = r.NormFloat64()
		}
	}

	tbl, err := table.New(
		table.NewNumericColumn("score", scores),
		table.NewFactorColumn("arm", arms),
	)
	if err != nil {
		return hypothesis.Design{}, err
	}
	return hypothesis.NewDesign(tbl, "score", "arm", hypothesis.NullEqualMeans, nil)
}
