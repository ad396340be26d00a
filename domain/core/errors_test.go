package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		checker func(error) bool
	}{
		{"input", NewInputError("two columns given"), IsInputError},
		{"column not found", NewColumnNotFoundError("response"), IsInputError},
		{"column kind", NewColumnKindError("x", "numeric"), IsInputError},
		{"group cardinality", ErrGroupCardinality, IsInputError},
		{"unsupported statistic", NewUnsupportedStatisticError("Chisq"), IsUnsupportedError},
		{"unsupported null", NewUnsupportedNullError("monotone"), IsUnsupportedError},
		{"missing metadata", ErrMissingMetadata, IsMissingMetadataError},
		{"not found", NewNotFoundError("run", "abc"), IsNotFoundError},
	}

	for _, test := range tests {
		if !test.checker(test.err) {
			t.Errorf("%s: checker rejected %v", test.name, test.err)
		}
	}
}

func TestErrorTaxonomyDisjoint(t *testing.T) {
	// An input error must not satisfy the unsupported or metadata checks.
	err := NewInputError("bad shape")
	if IsUnsupportedError(err) {
		t.Errorf("input error classified as unsupported: %v", err)
	}
	if IsMissingMetadataError(err) {
		t.Errorf("input error classified as missing metadata: %v", err)
	}

	err = NewUnsupportedStatisticError("F")
	if IsInputError(err) {
		t.Errorf("unsupported error classified as input: %v", err)
	}
}

func TestErrorWrappingSurvivesContext(t *testing.T) {
	wrapped := fmt.Errorf("calculate: %w", NewUnsupportedStatisticError("Chisq"))
	if !errors.Is(wrapped, ErrUnsupported) {
		t.Errorf("wrapping lost the sentinel: %v", wrapped)
	}
	if !errors.Is(wrapped, ErrUnsupportedStatistic) {
		t.Errorf("wrapping lost the specific sentinel: %v", wrapped)
	}
}
