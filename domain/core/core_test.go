package core

import (
	"errors"
	"math"
	"testing"
)

func TestNewRunID_Unique(t *testing.T) {
	seen := make(map[RunID]bool)
	for i := 0; i < 100; i++ {
		id := NewRunID()
		if id.String() == "" {
			t.Fatal("empty run ID generated")
		}
		if seen[id] {
			t.Fatalf("duplicate run ID %s", id)
		}
		seen[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	if _, err := ParseRunID("  "); err == nil {
		t.Error("blank run ID accepted")
	}
	id, err := ParseRunID("abc-123")
	if err != nil || id.String() != "abc-123" {
		t.Errorf("ParseRunID = (%v, %v)", id, err)
	}
}

func TestComputeDataFingerprint(t *testing.T) {
	a := [][][]float64{{{1, 2}, {3, 4}}}
	b := [][][]float64{{{1, 2}, {3, 4}}}
	c := [][][]float64{{{1, 2}, {3, 5}}}

	if ComputeDataFingerprint(a) != ComputeDataFingerprint(b) {
		t.Error("identical data produced different fingerprints")
	}
	if ComputeDataFingerprint(a) == ComputeDataFingerprint(c) {
		t.Error("different data produced identical fingerprints")
	}
}

func TestComputeDataFingerprint_CanonicalNaN(t *testing.T) {
	// Any NaN payload must hash identically
	weird := math.Float64frombits(math.Float64bits(math.NaN()) ^ 1)
	a := [][][]float64{{{math.NaN()}}}
	b := [][][]float64{{{weird}}}
	if ComputeDataFingerprint(a) != ComputeDataFingerprint(b) {
		t.Error("NaN payload bits leaked into the fingerprint")
	}
}

func TestComputeDataFingerprint_GroupBoundaries(t *testing.T) {
	// The same values split differently across groups must differ
	oneGroup := [][][]float64{{{1}, {2}}}
	twoGroups := [][][]float64{{{1}}, {{2}}}
	if ComputeDataFingerprint(oneGroup) == ComputeDataFingerprint(twoGroups) {
		t.Error("group boundaries not part of the fingerprint")
	}
}

func TestErrorHelpers(t *testing.T) {
	if !IsNotFoundError(ErrRunNotFound) {
		t.Error("ErrRunNotFound not recognized as not-found")
	}
	if IsNotFoundError(ErrShapeMismatch) {
		t.Error("ErrShapeMismatch recognized as not-found")
	}
	if !IsValidationError(NewShapeError([]int{2}, []int{3})) {
		t.Error("wrapped shape error not recognized as validation error")
	}
	if !errors.Is(NewTailError(5), ErrInvalidTail) {
		t.Error("NewTailError does not wrap ErrInvalidTail")
	}
}
