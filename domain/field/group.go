package field

import (
	"fmt"

	"clusterperm/domain/core"
)

// Group is a stack of observations (trials or subjects) sharing one spatial
// shape. Each observation is a flattened row over Shape.
type Group struct {
	Shape []int       `json:"shape"`
	Obs   [][]float64 `json:"observations"`
}

// NewGroup validates and wraps observation rows.
// Every row must have exactly Size(shape) values.
func NewGroup(shape []int, obs [][]float64) (*Group, error) {
	n := Size(shape)
	if n == 0 {
		return nil, fmt.Errorf("%w: non-positive dimension in %v", core.ErrShapeMismatch, shape)
	}
	if len(obs) == 0 {
		return nil, core.ErrEmptyGroup
	}
	for i, row := range obs {
		if len(row) != n {
			return nil, fmt.Errorf("%w: observation %d has %d values, shape %v needs %d",
				core.ErrShapeMismatch, i, len(row), shape, n)
		}
	}
	return &Group{Shape: append([]int(nil), shape...), Obs: obs}, nil
}

// Len returns the number of observations
func (g *Group) Len() int {
	return len(g.Obs)
}

// Locations returns the flattened location count per observation
func (g *Group) Locations() int {
	return Size(g.Shape)
}

// ValidateGroups checks that all groups share one spatial shape and each has
// at least two observations (variance is undefined below that).
func ValidateGroups(groups []*Group) error {
	if len(groups) == 0 {
		return core.ErrEmptyGroup
	}
	shape := groups[0].Shape
	for i, g := range groups {
		if g == nil || g.Len() == 0 {
			return fmt.Errorf("group %d: %w", i, core.ErrEmptyGroup)
		}
		if !SameShape(shape, g.Shape) {
			return core.NewShapeError(shape, g.Shape)
		}
		if g.Len() < 2 {
			return fmt.Errorf("group %d: %w", i, core.ErrTooFewObservations)
		}
	}
	return nil
}
