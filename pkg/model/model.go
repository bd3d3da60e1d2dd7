package model

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Model is the objective and ordered constraint list built over a registry; it is immutable once built
type Model struct {
	registry    *Registry
	objective   Objective
	constraints []Constraint
}

// NewModel builds the model from a finished input and its registry, one family after the other
func NewModel(input ModelInput, registry *Registry, direction Direction) *Model {
	return assembleModel(input, registry, direction, generateSequentially)
}

func assembleModel(input ModelInput, registry *Registry, direction Direction, generate func(state constraintState) [][]Constraint) *Model {
	state := newConstraintState(input, registry)

	constraints := make([]Constraint, 0, estimateConstraints(input))
	for _, segment := range generate(state) {
		constraints = append(constraints, segment...)
	}

	return &Model{
		registry:    registry,
		objective:   buildObjective(state, direction),
		constraints: constraints,
	}
}

func generateSequentially(state constraintState) [][]Constraint {
	return lo.Map(constraintFamilies, func(family constraintFamily, _ int) []Constraint {
		return family.generate(state)
	})
}

func (model *Model) Registry() *Registry {
	return model.registry
}

func (model *Model) Direction() Direction {
	return model.objective.Direction
}

func (model *Model) Objective() Objective {
	return Objective{
		Direction: model.objective.Direction,
		Terms:     slices.Clone(model.objective.Terms),
	}
}

func (model *Model) NumConstraints() int {
	return len(model.constraints)
}

// Constraints returns the ordered constraint list; its terms are shared and must not be modified
func (model *Model) Constraints() []Constraint {
	return slices.Clone(model.constraints)
}

func (model *Model) Constraint(index int) (Constraint, error) {
	if index < 0 || index >= len(model.constraints) {
		return Constraint{}, fmt.Errorf("%w: %d, the model holds %d constraints", ErrConstraintOutOfRange, index, len(model.constraints))
	}
	constraint := model.constraints[index]
	constraint.Terms = slices.Clone(constraint.Terms)
	return constraint, nil
}

func (model *Model) CountByKind() map[ConstraintKind]int {
	return lo.CountValuesBy(model.constraints, func(constraint Constraint) ConstraintKind { return constraint.Kind })
}
