package model

import (
	"fmt"
	"math"
)

// Tolerance used when checking assignments against the model
const Tolerance = 1e-6

// Check verifies that values, indexed by variable id, respect every variable domain and every constraint
func (model *Model) Check(values []float64) error {
	if uint64(len(values)) != model.registry.NumVariables() {
		return fmt.Errorf("%w: got %d values for %d variables", ErrAssignmentSize, len(values), model.registry.NumVariables())
	}

	for id, value := range values {
		domain := model.registry.variables[id].Domain()
		if (domain == Boolean && math.Abs(value) > Tolerance && math.Abs(value-1) > Tolerance) ||
			(domain == Continuous && value < -Tolerance) {
			return ViolationError{Constraint: -1, Variable: uint64(id), Lhs: value}
		}
	}

	for index, constraint := range model.constraints {
		lhs := evaluate(constraint.Terms, values)
		if !constraint.Relation.Holds(lhs, constraint.Rhs, Tolerance) {
			return ViolationError{Constraint: index, Kind: constraint.Kind, Lhs: lhs, Rhs: constraint.Rhs}
		}
	}

	return nil
}

func (model *Model) ObjectiveValue(values []float64) (float64, error) {
	if uint64(len(values)) != model.registry.NumVariables() {
		return 0, fmt.Errorf("%w: got %d values for %d variables", ErrAssignmentSize, len(values), model.registry.NumVariables())
	}
	return evaluate(model.objective.Terms, values), nil
}

func evaluate(terms []Term, values []float64) float64 {
	sum := 0.0
	for _, term := range terms {
		sum += term.Coeff * values[term.Var]
	}
	return sum
}
