package model

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput         = errors.New("invalid input")
	ErrEmptyDomain          = errors.New("invalid model: no teachers, classes nor requirements")
	ErrVariableOutOfRange   = errors.New("variable id out of range")
	ErrConstraintOutOfRange = errors.New("constraint index out of range")
	ErrUnknownFamily        = errors.New("unknown variable family")
	ErrAssignmentSize       = errors.New("assignment size does not match the number of variables")
	ErrUnschedulable        = errors.New("input cannot be scheduled")
)

// ViolationError reports the first constraint (or variable domain) an assignment breaks
type ViolationError struct {
	Constraint int // -1 when the violation is a variable domain
	Kind       ConstraintKind
	Variable   uint64
	Lhs        float64
	Rhs        float64
}

func (err ViolationError) Error() string {
	if err.Constraint < 0 {
		return fmt.Sprintf("variable %d holds %v, which is outside its domain", err.Variable, err.Lhs)
	}
	return fmt.Sprintf("constraint %d (%v) is violated: lhs %v, rhs %v", err.Constraint, err.Kind, err.Lhs, err.Rhs)
}
