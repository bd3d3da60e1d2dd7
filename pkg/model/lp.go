package model

import (
	"fmt"
	"slices"
)

type Direction uint8

const (
	Minimize Direction = iota
	Maximize
	Feasible
)

func (direction Direction) String() string {
	switch direction {
	case Minimize:
		return "min"
	case Maximize:
		return "max"
	default:
		return "feasible"
	}
}

func ParseDirection(value string) (Direction, error) {
	switch value {
	case "min", "minimize":
		return Minimize, nil
	case "max", "maximize":
		return Maximize, nil
	case "feasible", "none":
		return Feasible, nil
	}
	return 0, fmt.Errorf("unknown objective direction %q", value)
}

type Relation uint8

const (
	LessEqual Relation = iota
	Equal
	GreaterEqual
)

func (relation Relation) String() string {
	switch relation {
	case LessEqual:
		return "<="
	case Equal:
		return "="
	default:
		return ">="
	}
}

type Term struct {
	Var   uint64
	Coeff float64
}

type Objective struct {
	Direction Direction
	Terms     []Term
}

type Constraint struct {
	Kind     ConstraintKind
	Terms    []Term
	Relation Relation
	Rhs      float64
}

// Holds reports whether lhs satisfies the relation against rhs within tolerance
func (relation Relation) Holds(lhs, rhs, tolerance float64) bool {
	switch relation {
	case LessEqual:
		return lhs <= rhs+tolerance
	case Equal:
		return lhs >= rhs-tolerance && lhs <= rhs+tolerance
	default:
		return lhs >= rhs-tolerance
	}
}

// Short expressions are merged by scanning, longer ones through an index
const linearScanLimit = 8

// expression accumulates terms, merging coefficients of repeated ids
type expression struct {
	terms    []Term
	position map[uint64]int
}

func newExpression(capacity int) *expression {
	return &expression{terms: make([]Term, 0, capacity)}
}

func (expr *expression) add(variable uint64, coeff float64) *expression {
	if expr.position == nil && len(expr.terms) < linearScanLimit {
		for index := range expr.terms {
			if expr.terms[index].Var == variable {
				expr.terms[index].Coeff += coeff
				return expr
			}
		}
		expr.terms = append(expr.terms, Term{Var: variable, Coeff: coeff})
		return expr
	}

	if expr.position == nil {
		expr.position = make(map[uint64]int, 2*len(expr.terms))
		for index, term := range expr.terms {
			expr.position[term.Var] = index
		}
	}
	if index, ok := expr.position[variable]; ok {
		expr.terms[index].Coeff += coeff
		return expr
	}
	expr.position[variable] = len(expr.terms)
	expr.terms = append(expr.terms, Term{Var: variable, Coeff: coeff})
	return expr
}

// build drops terms whose coefficients cancelled out or were zero
func (expr *expression) build() []Term {
	return slices.DeleteFunc(expr.terms, func(term Term) bool { return term.Coeff == 0 })
}

func (expr *expression) constraint(kind ConstraintKind, relation Relation, rhs float64) Constraint {
	return Constraint{Kind: kind, Terms: expr.build(), Relation: relation, Rhs: rhs}
}
