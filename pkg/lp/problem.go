package lp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/limaJavier/lptimetabling/pkg/model"
	"github.com/samber/lo"
)

// Terms per line of LP text; keeps rows under the 255 character limit of some readers
const termsPerLine = 8

// Problem is the solver-facing view of a model: named variables with their domains,
// the objective and the ordered constraints
type Problem struct {
	Names       []string
	Domains     []model.Domain
	Objective   model.Objective
	Constraints []model.Constraint
}

func FromModel(lpModel *model.Model) Problem {
	variables := lpModel.Registry().Variables()
	return Problem{
		Names:       lo.Map(variables, func(variable model.Variable, _ int) string { return variableName(variable.Id) }),
		Domains:     lo.Map(variables, func(variable model.Variable, _ int) model.Domain { return variable.Domain() }),
		Objective:   lpModel.Objective(),
		Constraints: lpModel.Constraints(),
	}
}

func variableName(id uint64) string {
	return "x" + strconv.FormatUint(id, 10)
}

// variableIndex resolves a name written by ToCPLEX back to its variable id
func (problem Problem) variableIndex(name string) (uint64, bool) {
	if !strings.HasPrefix(name, "x") {
		return 0, false
	}
	id, err := strconv.ParseUint(name[1:], 10, 64)
	if err != nil || id >= uint64(len(problem.Names)) {
		return 0, false
	}
	return id, true
}

// ToCPLEX writes the problem in CPLEX LP format. A feasibility problem is written as the
// minimization of zero.
func (problem Problem) ToCPLEX() string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "\\ variables: %d, constraints: %d\n", len(problem.Names), len(problem.Constraints))

	//** Objective
	terms := problem.Objective.Terms
	if problem.Objective.Direction == model.Maximize {
		builder.WriteString("Maximize\n")
	} else {
		builder.WriteString("Minimize\n")
	}
	if problem.Objective.Direction == model.Feasible {
		terms = nil
	}
	builder.WriteString(" obj: ")
	problem.writeExpression(&builder, terms)
	builder.WriteString("\n")

	//** Constraints
	builder.WriteString("Subject To\n")
	for index, constraint := range problem.Constraints {
		fmt.Fprintf(&builder, " c%d: ", index)
		problem.writeExpression(&builder, constraint.Terms)
		fmt.Fprintf(&builder, " %v %v\n", constraint.Relation, formatNumber(constraint.Rhs))
	}

	//** Bounds
	continuous := lo.Filter(lo.Range(len(problem.Names)), func(id int, _ int) bool { return problem.Domains[id] == model.Continuous })
	if len(continuous) > 0 {
		builder.WriteString("Bounds\n")
		for _, id := range continuous {
			fmt.Fprintf(&builder, " %v >= 0\n", problem.Names[id])
		}
	}

	//** Binaries
	binaries := lo.FilterMap(lo.Range(len(problem.Names)), func(id int, _ int) (string, bool) {
		return problem.Names[id], problem.Domains[id] == model.Boolean
	})
	if len(binaries) > 0 {
		builder.WriteString("Binary\n")
		for _, line := range lo.Chunk(binaries, termsPerLine) {
			fmt.Fprintf(&builder, " %v\n", strings.Join(line, " "))
		}
	}

	builder.WriteString("End\n")
	return builder.String()
}

func (problem Problem) writeExpression(builder *strings.Builder, terms []model.Term) {
	if len(terms) == 0 {
		fmt.Fprintf(builder, "0 %v", problem.Names[0])
		return
	}

	for index, term := range terms {
		if index > 0 && index%termsPerLine == 0 {
			builder.WriteString("\n   ")
		}

		coeff := term.Coeff
		switch {
		case coeff < 0 && index == 0:
			builder.WriteString("- ")
			coeff = -coeff
		case coeff < 0:
			builder.WriteString(" - ")
			coeff = -coeff
		case index > 0:
			builder.WriteString(" + ")
		}
		if coeff != 1 {
			builder.WriteString(formatNumber(coeff))
			builder.WriteString(" ")
		}
		builder.WriteString(problem.Names[term.Var])
	}
}

func formatNumber(value float64) string {
	return strconv.FormatFloat(value, 'g', -1, 64)
}
