package model

import (
	"testing"

	"github.com/onsi/gomega"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildTwoClassModel(t *testing.T, direction Direction) (ModelInput, *Model) {
	input, registry := buildTwoClassRegistry(t)
	return input, NewModel(input, registry, direction)
}

func constraintsOfKind(model *Model, kind ConstraintKind) []Constraint {
	return lo.Filter(model.Constraints(), func(constraint Constraint, _ int) bool { return constraint.Kind == kind })
}

func termVars(terms []Term) []uint64 {
	return lo.Map(terms, func(term Term, _ int) uint64 { return term.Var })
}

func TestQuotaConstraints(t *testing.T) {
	//** Arrange
	input, err := ProcessRawInput(RawModelInput{
		Classes:      []RawClass{{Id: 1, Name: "1A", HoursPerDay: []uint64{1, 1, 1, 1, 0, 0}}},
		Teachers:     []RawTeacher{{Id: 1, Name: "Neri", Penalties: fullWeekPenalties(DefaultWeek.HoursPerDay, 0)}},
		Requirements: []RawRequirement{{Teacher: 1, Class: 1, Lessons: "4M"}},
	})
	require.Nil(t, err)
	registry, err := NewRegistry(input)
	require.Nil(t, err)

	//** Act
	quotas := quotaConstraints(newConstraintState(input, registry))

	//** Assert
	require.Len(t, quotas, 1)
	assert.Equal(t, Equal, quotas[0].Relation)
	assert.Equal(t, 4.0, quotas[0].Rhs)
	assert.ElementsMatch(t, registry.FamilyIds(RequirementAtSlot), termVars(quotas[0].Terms))
	assert.True(t, lo.EveryBy(quotas[0].Terms, func(term Term) bool { return term.Coeff == 1 }))
}

func TestNoIsolatedHoursConstraints(t *testing.T) {
	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)
	registry := model.Registry()

	//** Act
	constraints := constraintsOfKind(model, KindNoIsolatedHours)

	//** Assert
	// C(6, 2) - 5 pairs per day, for every requirement and day
	assert.Len(t, constraints, 10*6*len(input.Requirements))
	firstDay := lo.Filter(constraints[:10], func(constraint Constraint, _ int) bool {
		variable, _ := registry.Variable(constraint.Terms[0].Var)
		return variable.Owner == 0 && variable.Day == 0
	})
	assert.Len(t, firstDay, 10)
	for _, constraint := range constraints {
		first, _ := registry.Variable(constraint.Terms[0].Var)
		second, _ := registry.Variable(constraint.Terms[1].Var)
		assert.Equal(t, LessEqual, constraint.Relation)
		assert.Equal(t, 1.0, constraint.Rhs)
		assert.Equal(t, first.Day, second.Day)
		assert.GreaterOrEqual(t, second.Hour, first.Hour+2)
	}
}

func TestSortedWeightConstraints(t *testing.T) {
	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)
	registry := model.Registry()

	//** Act
	constraints := constraintsOfKind(model, KindSortedWeight)

	//** Assert
	// Every non-empty subset of six days, for every class
	assert.Len(t, constraints, 63*len(input.Classes))
	topThree := lo.Filter(constraints, func(constraint Constraint, _ int) bool { return len(constraint.Terms) == 6 })
	assert.Len(t, topThree, 20*len(input.Classes))
	for _, constraint := range topThree {
		ranks := lo.FilterMap(constraint.Terms, func(term Term, _ int) (uint64, bool) {
			variable, _ := registry.Variable(term.Var)
			return variable.Day, variable.Family == DayWeightForClassSorted
		})
		assert.Equal(t, []uint64{0, 1, 2}, ranks)
		assert.Equal(t, GreaterEqual, constraint.Relation)
		assert.Equal(t, 0.0, constraint.Rhs)
	}
}

func TestAvailabilityConstraints(t *testing.T) {
	//** Arrange
	_, model := buildTwoClassModel(t, Minimize)

	//** Act
	constraints := constraintsOfKind(model, KindAvailability)

	//** Assert
	require.Len(t, constraints, 1)
	assert.Equal(t, []Term{{Var: model.Registry().TeacherInSchool(0, 5, 5), Coeff: 1}}, constraints[0].Terms)
	assert.Equal(t, LessEqual, constraints[0].Relation)
	assert.Equal(t, 0.0, constraints[0].Rhs)
}

func TestLessonLinkageConstraints(t *testing.T) {
	g := gomega.NewWithT(t)

	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)
	registry := model.Registry()

	//** Act
	constraints := constraintsOfKind(model, KindLessonLinkage)

	//** Assert
	g.Expect(constraints).To(gomega.HaveLen(len(input.Teachers) * int(input.Week.TotalHours())))
	g.Expect(constraints[0].Terms).To(gomega.ConsistOf(
		Term{Var: registry.RequirementAtSlot(0, 0, 0), Coeff: 1},
		Term{Var: registry.RequirementAtSlot(5, 0, 0), Coeff: 1},
		Term{Var: registry.TeacherHasLesson(0, 0, 0), Coeff: -1},
	))
	g.Expect(constraints[0].Relation).To(gomega.Equal(Equal))
}

func TestLessonLinkageWithoutRequirements(t *testing.T) {
	//** Arrange
	input := ModelInput{Week: WeekShape{HoursPerDay: []uint64{2}}, Teachers: []Teacher{{Id: 0, Availability: [][]Availability{{Available(0), Available(0)}}}}}
	registry, err := NewRegistry(input)
	require.Nil(t, err)

	//** Act
	constraints := lessonLinkageConstraints(newConstraintState(input, registry))

	//** Assert
	// HasLesson is pinned to 0
	require.Len(t, constraints, 2)
	assert.Equal(t, []Term{{Var: registry.TeacherHasLesson(0, 0, 1), Coeff: -1}}, constraints[1].Terms)
	assert.Equal(t, 0.0, constraints[1].Rhs)
}

func TestInSchoolConstraints(t *testing.T) {
	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)
	registry := model.Registry()

	//** Act
	constraints := constraintsOfKind(model, KindInSchool)

	//** Assert
	// 2 bounds per hour plus (h+1)(6-h) bracketing pairs per hour of a 6-hour day
	assert.Len(t, constraints, 68*6*len(input.Teachers))
	bracket := constraints[0]
	assert.Equal(t, GreaterEqual, bracket.Relation)
	assert.Equal(t, -1.0, bracket.Rhs)
	// earlier == later == hour merges into a coefficient of -2
	assert.ElementsMatch(t, []Term{
		{Var: registry.TeacherInSchool(0, 0, 0), Coeff: 1},
		{Var: registry.TeacherHasLesson(0, 0, 0), Coeff: -2},
	}, bracket.Terms)

	// Last hour of the first day: bracketing pairs, then the two upper bounds
	before, after := constraints[66], constraints[67]
	assert.Equal(t, LessEqual, before.Relation)
	assert.Len(t, before.Terms, 7)
	assert.Equal(t, LessEqual, after.Relation)
	assert.ElementsMatch(t, []Term{
		{Var: registry.TeacherInSchool(0, 0, 5), Coeff: 1},
		{Var: registry.TeacherHasLesson(0, 0, 5), Coeff: -1},
	}, after.Terms)
}

func TestClassOverlapConstraints(t *testing.T) {
	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)

	//** Act
	constraints := constraintsOfKind(model, KindClassOverlap)

	//** Assert
	assert.Len(t, constraints, len(input.Classes)*int(input.Week.TotalHours()))
	// Saturday's last hour lies outside both classes' hours
	assert.Equal(t, 0.0, constraints[35].Rhs)
	assert.Equal(t, 1.0, constraints[34].Rhs)
	assert.Len(t, constraints[0].Terms, 3)
	assert.Equal(t, 2, lo.CountBy(constraints, func(constraint Constraint) bool { return constraint.Rhs == 0 }))
}

func TestConsecutiveConstraints(t *testing.T) {
	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)
	registry := model.Registry()

	//** Act
	constraints := constraintsOfKind(model, KindConsecutive)

	//** Assert
	// One total per requirement with pairs, three linkage rows per pair
	assert.Len(t, constraints, 2*(1+3*30))
	total := constraints[0]
	assert.Equal(t, Equal, total.Relation)
	assert.Equal(t, 6.0, total.Rhs)
	assert.ElementsMatch(t, lo.Filter(registry.FamilyIds(RequirementConsecutiveFromHour), func(id uint64, _ int) bool {
		variable, _ := registry.Variable(id)
		return variable.Owner == 0
	}), termVars(total.Terms))
	assert.Equal(t, float64(input.Requirements[5].ConsecutiveDays), constraints[91].Rhs)

	consecutive := registry.RequirementConsecutiveFromHour(0, 0, 0)
	current, next := registry.RequirementAtSlot(0, 0, 0), registry.RequirementAtSlot(0, 0, 1)
	assert.Equal(t, []Term{{consecutive, 1}, {current, -1}}, constraints[1].Terms)
	assert.Equal(t, []Term{{consecutive, 1}, {next, -1}}, constraints[2].Terms)
	assert.Equal(t, []Term{{consecutive, 1}, {current, -1}, {next, -1}}, constraints[3].Terms)
	assert.Equal(t, -1.0, constraints[3].Rhs)
}

func TestDayWeightConstraints(t *testing.T) {
	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)
	registry := model.Registry()

	//** Act
	constraints := constraintsOfKind(model, KindDayWeight)

	//** Assert
	assert.Len(t, constraints, len(input.Classes)*6)
	first := constraints[0]
	assert.Equal(t, Term{Var: registry.DayWeightForClass(0, 0), Coeff: 1}, first.Terms[0])
	// Three requirements over six hours
	assert.Len(t, first.Terms, 1+18)
	assert.Contains(t, first.Terms, Term{Var: registry.RequirementAtSlot(0, 0, 3), Coeff: -5})
	assert.Contains(t, first.Terms, Term{Var: registry.RequirementAtSlot(1, 0, 0), Coeff: -4.5})
}

func TestObjective(t *testing.T) {
	t.Run("Penalties and rank weights", func(t *testing.T) {
		//** Arrange
		_, model := buildTwoClassModel(t, Minimize)
		registry := model.Registry()

		//** Act
		objective := model.Objective()

		//** Assert
		assert.Equal(t, Minimize, objective.Direction)
		// Zero penalties and the last rank weigh nothing
		assert.Len(t, objective.Terms, 1+2*5)
		assert.Equal(t, Term{Var: registry.TeacherInSchool(0, 0, 2), Coeff: 2}, objective.Terms[0])
		assert.Contains(t, objective.Terms, Term{Var: registry.DayWeightForClassSorted(1, 0), Coeff: 1})
		second, ok := lo.Find(objective.Terms, func(term Term) bool { return term.Var == registry.DayWeightForClassSorted(1, 1) })
		assert.True(t, ok)
		assert.InDelta(t, 0.8, second.Coeff, 1e-9)
		assert.NotContains(t, lo.Map(objective.Terms, func(term Term, _ int) uint64 { return term.Var }), registry.DayWeightForClassSorted(1, 5))
	})

	t.Run("Rank weights", func(t *testing.T) {
		assert.Equal(t, 1.0, rankWeight(0, 1))
		assert.Equal(t, 1.0, rankWeight(0, 6))
		assert.InDelta(t, 0.4, rankWeight(3, 6), 1e-9)
		assert.Equal(t, 0.0, rankWeight(5, 6))
		assert.Equal(t, 0.0, rankWeight(7, 6))
	})

	t.Run("Objective is copied", func(t *testing.T) {
		//** Arrange
		_, model := buildTwoClassModel(t, Maximize)

		//** Act
		objective := model.Objective()
		objective.Terms[0].Coeff = 100

		//** Assert
		assert.Equal(t, Maximize, model.Direction())
		assert.Equal(t, 2.0, model.Objective().Terms[0].Coeff)
	})
}

func TestExpression(t *testing.T) {
	t.Run("Merges repeated ids", func(t *testing.T) {
		//** Act
		terms := newExpression(0).add(3, 1).add(5, 2).add(3, 1).build()

		//** Assert
		assert.Equal(t, []Term{{3, 2}, {5, 2}}, terms)
	})

	t.Run("Drops cancelled terms", func(t *testing.T) {
		//** Act
		terms := newExpression(0).add(3, 1).add(5, 0).add(3, -1).add(7, 1).build()

		//** Assert
		assert.Equal(t, []Term{{7, 1}}, terms)
	})

	t.Run("Long expressions", func(t *testing.T) {
		//** Arrange
		expr := newExpression(0)
		for id := range uint64(20) {
			expr.add(id%10, 1)
		}

		//** Act
		terms := expr.build()

		//** Assert
		assert.Len(t, terms, 10)
		assert.True(t, lo.EveryBy(terms, func(term Term) bool { return term.Coeff == 2 }))
		assert.Equal(t, lo.RangeFrom(uint64(0), 10), termVars(terms))
	})
}

func TestConstraintOrder(t *testing.T) {
	//** Arrange
	input, model := buildTwoClassModel(t, Minimize)

	//** Act
	constraints := model.Constraints()
	counts := model.CountByKind()

	//** Assert
	assert.Equal(t, int(estimateConstraints(input)), model.NumConstraints())
	assert.True(t, lo.IsSortedByKey(constraints, func(constraint Constraint) ConstraintKind { return constraint.Kind }))
	assert.Len(t, counts, len(ConstraintKinds()))
	assert.Equal(t, model.NumConstraints(), lo.Sum(lo.Values(counts)))
	for _, constraint := range constraints {
		// Within one constraint an id never repeats
		assert.Len(t, lo.Uniq(termVars(constraint.Terms)), len(constraint.Terms))
	}
	assert.Equal(t, "sorted-weight", KindSortedWeight.String())
	assert.Equal(t, "ConstraintKind(12)", ConstraintKind(12).String())
}
