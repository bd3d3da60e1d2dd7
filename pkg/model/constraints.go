package model

import (
	"fmt"

	"github.com/samber/lo"
)

type ConstraintKind uint8

const (
	KindAvailability    ConstraintKind = iota // In-school forced to 0 on unavailable slots
	KindLessonLinkage                         // Requirements of a teacher at a slot equal has-lesson
	KindInSchool                              // In-school bracketing between first and last lesson
	KindClassOverlap                          // A class attends exactly its scheduled hours
	KindQuota                                 // Weekly lessons of a requirement
	KindNoIsolatedHours                       // No two non-adjacent hours of a requirement on a day
	KindConsecutive                           // Double periods of a requirement
	KindDayWeight                             // Weight of a class on a day
	KindSortedWeight                          // Sorted day weights dominate every subset sum
	numKinds
)

var kindNames = [numKinds]string{
	"availability",
	"lesson-linkage",
	"in-school",
	"class-overlap",
	"quota",
	"no-isolated-hours",
	"consecutive",
	"day-weight",
	"sorted-weight",
}

func (kind ConstraintKind) String() string {
	if kind >= numKinds {
		return fmt.Sprintf("ConstraintKind(%d)", uint8(kind))
	}
	return kindNames[kind]
}

func ConstraintKinds() []ConstraintKind {
	return lo.Times(int(numKinds), func(index int) ConstraintKind { return ConstraintKind(index) })
}

// constraintState is shared read-only by every family; no family reads another family's output
type constraintState struct {
	input               ModelInput
	registry            *Registry
	subsets             *SubsetTable
	slots               []TimeSlot
	teacherRequirements [][]uint64
	classRequirements   [][]uint64
}

func newConstraintState(input ModelInput, registry *Registry) constraintState {
	return constraintState{
		input:    input,
		registry: registry,
		subsets:  Subsets(input.Week.Days()),
		slots:    input.Week.Slots(),
		teacherRequirements: lo.Map(input.Teachers, func(teacher Teacher, _ int) []uint64 {
			return input.TeacherRequirements(teacher.Id)
		}),
		classRequirements: lo.Map(input.Classes, func(class Class, _ int) []uint64 {
			return input.ClassRequirements(class.Id)
		}),
	}
}

type constraintFamily struct {
	kind     ConstraintKind
	generate func(state constraintState) []Constraint
}

// Families in the order their constraints appear in the model
var constraintFamilies = []constraintFamily{
	{KindAvailability, availabilityConstraints},
	{KindLessonLinkage, lessonLinkageConstraints},
	{KindInSchool, inSchoolConstraints},
	{KindClassOverlap, classOverlapConstraints},
	{KindQuota, quotaConstraints},
	{KindNoIsolatedHours, noIsolatedHoursConstraints},
	{KindConsecutive, consecutiveConstraints},
	{KindDayWeight, dayWeightConstraints},
	{KindSortedWeight, sortedWeightConstraints},
}

func buildObjective(state constraintState, direction Direction) Objective {
	days := state.input.Week.Days()
	objective := newExpression(int(state.registry.Count(TeacherInSchool) + state.registry.Count(DayWeightForClassSorted)))

	// Penalties of the slots teachers spend in school
	for _, teacher := range state.input.Teachers {
		for _, slot := range state.slots {
			if penalty, ok := teacher.Availability[slot.Day][slot.Hour].Penalty(); ok {
				objective.add(state.registry.TeacherInSchool(teacher.Id, slot.Day, slot.Hour), float64(penalty))
			}
		}
	}

	// Decreasing weight on the sorted day weights of every class
	for _, class := range state.input.Classes {
		for rank := range days {
			objective.add(state.registry.DayWeightForClassSorted(class.Id, rank), rankWeight(rank, days))
		}
	}

	return Objective{Direction: direction, Terms: objective.build()}
}

// rankWeight is max(1 - rank/(days-1), 0); a single-day week weighs its only rank fully
func rankWeight(rank, days uint64) float64 {
	if days <= 1 {
		return 1
	}
	return max(1-float64(rank)/float64(days-1), 0)
}

func availabilityConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0)

	for _, teacher := range state.input.Teachers {
		for _, slot := range state.slots {
			if teacher.Availability[slot.Day][slot.Hour].IsAvailable() {
				continue
			}
			// InSchool(t, d, h) <= 0
			constraints = append(constraints, newExpression(1).
				add(state.registry.TeacherInSchool(teacher.Id, slot.Day, slot.Hour), 1).
				constraint(KindAvailability, LessEqual, 0))
		}
	}

	return constraints
}

func lessonLinkageConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0, len(state.input.Teachers)*len(state.slots))

	for _, teacher := range state.input.Teachers {
		requirements := state.teacherRequirements[teacher.Id]
		for _, slot := range state.slots {
			// Sum(AtSlot(r, d, h) for r of t) - HasLesson(t, d, h) = 0
			expr := newExpression(len(requirements) + 1)
			for _, requirement := range requirements {
				expr.add(state.registry.RequirementAtSlot(requirement, slot.Day, slot.Hour), 1)
			}
			expr.add(state.registry.TeacherHasLesson(teacher.Id, slot.Day, slot.Hour), -1)
			constraints = append(constraints, expr.constraint(KindLessonLinkage, Equal, 0))
		}
	}

	return constraints
}

func inSchoolConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0)
	registry := state.registry

	for _, teacher := range state.input.Teachers {
		for day, hours := range state.input.Week.HoursPerDay {
			day := uint64(day)
			for hour := range hours {
				inSchool := registry.TeacherInSchool(teacher.Id, day, hour)

				// A lesson at or before hour and one at or after it put the teacher in school:
				// InSchool(t, d, h) - HasLesson(t, d, e) - HasLesson(t, d, l) >= -1
				for earlier := uint64(0); earlier <= hour; earlier++ {
					for later := hour; later < hours; later++ {
						constraints = append(constraints, newExpression(3).
							add(inSchool, 1).
							add(registry.TeacherHasLesson(teacher.Id, day, earlier), -1).
							add(registry.TeacherHasLesson(teacher.Id, day, later), -1).
							constraint(KindInSchool, GreaterEqual, -1))
					}
				}

				// Not in school without a lesson in [0, h]
				before := newExpression(int(hour) + 2).add(inSchool, 1)
				for earlier := uint64(0); earlier <= hour; earlier++ {
					before.add(registry.TeacherHasLesson(teacher.Id, day, earlier), -1)
				}
				constraints = append(constraints, before.constraint(KindInSchool, LessEqual, 0))

				// Not in school without a lesson in [h, hours)
				after := newExpression(int(hours-hour) + 1).add(inSchool, 1)
				for later := hour; later < hours; later++ {
					after.add(registry.TeacherHasLesson(teacher.Id, day, later), -1)
				}
				constraints = append(constraints, after.constraint(KindInSchool, LessEqual, 0))
			}
		}
	}

	return constraints
}

func classOverlapConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0, len(state.input.Classes)*len(state.slots))

	for _, class := range state.input.Classes {
		requirements := state.classRequirements[class.Id]
		for _, slot := range state.slots {
			// Sum(AtSlot(r, d, h) for r of c) = 1 inside the class's hours, 0 outside
			expr := newExpression(len(requirements))
			for _, requirement := range requirements {
				expr.add(state.registry.RequirementAtSlot(requirement, slot.Day, slot.Hour), 1)
			}
			rhs := 0.0
			if slot.Hour < class.HoursPerDay[slot.Day] {
				rhs = 1
			}
			constraints = append(constraints, expr.constraint(KindClassOverlap, Equal, rhs))
		}
	}

	return constraints
}

func quotaConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0, len(state.input.Requirements))

	for _, requirement := range state.input.Requirements {
		expr := newExpression(len(state.slots))
		for _, slot := range state.slots {
			expr.add(state.registry.RequirementAtSlot(requirement.Id, slot.Day, slot.Hour), 1)
		}
		constraints = append(constraints, expr.constraint(KindQuota, Equal, float64(requirement.NumLessons())))
	}

	return constraints
}

func noIsolatedHoursConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0)

	for _, requirement := range state.input.Requirements {
		for day, hours := range state.input.Week.HoursPerDay {
			day := uint64(day)
			for first := range hours {
				for second := first + 2; second < hours; second++ {
					// AtSlot(r, d, h1) + AtSlot(r, d, h2) <= 1 for non-adjacent h1, h2
					constraints = append(constraints, newExpression(2).
						add(state.registry.RequirementAtSlot(requirement.Id, day, first), 1).
						add(state.registry.RequirementAtSlot(requirement.Id, day, second), 1).
						constraint(KindNoIsolatedHours, LessEqual, 1))
				}
			}
		}
	}

	return constraints
}

func consecutiveConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0)
	registry := state.registry

	for _, requirement := range state.input.Requirements {
		if requirement.ConsecutiveDays == 0 {
			continue
		}

		// Sum(ConsecutiveFromHour(r, d, h)) = consecutive days
		total := newExpression(len(state.slots))
		for day, hours := range state.input.Week.HoursPerDay {
			for hour := uint64(0); hour+1 < hours; hour++ {
				total.add(registry.RequirementConsecutiveFromHour(requirement.Id, uint64(day), hour), 1)
			}
		}
		constraints = append(constraints, total.constraint(KindConsecutive, Equal, float64(requirement.ConsecutiveDays)))

		// ConsecutiveFromHour(r, d, h) = AtSlot(r, d, h) AND AtSlot(r, d, h+1)
		for day, hours := range state.input.Week.HoursPerDay {
			day := uint64(day)
			for hour := uint64(0); hour+1 < hours; hour++ {
				consecutive := registry.RequirementConsecutiveFromHour(requirement.Id, day, hour)
				current := registry.RequirementAtSlot(requirement.Id, day, hour)
				next := registry.RequirementAtSlot(requirement.Id, day, hour+1)

				constraints = append(constraints,
					newExpression(2).add(consecutive, 1).add(current, -1).constraint(KindConsecutive, LessEqual, 0),
					newExpression(2).add(consecutive, 1).add(next, -1).constraint(KindConsecutive, LessEqual, 0),
					newExpression(3).add(consecutive, 1).add(current, -1).add(next, -1).constraint(KindConsecutive, GreaterEqual, -1),
				)
			}
		}
	}

	return constraints
}

func dayWeightConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0, uint64(len(state.input.Classes))*state.input.Week.Days())

	for _, class := range state.input.Classes {
		requirements := state.classRequirements[class.Id]
		for day, hours := range state.input.Week.HoursPerDay {
			day := uint64(day)
			// DayWeight(c, d) - Sum(avg(r) * AtSlot(r, d, h)) = 0
			expr := newExpression(1 + int(hours)*len(requirements)).add(state.registry.DayWeightForClass(class.Id, day), 1)
			for hour := range hours {
				for _, requirement := range requirements {
					expr.add(state.registry.RequirementAtSlot(requirement, day, hour), -state.input.Requirements[requirement].AverageWeight())
				}
			}
			constraints = append(constraints, expr.constraint(KindDayWeight, Equal, 0))
		}
	}

	return constraints
}

func sortedWeightConstraints(state constraintState) []Constraint {
	constraints := make([]Constraint, 0)
	days := state.input.Week.Days()

	for _, class := range state.input.Classes {
		for rank := range days {
			// Sum(Sorted(c, j) for j <= k) - Sum(DayWeight(c, d) for d in S) >= 0 for every |S| = k+1
			for _, subset := range state.subsets.OfCardinality(rank + 1) {
				expr := newExpression(2 * int(rank+1))
				for sorted := uint64(0); sorted <= rank; sorted++ {
					expr.add(state.registry.DayWeightForClassSorted(class.Id, sorted), 1)
				}
				for _, day := range subset {
					expr.add(state.registry.DayWeightForClass(class.Id, day), -1)
				}
				constraints = append(constraints, expr.constraint(KindSortedWeight, GreaterEqual, 0))
			}
		}
	}

	return constraints
}

// estimateConstraints counts the constraints every family generates
func estimateConstraints(input ModelInput) uint64 {
	week := input.Week
	slots, days := week.TotalHours(), week.Days()
	teachers, classes, requirements := uint64(len(input.Teachers)), uint64(len(input.Classes)), uint64(len(input.Requirements))

	unavailable := lo.SumBy(input.Teachers, func(teacher Teacher) uint64 {
		return lo.SumBy(teacher.Availability, func(availabilities []Availability) uint64 {
			return uint64(lo.CountBy(availabilities, func(availability Availability) bool { return !availability.IsAvailable() }))
		})
	})
	inSchool := lo.SumBy(week.HoursPerDay, func(hours uint64) uint64 {
		perDay := 2 * hours
		for hour := range hours {
			perDay += (hour + 1) * (hours - hour)
		}
		return perDay
	})
	nonAdjacent := lo.SumBy(week.HoursPerDay, func(hours uint64) uint64 {
		return binomial(hours, 2) - (hours - 1)
	})
	consecutive := uint64(lo.CountBy(input.Requirements, func(requirement Requirement) bool { return requirement.ConsecutiveDays > 0 }))

	return unavailable +
		teachers*slots +
		teachers*inSchool +
		classes*slots +
		requirements +
		requirements*nonAdjacent +
		consecutive*(1+3*(slots-days)) +
		classes*days +
		classes*((uint64(1)<<days)-1)
}
