package model

import (
	"slices"

	"github.com/samber/lo"
)

const testInputsDirectory = "../../test/inputs/"

func fullWeekPenalties(week []uint64, penalty int64) [][]int64 {
	return lo.Map(week, func(hours uint64, _ int) []int64 {
		return lo.Times(int(hours), func(_ int) int64 { return penalty })
	})
}

// twoClassInput is a feasible instance: two classes sharing three teachers, each teacher
// holding one adjacent pair per class and day
func twoClassInput() RawModelInput {
	week := []uint64{6, 6, 6, 6, 6, 6}
	classHours := []uint64{6, 6, 6, 6, 6, 5}

	teacherA := fullWeekPenalties(week, 0)
	teacherA[0][2] = 2  // A idles here on Monday, between its two pairs
	teacherA[5][5] = -1 // Saturday's last hour is off

	return RawModelInput{
		Week: week,
		Classes: []RawClass{
			{Id: 1, Name: "1A", HoursPerDay: classHours},
			{Id: 2, Name: "1B", HoursPerDay: classHours},
		},
		Teachers: []RawTeacher{
			{Id: 1, Name: "A", Penalties: teacherA},
			{Id: 2, Name: "B", Penalties: fullWeekPenalties(week, 0)},
			{Id: 3, Name: "C", Penalties: fullWeekPenalties(week, 0)},
		},
		Requirements: []RawRequirement{
			{Teacher: 1, Class: 1, Lessons: "12M", ConsecutiveDays: 6},
			{Teacher: 2, Class: 1, Lessons: "6E6L"},
			{Teacher: 3, Class: 1, Lessons: "11H"},
			{Teacher: 2, Class: 2, Lessons: "12P"},
			{Teacher: 3, Class: 2, Lessons: "10S2a"},
			{Teacher: 1, Class: 2, Lessons: "11G", ConsecutiveDays: 5},
		},
	}
}

// twoClassPlacements lays out twoClassInput: in 1A teacher A takes hours 0-1, B 2-3 and C 4-5;
// in 1B B takes 0-1, C 2-3 and A 4-5. Saturday has no hour 5.
func twoClassPlacements() [][3]uint64 {
	hoursOf := map[uint64][]uint64{
		0: {0, 1}, 1: {2, 3}, 2: {4, 5},
		3: {0, 1}, 4: {2, 3}, 5: {4, 5},
	}
	placements := make([][3]uint64, 0)
	for requirement := range uint64(6) {
		for day := range uint64(6) {
			for _, hour := range hoursOf[requirement] {
				if day == 5 && hour == 5 {
					continue
				}
				placements = append(placements, [3]uint64{requirement, day, hour})
			}
		}
	}
	return placements
}

// assignmentFor derives the value of every variable from requirement placements
func assignmentFor(input ModelInput, registry *Registry, placements [][3]uint64) []float64 {
	values := make([]float64, registry.NumVariables())
	for _, placement := range placements {
		requirement := input.Requirements[placement[0]]
		values[registry.RequirementAtSlot(requirement.Id, placement[1], placement[2])] = 1
		values[registry.TeacherHasLesson(requirement.Teacher, placement[1], placement[2])] = 1
	}

	for _, teacher := range input.Teachers {
		for day, hours := range input.Week.HoursPerDay {
			day := uint64(day)
			taught := lo.Filter(lo.Range(int(hours)), func(hour int, _ int) bool {
				return values[registry.TeacherHasLesson(teacher.Id, day, uint64(hour))] == 1
			})
			if len(taught) == 0 {
				continue
			}
			for hour := taught[0]; hour <= taught[len(taught)-1]; hour++ {
				values[registry.TeacherInSchool(teacher.Id, day, uint64(hour))] = 1
			}
		}
	}

	for _, requirement := range input.Requirements {
		if !registry.HasConsecutive(requirement.Id) {
			continue
		}
		for day, hours := range input.Week.HoursPerDay {
			day := uint64(day)
			for hour := uint64(0); hour+1 < hours; hour++ {
				if values[registry.RequirementAtSlot(requirement.Id, day, hour)] == 1 &&
					values[registry.RequirementAtSlot(requirement.Id, day, hour+1)] == 1 {
					values[registry.RequirementConsecutiveFromHour(requirement.Id, day, hour)] = 1
				}
			}
		}
	}

	for _, class := range input.Classes {
		weights := make([]float64, input.Week.Days())
		for day := range weights {
			for _, requirement := range input.ClassRequirements(class.Id) {
				for hour := range input.Week.HoursPerDay[day] {
					weights[day] += input.Requirements[requirement].AverageWeight() * values[registry.RequirementAtSlot(requirement, uint64(day), hour)]
				}
			}
			values[registry.DayWeightForClass(class.Id, uint64(day))] = weights[day]
		}
		slices.Sort(weights)
		slices.Reverse(weights)
		for rank, weight := range weights {
			values[registry.DayWeightForClassSorted(class.Id, uint64(rank))] = weight
		}
	}

	return values
}
