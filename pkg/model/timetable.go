package model

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Placement is one lesson of a requirement at a slot
type Placement struct {
	Day         uint64
	Hour        uint64
	Class       uint64
	Teacher     uint64
	Requirement uint64
}

type Timetable []Placement

// DecodeTimetable reads the placements out of a solver's values, ordered by day, hour and class
func DecodeTimetable(modelInput ModelInput, registry *Registry, values []float64) (Timetable, error) {
	if uint64(len(values)) != registry.NumVariables() {
		return nil, fmt.Errorf("%w: got %d values for %d variables", ErrAssignmentSize, len(values), registry.NumVariables())
	}

	timetable := make(Timetable, 0)
	for _, requirement := range modelInput.Requirements {
		for _, slot := range modelInput.Week.Slots() {
			// Values come from a solver, so round rather than compare exactly
			if values[registry.RequirementAtSlot(requirement.Id, slot.Day, slot.Hour)] > 0.5 {
				timetable = append(timetable, Placement{
					Day:         slot.Day,
					Hour:        slot.Hour,
					Class:       requirement.Class,
					Teacher:     requirement.Teacher,
					Requirement: requirement.Id,
				})
			}
		}
	}

	slices.SortFunc(timetable, func(a, b Placement) int {
		return cmp.Or(cmp.Compare(a.Day, b.Day), cmp.Compare(a.Hour, b.Hour), cmp.Compare(a.Class, b.Class))
	})
	return timetable, nil
}

func (timetable Timetable) ByClass() map[uint64]Timetable {
	return lo.GroupBy(timetable, func(placement Placement) uint64 { return placement.Class })
}

// VerifyTimetable checks a timetable against the input directly, independently of the model
func VerifyTimetable(timetable Timetable, modelInput ModelInput) bool {
	week := modelInput.Week
	teacherBusy := make(map[[3]uint64]bool)
	classBusy := make(map[[3]uint64]bool)
	lessons := make(map[uint64]uint64)
	hoursOfDay := make(map[[2]uint64][]uint64)

	for _, placement := range timetable {
		slot := TimeSlot{Day: placement.Day, Hour: placement.Hour}
		if placement.Requirement >= uint64(len(modelInput.Requirements)) || !week.Contains(slot) {
			return false
		}
		requirement := modelInput.Requirements[placement.Requirement]
		teacherKey := [3]uint64{requirement.Teacher, slot.Day, slot.Hour}
		classKey := [3]uint64{requirement.Class, slot.Day, slot.Hour}

		// Check that:
		// - Placement agrees with its requirement
		// - Teacher is available and not already teaching at the slot
		// - Class is not already attending a lesson at the slot
		// - Slot lies within the class's hours of the day
		if placement.Teacher != requirement.Teacher || placement.Class != requirement.Class ||
			!modelInput.Teachers[requirement.Teacher].Availability[slot.Day][slot.Hour].IsAvailable() ||
			teacherBusy[teacherKey] ||
			classBusy[classKey] ||
			slot.Hour >= modelInput.Classes[requirement.Class].HoursPerDay[slot.Day] {
			return false
		}

		teacherBusy[teacherKey] = true
		classBusy[classKey] = true
		lessons[requirement.Id]++
		dayKey := [2]uint64{requirement.Id, slot.Day}
		hoursOfDay[dayKey] = append(hoursOfDay[dayKey], slot.Hour)
	}

	// Every requirement gets exactly its lessons
	if lo.SomeBy(modelInput.Requirements, func(requirement Requirement) bool {
		return lessons[requirement.Id] != requirement.NumLessons()
	}) {
		return false
	}

	// A requirement takes at most one adjacent pair of hours per day, and has its double periods
	doubles := make(map[uint64]uint64)
	for key, hours := range hoursOfDay {
		slices.Sort(hours)
		if len(hours) > 2 || (len(hours) == 2 && hours[1] != hours[0]+1) {
			return false
		}
		if len(hours) == 2 {
			doubles[key[0]]++
		}
	}
	return !lo.SomeBy(modelInput.Requirements, func(requirement Requirement) bool {
		return requirement.ConsecutiveDays > 0 && doubles[requirement.Id] != requirement.ConsecutiveDays
	})
}
