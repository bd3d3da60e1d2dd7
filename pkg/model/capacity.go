package model

import (
	"fmt"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// CheckCapacity rejects inputs that no timetable can satisfy because some lessons have
// nowhere to go. Passing it does not guarantee the model is feasible.
func CheckCapacity(modelInput ModelInput) error {
	//** Teachers must have enough available slots for their lessons
	for _, teacher := range modelInput.Teachers {
		lessons := lo.SumBy(modelInput.TeacherRequirements(teacher.Id), func(requirement uint64) uint64 {
			return modelInput.Requirements[requirement].NumLessons()
		})
		available := lo.SumBy(teacher.Availability, func(availabilities []Availability) uint64 {
			return uint64(lo.CountBy(availabilities, Availability.IsAvailable))
		})
		if lessons > available {
			return fmt.Errorf("%w: teacher \"%v\" has %d lessons but only %d available slots", ErrUnschedulable, teacher.Name, lessons, available)
		}
	}

	//** Every lesson of a class must be matched to its own slot
	for _, class := range modelInput.Classes {
		unmatched, err := unmatchedLessons(modelInput, class)
		if err != nil {
			return err
		}
		if unmatched > 0 {
			return fmt.Errorf("%w: %d lessons of class \"%v\" cannot be placed in slots where their teachers are available", ErrUnschedulable, unmatched, class.Name)
		}
	}

	return nil
}

func unmatchedLessons(modelInput ModelInput, class Class) (int, error) {
	// One node per lesson, labelled with its requirement
	lessons := lo.FlatMap(modelInput.ClassRequirements(class.Id), func(requirement uint64, _ int) []any {
		return lo.Times(int(modelInput.Requirements[requirement].NumLessons()), func(_ int) any { return requirement })
	})
	slots := lo.FilterMap(modelInput.Week.Slots(), func(slot TimeSlot, _ int) (any, bool) {
		return slot, slot.Hour < class.HoursPerDay[slot.Day]
	})

	neighbors := func(lessonAny any, slotAny any) (bool, error) {
		requirement := modelInput.Requirements[lessonAny.(uint64)]
		slot := slotAny.(TimeSlot)
		return modelInput.Teachers[requirement.Teacher].Availability[slot.Day][slot.Hour].IsAvailable(), nil
	}

	graph, err := bipartitegraph.NewBipartiteGraph(lessons, slots, neighbors)
	if err != nil {
		return 0, err
	}
	return len(lessons) - len(graph.LargestMatching()), nil
}
