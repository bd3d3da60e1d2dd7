package model

import (
	"fmt"
	"log"

	"github.com/samber/lo"
)

const (
	// MaxDays bounds the week length; the sorted-weight family enumerates every subset of days
	MaxDays = 7
	// MaxId is the exclusive upper bound of external entity ids
	MaxId = 4096
)

// DefaultWeek is the week used by text inputs that do not declare one: six days of six hours
var DefaultWeek = WeekShape{HoursPerDay: []uint64{6, 6, 6, 6, 6, 6}}

// TimeSlot addresses one teaching period of the week
type TimeSlot struct {
	Day  uint64
	Hour uint64
}

// WeekShape holds the number of hours of every day, which may differ between days
type WeekShape struct {
	HoursPerDay []uint64
}

func NewWeekShape(hoursPerDay ...uint64) (WeekShape, error) {
	week := WeekShape{HoursPerDay: append([]uint64(nil), hoursPerDay...)}
	if err := week.Validate(); err != nil {
		return WeekShape{}, err
	}
	return week, nil
}

func (week WeekShape) Validate() error {
	if len(week.HoursPerDay) == 0 || len(week.HoursPerDay) > MaxDays {
		return fmt.Errorf("%w: a week must have between 1 and %d days, got %d", ErrInvalidInput, MaxDays, len(week.HoursPerDay))
	}
	if _, day, ok := lo.FindIndexOf(week.HoursPerDay, func(hours uint64) bool { return hours == 0 }); ok {
		return fmt.Errorf("%w: day %d has zero hours", ErrInvalidInput, day)
	}
	return nil
}

func (week WeekShape) Days() uint64 {
	return uint64(len(week.HoursPerDay))
}

func (week WeekShape) Hours(day uint64) uint64 {
	if day >= week.Days() {
		log.Panicf("day %v is out of range for a week of %v days", day, week.Days())
	}
	return week.HoursPerDay[day]
}

// TotalHours is computed on demand from the shape
func (week WeekShape) TotalHours() uint64 {
	return lo.Sum(week.HoursPerDay)
}

// Slots returns every slot of the week ordered by day and then by hour
func (week WeekShape) Slots() []TimeSlot {
	slots := make([]TimeSlot, 0, week.TotalHours())
	for day, hours := range week.HoursPerDay {
		for hour := range hours {
			slots = append(slots, TimeSlot{Day: uint64(day), Hour: hour})
		}
	}
	return slots
}

func (week WeekShape) Contains(slot TimeSlot) bool {
	return slot.Day < week.Days() && slot.Hour < week.HoursPerDay[slot.Day]
}
