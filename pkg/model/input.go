package model

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

// MaxPenaltySum bounds the sum of a teacher's penalties over the available slots
const MaxPenaltySum = 50

type RawClass struct {
	Id          uint64   `validate:"min=1,max=4095"`
	Name        string   `validate:"required"`
	HoursPerDay []uint64 `validate:"required"`
}

// A negative penalty marks the slot as unavailable
type RawTeacher struct {
	Id        uint64    `validate:"min=1,max=4095"`
	Name      string    `validate:"required"`
	Penalties [][]int64 `validate:"required"`
}

type RawRequirement struct {
	Teacher         uint64 `validate:"min=1,max=4095"`
	Class           uint64 `validate:"min=1,max=4095"`
	Lessons         string `validate:"required"`
	ConsecutiveDays uint64
}

type RawModelInput struct {
	Week         []uint64         `validate:"omitempty,max=7,dive,min=1"`
	Classes      []RawClass       `validate:"dive"`
	Teachers     []RawTeacher     `validate:"dive"`
	Requirements []RawRequirement `validate:"dive"`
}

// Availability is either Available with a penalty or Unavailable
type Availability struct {
	available bool
	penalty   int64
}

func Available(penalty int64) Availability {
	return Availability{available: true, penalty: penalty}
}

func Unavailable() Availability {
	return Availability{}
}

func (availability Availability) IsAvailable() bool {
	return availability.available
}

// Penalty returns false when the slot is unavailable
func (availability Availability) Penalty() (int64, bool) {
	return availability.penalty, availability.available
}

type Class struct {
	Id          uint64
	Key         uint64
	Name        string
	HoursPerDay []uint64
}

type Teacher struct {
	Id            uint64
	Key           uint64
	Name          string
	Availability  [][]Availability // Read as Availability[day][hour]
	DaysAvailable uint64           // Days with at least one available hour
}

// Requirement is the weekly teaching contract between one teacher and one class
type Requirement struct {
	Id              uint64
	Teacher         uint64
	Class           uint64
	Lessons         []Lesson
	ConsecutiveDays uint64
	AllowExtraPairs bool
}

func (requirement Requirement) NumLessons() uint64 {
	return uint64(len(requirement.Lessons))
}

func (requirement Requirement) AverageWeight() float64 {
	if len(requirement.Lessons) == 0 {
		return 0
	}
	return lo.SumBy(requirement.Lessons, func(lesson Lesson) float64 { return lesson.Weight }) / float64(len(requirement.Lessons))
}

func (requirement Requirement) Key() [2]uint64 {
	return [2]uint64{requirement.Teacher, requirement.Class}
}

// ModelInput is validated and must not be modified once built
type ModelInput struct {
	Week         WeekShape
	Classes      []Class
	Teachers     []Teacher
	Requirements []Requirement
}

func (input ModelInput) TeacherRequirements(teacher uint64) []uint64 {
	return lo.FilterMap(input.Requirements, func(requirement Requirement, _ int) (uint64, bool) {
		return requirement.Id, requirement.Teacher == teacher
	})
}

func (input ModelInput) ClassRequirements(class uint64) []uint64 {
	return lo.FilterMap(input.Requirements, func(requirement Requirement, _ int) (uint64, bool) {
		return requirement.Id, requirement.Class == class
	})
}

func (input ModelInput) FindRequirement(teacher, class uint64) (Requirement, bool) {
	return lo.Find(input.Requirements, func(requirement Requirement) bool {
		return requirement.Teacher == teacher && requirement.Class == class
	})
}

func InputFromJson(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, err
	}
	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, err
	}

	var rawInput RawModelInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return ProcessRawInput(rawInput)
}

func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(rawInput); err != nil {
		return ModelInput{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	input := ModelInput{Week: DefaultWeek}
	if len(rawInput.Week) > 0 {
		input.Week = WeekShape{HoursPerDay: rawInput.Week}
	}
	if err := input.Week.Validate(); err != nil {
		return ModelInput{}, err
	}

	//** Manage classes
	classIndex := make(map[uint64]uint64)
	rawClasses := make(map[uint64]RawClass)
	for _, rawClass := range rawInput.Classes {
		// A repeated id is tolerated only when it repeats the same definition
		if other, ok := rawClasses[rawClass.Id]; ok {
			if !reflect.DeepEqual(other, rawClass) {
				return ModelInput{}, fmt.Errorf("%w: class id %d is defined twice (\"%v\" and \"%v\")", ErrInvalidInput, rawClass.Id, other.Name, rawClass.Name)
			}
			continue
		}
		if uint64(len(rawClass.HoursPerDay)) != input.Week.Days() {
			return ModelInput{}, fmt.Errorf("%w: class \"%v\" has %d daily hour counts, required %d", ErrInvalidInput, rawClass.Name, len(rawClass.HoursPerDay), input.Week.Days())
		}
		for day, hours := range rawClass.HoursPerDay {
			if hours > input.Week.Hours(uint64(day)) {
				return ModelInput{}, fmt.Errorf("%w: class \"%v\" has %d hours on day %d, which only has %d", ErrInvalidInput, rawClass.Name, hours, day, input.Week.Hours(uint64(day)))
			}
		}
		if lo.Sum(rawClass.HoursPerDay) == 0 {
			return ModelInput{}, fmt.Errorf("%w: class \"%v\" has 0 hours on every day", ErrInvalidInput, rawClass.Name)
		}

		rawClasses[rawClass.Id] = rawClass
		classIndex[rawClass.Id] = uint64(len(input.Classes))
		input.Classes = append(input.Classes, Class{
			Id:          uint64(len(input.Classes)),
			Key:         rawClass.Id,
			Name:        rawClass.Name,
			HoursPerDay: rawClass.HoursPerDay,
		})
	}

	//** Manage teachers
	teacherIndex := make(map[uint64]uint64)
	rawTeachers := make(map[uint64]RawTeacher)
	for _, rawTeacher := range rawInput.Teachers {
		if other, ok := rawTeachers[rawTeacher.Id]; ok {
			if !reflect.DeepEqual(other, rawTeacher) {
				return ModelInput{}, fmt.Errorf("%w: teacher id %d is defined twice (\"%v\" and \"%v\")", ErrInvalidInput, rawTeacher.Id, other.Name, rawTeacher.Name)
			}
			continue
		}
		teacher, err := buildTeacher(rawTeacher, input.Week, uint64(len(input.Teachers)))
		if err != nil {
			return ModelInput{}, err
		}

		rawTeachers[rawTeacher.Id] = rawTeacher
		teacherIndex[rawTeacher.Id] = teacher.Id
		input.Teachers = append(input.Teachers, teacher)
	}

	//** Manage requirements
	rawRequirements := make(map[[2]uint64]RawRequirement)
	for _, rawRequirement := range rawInput.Requirements {
		key := [2]uint64{rawRequirement.Teacher, rawRequirement.Class}
		if other, ok := rawRequirements[key]; ok {
			if other != rawRequirement {
				return ModelInput{}, fmt.Errorf("%w: requirement for teacher %d and class %d is defined twice", ErrInvalidInput, rawRequirement.Teacher, rawRequirement.Class)
			}
			continue
		}

		teacher, ok := teacherIndex[rawRequirement.Teacher]
		if !ok {
			return ModelInput{}, fmt.Errorf("%w: requirement for non-existing teacher id %d", ErrInvalidInput, rawRequirement.Teacher)
		}
		class, ok := classIndex[rawRequirement.Class]
		if !ok {
			return ModelInput{}, fmt.Errorf("%w: requirement for non-existing class id %d", ErrInvalidInput, rawRequirement.Class)
		}

		lessons, err := ParseLessons(rawRequirement.Lessons)
		if err != nil {
			return ModelInput{}, err
		}
		numLessons := uint64(len(lessons))
		if numLessons == 0 {
			return ModelInput{}, fmt.Errorf("%w: requirement for teacher %d and class %d has no lessons", ErrInvalidInput, rawRequirement.Teacher, rawRequirement.Class)
		}
		if rawRequirement.ConsecutiveDays > input.Week.Days() {
			return ModelInput{}, fmt.Errorf("%w: requirement with %d consecutive days in a week of %d days", ErrInvalidInput, rawRequirement.ConsecutiveDays, input.Week.Days())
		}
		if 2*rawRequirement.ConsecutiveDays > numLessons {
			return ModelInput{}, fmt.Errorf("%w: requirement with more consecutive days (%d) than lessons allow (%d)", ErrInvalidInput, rawRequirement.ConsecutiveDays, numLessons)
		}

		rawRequirements[key] = rawRequirement
		input.Requirements = append(input.Requirements, Requirement{
			Id:              uint64(len(input.Requirements)),
			Teacher:         teacher,
			Class:           class,
			Lessons:         lessons,
			ConsecutiveDays: rawRequirement.ConsecutiveDays,
			AllowExtraPairs: numLessons-rawRequirement.ConsecutiveDays > input.Teachers[teacher].DaysAvailable,
		})
	}

	//** Check class totals
	for _, class := range input.Classes {
		scheduled := lo.SumBy(input.ClassRequirements(class.Id), func(requirement uint64) uint64 {
			return input.Requirements[requirement].NumLessons()
		})
		if scheduled != lo.Sum(class.HoursPerDay) {
			return ModelInput{}, fmt.Errorf("%w: class \"%v\" has %d hours but its requirements add up to %d lessons", ErrInvalidInput, class.Name, lo.Sum(class.HoursPerDay), scheduled)
		}
	}

	return input, nil
}

func buildTeacher(rawTeacher RawTeacher, week WeekShape, id uint64) (Teacher, error) {
	if uint64(len(rawTeacher.Penalties)) != week.Days() {
		return Teacher{}, fmt.Errorf("%w: teacher \"%v\" has penalties for %d days, required %d", ErrInvalidInput, rawTeacher.Name, len(rawTeacher.Penalties), week.Days())
	}

	teacher := Teacher{
		Id:           id,
		Key:          rawTeacher.Id,
		Name:         rawTeacher.Name,
		Availability: make([][]Availability, week.Days()),
	}
	var sum int64
	for day, penalties := range rawTeacher.Penalties {
		if uint64(len(penalties)) != week.Hours(uint64(day)) {
			return Teacher{}, fmt.Errorf("%w: teacher \"%v\" has %d penalties on day %d, required %d", ErrInvalidInput, rawTeacher.Name, len(penalties), day, week.Hours(uint64(day)))
		}
		teacher.Availability[day] = lo.Map(penalties, func(penalty int64, _ int) Availability {
			if penalty < 0 {
				return Unavailable()
			}
			sum += penalty
			return Available(penalty)
		})
		if lo.SomeBy(teacher.Availability[day], Availability.IsAvailable) {
			teacher.DaysAvailable++
		}
	}
	if sum > MaxPenaltySum {
		return Teacher{}, fmt.Errorf("%w: teacher \"%v\" has a penalty sum of %d, the maximum is %d", ErrInvalidInput, rawTeacher.Name, sum, MaxPenaltySum)
	}

	return teacher, nil
}
