package model

import (
	"fmt"
	"log"
	"slices"

	"github.com/samber/lo"
)

type Family uint8

const (
	// Teacher is physically present at the slot: teaches at some hour <= h and some hour >= h that day
	TeacherInSchool Family = iota
	// Teacher teaches something at the slot
	TeacherHasLesson
	// Requirement occupies the slot
	RequirementAtSlot
	// Requirement occupies both hour and hour+1; only for requirements with consecutive days
	RequirementConsecutiveFromHour
	// Total pedagogical weight of a class on a day
	DayWeightForClass
	// Pinned to the rank-th largest DayWeightForClass of the class
	DayWeightForClassSorted
	numFamilies
)

var familyNames = [numFamilies]string{
	"TeacherInSchool",
	"TeacherHasLesson",
	"RequirementAtSlot",
	"RequirementConsecutiveFromHour",
	"DayWeightForClass",
	"DayWeightForClassSorted",
}

func (family Family) String() string {
	if family >= numFamilies {
		return fmt.Sprintf("Family(%d)", uint8(family))
	}
	return familyNames[family]
}

func (family Family) Domain() Domain {
	if family == DayWeightForClass || family == DayWeightForClassSorted {
		return Continuous
	}
	return Boolean
}

// HasHour tells whether the family is addressed by a full slot or by a day only
func (family Family) HasHour() bool {
	return family != DayWeightForClass && family != DayWeightForClassSorted
}

func Families() []Family {
	return lo.Times(int(numFamilies), func(index int) Family { return Family(index) })
}

type Domain uint8

const (
	Boolean    Domain = iota // {0, 1}
	Continuous               // >= 0
)

func (domain Domain) String() string {
	if domain == Boolean {
		return "boolean"
	}
	return "continuous"
}

type Variable struct {
	Id     uint64
	Family Family
	Owner  uint64 // Teacher, requirement or class id depending on the family
	Day    uint64
	Hour   uint64 // Zero for day-only families
}

func (variable Variable) Domain() Domain {
	return variable.Family.Domain()
}

func (variable Variable) String() string {
	if variable.Family.HasHour() {
		return fmt.Sprintf("%v[%d,%d,%d]", variable.Family, variable.Owner, variable.Day, variable.Hour)
	}
	return fmt.Sprintf("%v[%d,%d]", variable.Family, variable.Owner, variable.Day)
}

// familyTable maps (owner, day, hour) to ids of a single family, whose ids are contiguous
type familyTable struct {
	base    uint64
	count   uint64
	owners  uint64
	stride  uint64            // Ids per owner
	widths  []uint64          // Ids per day
	offsets []uint64          // First position of every day inside an owner's block
	ranks   map[uint64]uint64 // Owner to block; nil when every owner in [0, owners) is present
}

func (table familyTable) id(owner, day, hour uint64) (uint64, bool) {
	if day >= uint64(len(table.widths)) || hour >= table.widths[day] {
		return 0, false
	}

	rank := owner
	if table.ranks != nil {
		var ok bool
		if rank, ok = table.ranks[owner]; !ok {
			return 0, false
		}
	} else if owner >= table.owners {
		return 0, false
	}
	return table.base + rank*table.stride + table.offsets[day] + hour, true
}

// Registry enumerates every variable of the model with dense ids in a fixed order:
// family, then owner, then day, then hour. It is immutable once built.
type Registry struct {
	week      WeekShape
	variables []Variable
	booleans  uint64
	tables    [numFamilies]familyTable
}

func NewRegistry(input ModelInput) (*Registry, error) {
	if (len(input.Teachers) == 0 && len(input.Classes) == 0 && len(input.Requirements) == 0) || input.Week.Days() == 0 {
		return nil, ErrEmptyDomain
	}
	if err := input.Week.Validate(); err != nil {
		return nil, err
	}

	registry := &Registry{week: input.Week}

	teachers := lo.Range(len(input.Teachers))
	requirements := lo.Range(len(input.Requirements))
	classes := lo.Range(len(input.Classes))
	consecutive := lo.FilterMap(input.Requirements, func(requirement Requirement, _ int) (int, bool) {
		return int(requirement.Id), requirement.ConsecutiveDays > 0
	})

	hours := input.Week.HoursPerDay
	pairs := lo.Map(hours, func(hours uint64, _ int) uint64 { return hours - 1 })
	days := lo.Times(len(hours), func(_ int) uint64 { return 1 })

	registry.variables = make([]Variable, 0, estimateVariables(input))
	registry.addFamily(TeacherInSchool, teachers, hours, false)
	registry.addFamily(TeacherHasLesson, teachers, hours, false)
	registry.addFamily(RequirementAtSlot, requirements, hours, false)
	registry.addFamily(RequirementConsecutiveFromHour, consecutive, pairs, true)
	registry.booleans = uint64(len(registry.variables))
	registry.addFamily(DayWeightForClass, classes, days, false)
	registry.addFamily(DayWeightForClassSorted, classes, days, false)

	return registry, nil
}

func (registry *Registry) addFamily(family Family, owners []int, widths []uint64, sparse bool) {
	table := familyTable{
		base:    uint64(len(registry.variables)),
		owners:  uint64(len(owners)),
		stride:  lo.Sum(widths),
		widths:  widths,
		offsets: make([]uint64, len(widths)),
	}
	for day := 1; day < len(widths); day++ {
		table.offsets[day] = table.offsets[day-1] + widths[day-1]
	}
	if sparse {
		table.ranks = make(map[uint64]uint64, len(owners))
	}

	for rank, owner := range owners {
		if sparse {
			table.ranks[uint64(owner)] = uint64(rank)
		}
		for day, width := range widths {
			for hour := range width {
				registry.variables = append(registry.variables, Variable{
					Id:     uint64(len(registry.variables)),
					Family: family,
					Owner:  uint64(owner),
					Day:    uint64(day),
					Hour:   hour,
				})
			}
		}
	}

	table.count = uint64(len(registry.variables)) - table.base
	registry.tables[family] = table
}

func estimateVariables(input ModelInput) uint64 {
	slots := input.Week.TotalHours()
	days := input.Week.Days()
	consecutive := uint64(lo.CountBy(input.Requirements, func(requirement Requirement) bool { return requirement.ConsecutiveDays > 0 }))
	return 2*uint64(len(input.Teachers))*slots +
		uint64(len(input.Requirements))*slots +
		consecutive*(slots-days) +
		2*uint64(len(input.Classes))*days
}

func (registry *Registry) Week() WeekShape {
	return registry.week
}

func (registry *Registry) NumVariables() uint64 {
	return uint64(len(registry.variables))
}

func (registry *Registry) NumBoolean() uint64 {
	return registry.booleans
}

func (registry *Registry) NumContinuous() uint64 {
	return registry.NumVariables() - registry.booleans
}

// Count returns the number of variables of a family
func (registry *Registry) Count(family Family) uint64 {
	if family >= numFamilies {
		return 0
	}
	return registry.tables[family].count
}

// FamilyIds returns the contiguous ids of a family in registry order
func (registry *Registry) FamilyIds(family Family) []uint64 {
	if family >= numFamilies {
		return nil
	}
	table := registry.tables[family]
	return lo.RangeFrom(table.base, int(table.count))
}

func (registry *Registry) Variable(id uint64) (Variable, error) {
	if id >= registry.NumVariables() {
		return Variable{}, fmt.Errorf("%w: %d, the registry holds %d variables", ErrVariableOutOfRange, id, registry.NumVariables())
	}
	return registry.variables[id], nil
}

func (registry *Registry) Variables() []Variable {
	return slices.Clone(registry.variables)
}

// Lookup resolves a (family, owner, day, hour) address; hour is ignored by day-only families
func (registry *Registry) Lookup(family Family, owner, day, hour uint64) (uint64, error) {
	if family >= numFamilies {
		return 0, fmt.Errorf("%w: %d", ErrUnknownFamily, family)
	}
	if !family.HasHour() {
		hour = 0
	}
	id, ok := registry.tables[family].id(owner, day, hour)
	if !ok {
		return 0, fmt.Errorf("%w: %v has no variable for owner %d, day %d, hour %d", ErrVariableOutOfRange, family, owner, day, hour)
	}
	return id, nil
}

// mustLookup is used where the address is known to be valid; a failure is a contract breach
func (registry *Registry) mustLookup(family Family, owner, day, hour uint64) uint64 {
	id, err := registry.Lookup(family, owner, day, hour)
	if err != nil {
		log.Panicf("registry lookup failed: %v", err)
	}
	return id
}

func (registry *Registry) TeacherInSchool(teacher, day, hour uint64) uint64 {
	return registry.mustLookup(TeacherInSchool, teacher, day, hour)
}

func (registry *Registry) TeacherHasLesson(teacher, day, hour uint64) uint64 {
	return registry.mustLookup(TeacherHasLesson, teacher, day, hour)
}

func (registry *Registry) RequirementAtSlot(requirement, day, hour uint64) uint64 {
	return registry.mustLookup(RequirementAtSlot, requirement, day, hour)
}

func (registry *Registry) RequirementConsecutiveFromHour(requirement, day, hour uint64) uint64 {
	return registry.mustLookup(RequirementConsecutiveFromHour, requirement, day, hour)
}

func (registry *Registry) DayWeightForClass(class, day uint64) uint64 {
	return registry.mustLookup(DayWeightForClass, class, day, 0)
}

func (registry *Registry) DayWeightForClassSorted(class, rank uint64) uint64 {
	return registry.mustLookup(DayWeightForClassSorted, class, rank, 0)
}

// HasConsecutive tells whether the requirement owns RequirementConsecutiveFromHour variables
func (registry *Registry) HasConsecutive(requirement uint64) bool {
	_, ok := registry.tables[RequirementConsecutiveFromHour].ranks[requirement]
	return ok
}
