package model

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const (
	weekSignal        = 'w'
	classSignal       = 'c'
	teacherSignal     = 't'
	requirementSignal = 'r'
)

func InputFromTextFile(file string) (ModelInput, error) {
	reader, err := os.Open(file)
	if err != nil {
		return ModelInput{}, err
	}
	defer reader.Close()
	return InputFromText(reader)
}

// InputFromText reads the line-based format:
//
//	w <hours day 0> ... <hours day D-1>             (optional, defaults to DefaultWeek)
//	c <id> <name> <hours day 0> ... <hours day D-1>
//	t <id> <name> <penalty for every slot, day by day; negative means unavailable>
//	r <teacher id> <class id> <lessons> [consecutive days]
//
// Blank lines and lines starting with '#' are ignored.
func InputFromText(reader io.Reader) (ModelInput, error) {
	rawInput, err := RawInputFromText(reader)
	if err != nil {
		return ModelInput{}, err
	}
	return ProcessRawInput(rawInput)
}

type textLine struct {
	number int
	fields []string
}

func RawInputFromText(reader io.Reader) (RawModelInput, error) {
	var rawInput RawModelInput
	lines := make([]textLine, 0)

	scanner := bufio.NewScanner(reader)
	for number := 1; scanner.Scan(); number++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		lines = append(lines, textLine{number: number, fields: strings.Fields(line)})
	}
	if err := scanner.Err(); err != nil {
		return RawModelInput{}, err
	}

	// The week must be known before teachers' penalties can be split into days
	week := DefaultWeek.HoursPerDay
	weekLines := lo.FilterMap(lines, func(line textLine, _ int) ([]string, bool) {
		return line.fields, line.fields[0] == string(weekSignal)
	})
	if len(weekLines) > 1 {
		return RawModelInput{}, fmt.Errorf("%w: the week is declared %d times", ErrInvalidInput, len(weekLines))
	} else if len(weekLines) == 1 {
		hours, err := parseUints(weekLines[0][1:])
		if err != nil {
			return RawModelInput{}, err
		}
		week = hours
		rawInput.Week = hours
	}

	for _, line := range lines {
		fields := line.fields
		var err error
		switch fields[0] {
		case string(weekSignal):
		case string(classSignal):
			err = parseClassLine(fields, &rawInput)
		case string(teacherSignal):
			err = parseTeacherLine(fields, week, &rawInput)
		case string(requirementSignal):
			err = parseRequirementLine(fields, &rawInput)
		default:
			err = fmt.Errorf("%w: unknown line signal %q", ErrInvalidInput, fields[0])
		}
		if err != nil {
			return RawModelInput{}, fmt.Errorf("line %d: %w", line.number, err)
		}
	}

	return rawInput, nil
}

func parseClassLine(fields []string, rawInput *RawModelInput) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: class line needs an id and a name", ErrInvalidInput)
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid class id %q", ErrInvalidInput, fields[1])
	}
	hours, err := parseUints(fields[3:])
	if err != nil {
		return err
	}
	rawInput.Classes = append(rawInput.Classes, RawClass{Id: id, Name: fields[2], HoursPerDay: hours})
	return nil
}

func parseTeacherLine(fields []string, week []uint64, rawInput *RawModelInput) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: teacher line needs an id and a name", ErrInvalidInput)
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("%w: invalid teacher id %q", ErrInvalidInput, fields[1])
	}

	values := fields[3:]
	if uint64(len(values)) != lo.Sum(week) {
		return fmt.Errorf("%w: teacher \"%v\" has %d penalties, required %d", ErrInvalidInput, fields[2], len(values), lo.Sum(week))
	}
	penalties := make([][]int64, len(week))
	for day, hours := range week {
		penalties[day] = make([]int64, hours)
		for hour := range hours {
			penalties[day][hour], err = strconv.ParseInt(values[0], 10, 64)
			if err != nil {
				return fmt.Errorf("%w: invalid penalty %q for teacher \"%v\"", ErrInvalidInput, values[0], fields[2])
			}
			values = values[1:]
		}
	}
	rawInput.Teachers = append(rawInput.Teachers, RawTeacher{Id: id, Name: fields[2], Penalties: penalties})
	return nil
}

func parseRequirementLine(fields []string, rawInput *RawModelInput) error {
	if len(fields) != 4 && len(fields) != 5 {
		return fmt.Errorf("%w: requirement line needs a teacher, a class, lessons and optionally consecutive days", ErrInvalidInput)
	}
	ids, err := parseUints(fields[1:3])
	if err != nil {
		return err
	}
	requirement := RawRequirement{Teacher: ids[0], Class: ids[1], Lessons: fields[3]}
	if len(fields) == 5 {
		if requirement.ConsecutiveDays, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
			return fmt.Errorf("%w: invalid consecutive days %q", ErrInvalidInput, fields[4])
		}
	}
	rawInput.Requirements = append(rawInput.Requirements, requirement)
	return nil
}

func parseUints(fields []string) ([]uint64, error) {
	values := make([]uint64, 0, len(fields))
	for _, field := range fields {
		value, err := strconv.ParseUint(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a non-negative integer", ErrInvalidInput, field)
		}
		values = append(values, value)
	}
	return values, nil
}
