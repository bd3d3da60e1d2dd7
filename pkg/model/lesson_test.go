package model

import (
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestParseLessons(t *testing.T) {
	t.Run("Run-length strings", func(t *testing.T) {
		scenarios := []struct {
			lessons string
			codes   string
		}{
			{"4M2E", "MMMMEE"},
			{"m", "M"},
			{"2e 1j", "EEJ"},
			{"10S2a", "SSSSSSSSSSAA"},
			{"", ""},
		}

		for _, scenario := range scenarios {
			//** Act
			lessons, err := ParseLessons(scenario.lessons)

			//** Assert
			assert.Nil(t, err, scenario.lessons)
			assert.Equal(t, scenario.codes, string(lo.Map(lessons, func(lesson Lesson, _ int) byte { return lesson.Code })), scenario.lessons)
		}
	})

	t.Run("Weights", func(t *testing.T) {
		//** Arrange
		lessons, _ := ParseLessons("2M2J")
		requirement := Requirement{Lessons: lessons}

		//** Assert
		assert.Equal(t, 5.0, lessons[0].Weight)
		assert.Equal(t, 0.0, lessons[3].Weight)
		assert.Equal(t, uint64(4), requirement.NumLessons())
		assert.InDelta(t, 2.5, requirement.AverageWeight(), 1e-9)
		assert.Equal(t, 0.0, Requirement{}.AverageWeight())
	})

	t.Run("Malformed strings", func(t *testing.T) {
		for _, lessons := range []string{"4K", "3M-", "2M3", "ñ"} {
			_, err := ParseLessons(lessons)
			assert.True(t, errors.Is(err, ErrInvalidInput), lessons)
		}
	})
}
