package model

import (
	"fmt"
	"unicode"

	"github.com/samber/lo"
)

// Pedagogical weight of every lesson type
var LessonWeights = map[byte]float64{
	'A': 1, // Art
	'B': 4, // Foreign language other than English
	'C': 3, // Computer science
	'E': 4, // English
	'F': 2, // Philosophy
	'G': 5, // Greek
	'H': 2, // History
	'I': 3, // Italian
	'J': 0, // Physical education
	'L': 5, // Latin
	'M': 5, // Mathematics
	'O': 2, // Geography
	'P': 4, // Physics
	'R': 0, // Religion
	'S': 2, // Science
}

type Lesson struct {
	Code   byte
	Weight float64
}

// ParseLessons expands a run-length lesson string such as "4M2e" into M,M,M,M,E,E.
// A letter without a count stands for a single lesson.
func ParseLessons(lessons string) ([]Lesson, error) {
	result := make([]Lesson, 0, len(lessons))
	counter := 0
	for _, char := range lessons {
		switch {
		case char >= '0' && char <= '9':
			counter = 10*counter + int(char-'0')
		case unicode.IsLetter(char) && char < unicode.MaxASCII:
			code := byte(unicode.ToUpper(char))
			weight, ok := LessonWeights[code]
			if !ok {
				return nil, fmt.Errorf("%w: unknown lesson code %q in %q", ErrInvalidInput, char, lessons)
			}
			result = append(result, lo.Times(max(counter, 1), func(_ int) Lesson {
				return Lesson{Code: code, Weight: weight}
			})...)
			counter = 0
		case unicode.IsSpace(char):
		default:
			return nil, fmt.Errorf("%w: invalid character %q in lessons %q", ErrInvalidInput, char, lessons)
		}
	}

	if counter != 0 {
		return nil, fmt.Errorf("%w: lessons %q end with a dangling count", ErrInvalidInput, lessons)
	}
	return result, nil
}
