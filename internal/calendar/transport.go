package calendar

import (
	"fmt"
	"time"
)

// Assignment is who drives on a given slot pair. Empty means nobody.
type Assignment struct {
	AM string `json:"am" yaml:"am"`
	PM string `json:"pm" yaml:"pm"`
}

// CarpoolMatrix is the weekly default. Only Monday through Friday carry
// meaning; weekend entries are ignored by Resolve.
type CarpoolMatrix map[time.Weekday]Assignment

// CarpoolMatrixFromNames converts a name-keyed mapping ("Mon", "monday", ...)
// into a CarpoolMatrix.
func CarpoolMatrixFromNames(named map[string]Assignment) (CarpoolMatrix, error) {
	matrix := make(CarpoolMatrix, len(named))
	for name, assignment := range named {
		weekday, ok := ParseWeekday(name)
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if !IsSchoolDay(weekday) {
			return nil, fmt.Errorf("carpool matrix has no weekend slots: %q", name)
		}
		matrix[weekday] = assignment
	}
	return matrix, nil
}

// Names returns the matrix keyed by three-letter weekday names.
func (matrix CarpoolMatrix) Names() map[string]Assignment {
	named := make(map[string]Assignment, len(matrix))
	for weekday, assignment := range matrix {
		named[weekday.String()[:3]] = assignment
	}
	return named
}

// Override is a per-date explicit assignment. A nil slot, or an empty one,
// falls back to the matrix for that slot only.
type Override struct {
	Date DateKey
	AM   *string
	PM   *string
}

func IsSchoolDay(weekday time.Weekday) bool {
	return weekday >= time.Monday && weekday <= time.Friday
}

// ResolveTransport picks the AM and PM person for date. A nil override means
// no row exists for the date. Weekends resolve to an empty assignment.
func ResolveTransport(date DateKey, override *Override, matrix CarpoolMatrix) Assignment {
	weekday := date.Weekday()
	if !IsSchoolDay(weekday) {
		return Assignment{}
	}

	fallback := matrix[weekday]
	resolved := fallback
	if override != nil {
		if override.AM != nil && *override.AM != "" {
			resolved.AM = *override.AM
		}
		if override.PM != nil && *override.PM != "" {
			resolved.PM = *override.PM
		}
	}
	return resolved
}
