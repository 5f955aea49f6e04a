package views

import (
	"fmt"
	"strings"

	"github.com/hey-granth/StandardStitch/services/storefront/internal/domain"
)

type GenderFilter string

const (
	FilterAll    GenderFilter = "All"
	FilterMale   GenderFilter = "M"
	FilterFemale GenderFilter = "F"
)

// ParseGenderFilter accepts All, M or F; empty means All.
func ParseGenderFilter(s string) (GenderFilter, error) {
	switch f := GenderFilter(s); f {
	case "":
		return FilterAll, nil
	case FilterAll, FilterMale, FilterFemale:
		return f, nil
	default:
		return "", fmt.Errorf("unknown gender filter %q", s)
	}
}

// FilterByGender keeps the specs matching f. M and F also keep Unisex specs.
// The input is not modified.
func FilterByGender(specs []domain.UniformSpec, f GenderFilter) []domain.UniformSpec {
	out := make([]domain.UniformSpec, 0, len(specs))
	for _, s := range specs {
		if f == FilterAll || s.Gender == domain.Gender(f) || s.Gender == domain.GenderUnisex {
			out = append(out, s)
		}
	}
	return out
}

// FilterSchools matches query case-insensitively against name and city.
func FilterSchools(schools []domain.School, query string) []domain.School {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]domain.School, 0, len(schools))
	for _, s := range schools {
		if q == "" || strings.Contains(strings.ToLower(s.Name), q) || strings.Contains(strings.ToLower(s.City), q) {
			out = append(out, s)
		}
	}
	return out
}
