package domain

import (
	"sort"
	"strings"
)

// AllOption is the selector value that disables a cuisine or difficulty filter.
const AllOption = "all"

// VegetarianMode is the tri-state vegetarian selector.
type VegetarianMode string

const (
	VegetarianAny     VegetarianMode = "any"
	VegetarianOnly    VegetarianMode = "only"
	VegetarianExclude VegetarianMode = "exclude"
)

// ParseVegetarianMode maps user input to a mode. Unknown values mean any.
func ParseVegetarianMode(s string) VegetarianMode {
	switch VegetarianMode(strings.ToLower(strings.TrimSpace(s))) {
	case VegetarianOnly:
		return VegetarianOnly
	case VegetarianExclude:
		return VegetarianExclude
	}
	return VegetarianAny
}

// FilterCriteria narrows a recipe list. Empty Cuisine and Difficulty behave
// like AllOption.
type FilterCriteria struct {
	Query       string
	Cuisine     string
	Difficulty  string
	MaxPrepTime *int
	Vegetarian  VegetarianMode
}

// DefaultFilterCriteria returns criteria that match every recipe.
func DefaultFilterCriteria() FilterCriteria {
	return FilterCriteria{Cuisine: AllOption, Difficulty: AllOption, Vegetarian: VegetarianAny}
}

// vegetarianMarker is matched against the category; recipes carry no
// explicit dietary flag.
const vegetarianMarker = "veget"

// FilterRecipes returns the recipes matching c, in input order. The input
// slice is not modified. The query is lower-cased but not trimmed, so
// surrounding whitespace is part of the substring match.
func FilterRecipes(recipes []Recipe, c FilterCriteria) []Recipe {
	q := strings.ToLower(c.Query)
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if c.matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func (c FilterCriteria) matches(r Recipe, q string) bool {
	if q != "" &&
		!strings.Contains(strings.ToLower(r.Title), q) &&
		!strings.Contains(strings.ToLower(r.Category), q) &&
		!strings.Contains(strings.ToLower(r.Area), q) {
		return false
	}
	if c.Cuisine != "" && c.Cuisine != AllOption && r.Area != c.Cuisine {
		return false
	}
	if c.Difficulty != "" && c.Difficulty != AllOption && string(r.Difficulty) != c.Difficulty {
		return false
	}
	if c.MaxPrepTime != nil && r.CookingTime != nil && *r.CookingTime > *c.MaxPrepTime {
		return false
	}
	switch c.Vegetarian {
	case VegetarianOnly:
		return isVegetarian(r)
	case VegetarianExclude:
		return !isVegetarian(r)
	}
	return true
}

func isVegetarian(r Recipe) bool {
	return strings.Contains(strings.ToLower(r.Category), vegetarianMarker)
}

// Cuisines returns the distinct non-empty areas of recipes, sorted.
func Cuisines(recipes []Recipe) []string {
	seen := make(map[string]struct{}, len(recipes))
	out := make([]string, 0)
	for _, r := range recipes {
		if r.Area == "" {
			continue
		}
		if _, ok := seen[r.Area]; ok {
			continue
		}
		seen[r.Area] = struct{}{}
		out = append(out, r.Area)
	}
	sort.Strings(out)
	return out
}
