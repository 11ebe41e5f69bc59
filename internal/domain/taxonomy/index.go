// Package taxonomy derives the cascading location → activity → option choices from a flat
// list of entries. All functions are pure.
package taxonomy

import (
	"sort"

	"github.com/Overland-East-Bay/activity-signup-api/internal/domain"
)

// Locations returns the distinct locations across entries, sorted.
func Locations(entries []domain.TaxonomyEntry) []string {
	seen := make(map[string]struct{}, len(entries))
	out := make([]string, 0)
	for _, e := range entries {
		if _, ok := seen[e.Location]; ok {
			continue
		}
		seen[e.Location] = struct{}{}
		out = append(out, e.Location)
	}
	sort.Strings(out)
	return out
}

// ActivitiesFor returns the distinct non-null activities recorded under location, sorted.
func ActivitiesFor(entries []domain.TaxonomyEntry, location string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, e := range entries {
		if e.Location != location || e.Activity == nil {
			continue
		}
		if _, ok := seen[*e.Activity]; ok {
			continue
		}
		seen[*e.Activity] = struct{}{}
		out = append(out, *e.Activity)
	}
	sort.Strings(out)
	return out
}

// OptionsFor returns the non-null options recorded under (location, activity), sorted.
// Duplicates are kept: every option-bearing entry is listed.
func OptionsFor(entries []domain.TaxonomyEntry, location, activity string) []string {
	out := make([]string, 0)
	for _, e := range entries {
		if e.Location != location || e.Activity == nil || *e.Activity != activity || e.Option == nil {
			continue
		}
		out = append(out, *e.Option)
	}
	sort.Strings(out)
	return out
}

func contains(xs []string, v string) bool {
	i := sort.SearchStrings(xs, v)
	return i < len(xs) && xs[i] == v
}
