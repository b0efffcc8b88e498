package catalog

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// filterProjects returns the projects in category (or all) that match the
// search text. The result is a new slice; projects is not modified.
func filterProjects(projects []Project, category, search string) []Project {
	fold := cases.Fold()
	needle := fold.String(strings.TrimSpace(search))

	out := make([]Project, 0, len(projects))
	for _, p := range projects {
		if category != AllCategories && p.Category != category {
			continue
		}
		if needle != "" && !matchesSearch(p, needle, fold) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesSearch(p Project, needle string, fold cases.Caser) bool {
	if strings.Contains(fold.String(p.Title), needle) ||
		strings.Contains(fold.String(p.Description), needle) {
		return true
	}
	for _, tech := range p.Technologies {
		if strings.Contains(fold.String(tech), needle) {
			return true
		}
	}
	return false
}

// sortProjects orders projects in place. All orders are stable.
func sortProjects(projects []Project, order SortOrder, locale language.Tag) {
	switch order {
	case SortNewest:
		slices.SortStableFunc(projects, func(a, b Project) int {
			return b.CompletionDate.Compare(a.CompletionDate.Time)
		})
	case SortOldest:
		slices.SortStableFunc(projects, func(a, b Project) int {
			return a.CompletionDate.Compare(b.CompletionDate.Time)
		})
	case SortName:
		col := collate.New(locale)
		slices.SortStableFunc(projects, func(a, b Project) int {
			return col.CompareString(a.Title, b.Title)
		})
	}
}
