// Package resolve turns a user message into catalog candidates through a
// staged pipeline: vagueness gate, direct search, image analysis, and a
// recommendation fallback.
package resolve

import (
	"strings"
)

// Bare category words that need clarification before searching. A query
// is vague only when it is this short; "диван для дома" is specific
// enough to search as-is.
var vagueKeywords = []string{
	"стул", "стол", "кровать", "диван", "шкаф", "кресло",
	"тумба", "полка", "комод", "матрас", "мебель",
	"офисная", "домашняя",
}

// IsVague reports whether the query is a bare category mention: it
// contains a category keyword and is at most two words long.
func IsVague(text string) bool {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return false
	}
	if len(strings.Fields(lower)) > 2 {
		return false
	}
	for _, kw := range vagueKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FilterOption is one clarification choice offered for a vague query.
type FilterOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// Modifier returns the query text to append for a chosen filter, or ""
// for unknown filters (including "all", which searches unmodified).
func (f FilterOption) Modifier() string {
	return filterModifiers[f.ID]
}

var filterModifiers = map[string]string{
	"home":    "для дома",
	"office":  "для офиса",
	"budget":  "недорогой",
	"mid":     "средняя цена",
	"premium": "премиум",
}

// ClarifyOptions are the filters offered when a vague query needs
// narrowing before search.
func ClarifyOptions() []FilterOption {
	return []FilterOption{
		{ID: "home", Label: "Для дома"},
		{ID: "office", Label: "Для офиса"},
		{ID: "budget", Label: "Недорогие"},
		{ID: "premium", Label: "Премиум"},
		{ID: "all", Label: "Показать все"},
	}
}

// ApplyFilter narrows the stashed query with the chosen filter's modifier.
func ApplyFilter(query, filterID string) string {
	mod := filterModifiers[filterID]
	if mod == "" {
		return query
	}
	return query + " " + mod
}
