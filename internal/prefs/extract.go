// Package prefs infers and persists long-lived user preferences from
// conversation text.
package prefs

import (
	"strings"

	"github.com/zetalabs/convo/internal/domain"
)

// Keyword vocabularies matched as substrings against the lowercased
// message. Material entries are stems so declined forms match too
// ("деревянный", "кожаный").
var (
	colorTerms = []string{
		"белый", "черный", "чёрный", "серый", "коричневый",
		"синий", "красный", "зеленый", "зелёный", "желтый", "жёлтый",
		"бежевый",
	}

	materialStems = []string{
		"дерев", "металл", "метал", "пластик", "кожа", "кожан",
		"ткан", "стекл",
	}

	budgetLowTerms  = []string{"дешев", "дешёв", "недорог", "бюджет", "эконом"}
	budgetHighTerms = []string{"дорог", "премиум", "элитн", "люкс"}
)

// Extract scans message text for preference signals and returns a partial
// record containing only what was found.
func Extract(text string) domain.PreferenceRecord {
	lower := strings.ToLower(text)

	var partial domain.PreferenceRecord
	for _, c := range colorTerms {
		if strings.Contains(lower, c) {
			partial.Colors = appendUnique(partial.Colors, normalizeColor(c))
		}
	}
	for _, m := range materialStems {
		if strings.Contains(lower, m) {
			partial.Materials = appendUnique(partial.Materials, normalizeMaterial(m))
		}
	}

	if containsAny(lower, budgetLowTerms) {
		partial.BudgetTier = domain.BudgetLow
	} else if containsAny(lower, budgetHighTerms) {
		partial.BudgetTier = domain.BudgetHigh
	}

	return partial
}

func appendUnique(list []string, v string) []string {
	for _, existing := range list {
		if existing == v {
			return list
		}
	}
	return append(list, v)
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

// normalizeColor collapses ё-spellings so "чёрный" and "черный" dedupe.
func normalizeColor(c string) string {
	return strings.ReplaceAll(c, "ё", "е")
}

// normalizeMaterial maps a matched stem to its canonical term.
var canonicalMaterials = map[string]string{
	"дерев":   "дерево",
	"металл":  "металл",
	"метал":   "металл",
	"пластик": "пластик",
	"кожа":    "кожа",
	"кожан":   "кожа",
	"ткан":    "ткань",
	"стекл":   "стекло",
}

func normalizeMaterial(stem string) string {
	if c, ok := canonicalMaterials[stem]; ok {
		return c
	}
	return stem
}
