package resolve

import (
	"regexp"
	"strings"
)

// Russian product codes look like ДИВ-КЛА-001 or КР-СТ-12345. OCR output
// also often carries a labeled article line ("Артикул: ...").
var (
	skuPattern     = regexp.MustCompile(`(?i)[А-ЯA-Z]{2,5}-[А-ЯA-Z]{2,5}-\d{2,6}`)
	labeledPattern = regexp.MustCompile(`(?i)(?:артикул|арт\.?|SKU|код)\s*[:=#]?\s*([А-ЯA-Z0-9-]+)`)
	hasDigit       = regexp.MustCompile(`\d`)
)

// ExtractSKU pulls a product article out of free text. The exact code
// shape wins; a labeled article is accepted when it carries a dash or a
// digit. Returns "" when nothing SKU-like is present.
func ExtractSKU(text string) string {
	if m := skuPattern.FindString(text); m != "" {
		return strings.ToUpper(m)
	}

	if m := labeledPattern.FindStringSubmatch(text); len(m) > 1 {
		candidate := strings.TrimSpace(m[1])
		if strings.Contains(candidate, "-") || hasDigit.MatchString(candidate) {
			return strings.ToUpper(candidate)
		}
	}

	return ""
}
