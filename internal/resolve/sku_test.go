package resolve

import "testing"

func TestExtractSKUExactPattern(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"ДИВ-КЛА-001", "ДИВ-КЛА-001"},
		{"хочу купить КР-СТ-12345 со скидкой", "КР-СТ-12345"},
		{"див-кла-001", "ДИВ-КЛА-001"},
		{"SOFA-CL-99", "SOFA-CL-99"},
	}

	for _, tt := range tests {
		if got := ExtractSKU(tt.text); got != tt.want {
			t.Errorf("ExtractSKU(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractSKULabeledArticle(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Артикул: AB1234", "AB1234"},
		{"арт. X-99", "X-99"},
		{"SKU # ТБ500", "ТБ500"},
		{"код=7781", "7781"},
	}

	for _, tt := range tests {
		if got := ExtractSKU(tt.text); got != tt.want {
			t.Errorf("ExtractSKU(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestExtractSKUExactWinsOverLabel(t *testing.T) {
	got := ExtractSKU("Артикул: XYZ, также ДИВ-КЛА-001 в наличии")
	if got != "ДИВ-КЛА-001" {
		t.Errorf("exact pattern should win, got %q", got)
	}
}

func TestExtractSKUNothingFound(t *testing.T) {
	for _, text := range []string{
		"просто хочу диван",
		"Артикул: неизвестен",
		"",
	} {
		if got := ExtractSKU(text); got != "" {
			t.Errorf("ExtractSKU(%q) = %q, want empty", text, got)
		}
	}
}
