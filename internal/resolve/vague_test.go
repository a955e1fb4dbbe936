package resolve

import "testing"

func TestIsVague(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"диван", true},
		{"Диван", true},
		{"офисная мебель", true},
		{"нужен стол", true},
		{"диван для дома", false},
		{"серый угловой диван", false},
		{"привет", false},
		{"", false},
		{"  ", false},
	}

	for _, tt := range tests {
		if got := IsVague(tt.text); got != tt.want {
			t.Errorf("IsVague(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}

func TestApplyFilter(t *testing.T) {
	if got := ApplyFilter("диван", "home"); got != "диван для дома" {
		t.Errorf("home filter: got %q", got)
	}
	if got := ApplyFilter("диван", "office"); got != "диван для офиса" {
		t.Errorf("office filter: got %q", got)
	}
	if got := ApplyFilter("диван", "all"); got != "диван" {
		t.Errorf("'all' should leave query unchanged, got %q", got)
	}
	if got := ApplyFilter("диван", "bogus"); got != "диван" {
		t.Errorf("unknown filter should leave query unchanged, got %q", got)
	}
}

func TestClarifyOptionsStable(t *testing.T) {
	opts := ClarifyOptions()
	if len(opts) != 5 {
		t.Fatalf("expected 5 options, got %d", len(opts))
	}
	if opts[0].ID != "home" || opts[len(opts)-1].ID != "all" {
		t.Errorf("unexpected option order: %v", opts)
	}
	for _, o := range opts {
		if o.Label == "" {
			t.Errorf("option %s missing label", o.ID)
		}
	}
}
