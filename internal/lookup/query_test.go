package lookup

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		wantKind Kind
		wantTerm string
	}{
		{"apple", KindLookup, "apple"},
		{"  Apple  ", KindLookup, "Apple"},
		{"don't", KindLookup, "don't"},
		{"don’t", KindLookup, "don’t"},
		{"well-known", KindLookup, "well-known"},
		{"Hello, world!", KindLookup, "Hello, world!"},
		{`"quoted" (aside); yes: no?`, KindLookup, `"quoted" (aside); yes: no?`},
		{"苹果", KindTranslate, "苹果"},
		{"apple 苹果", KindTranslate, "apple 苹果"},
		{"café", KindTranslate, "café"},
		{"route66", KindTranslate, "route66"},
		{"a/b", KindTranslate, "a/b"},
		{"", KindLookup, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := Normalize(tt.input)
			if got.Kind != tt.wantKind {
				t.Errorf("Normalize(%q).Kind = %v, want %v", tt.input, got.Kind, tt.wantKind)
			}
			if got.Term != tt.wantTerm {
				t.Errorf("Normalize(%q).Term = %q, want %q", tt.input, got.Term, tt.wantTerm)
			}
		})
	}
}

func TestNormalize_EveryNonEnglishRuneTranslates(t *testing.T) {
	for _, r := range []rune{'é', 'ß', 'Ж', 'の', '😀', '1', '@', '#', '_', '/', '[', '+'} {
		input := "word" + string(r)
		if got := Normalize(input).Kind; got != KindTranslate {
			t.Errorf("Normalize(%q).Kind = %v, want translate", input, got)
		}
	}
}

func TestStripToLetters(t *testing.T) {
	tests := map[string]string{
		"apple.":      "apple",
		"(health),":   "health",
		"don't":       "dont",
		"苹果apple":     "apple",
		"":            "",
		"123":         "",
		"Well-Known!": "WellKnown",
	}

	for input, want := range tests {
		if got := StripToLetters(input); got != want {
			t.Errorf("StripToLetters(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestKindString(t *testing.T) {
	if KindLookup.String() != "lookup" || KindTranslate.String() != "translate" {
		t.Errorf("unexpected kind strings %q %q", KindLookup, KindTranslate)
	}
}
