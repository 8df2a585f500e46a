package locale

import "testing"

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "en", want: LanguageEnglish},
		{input: "en-US", want: LanguageEnglish},
		{input: "en-GB", want: LanguageEnglish},
		{input: "hi-IN", want: LanguageHindi},
		{input: "HI_in", want: LanguageHindi},
		{input: "mr", want: LanguageMarathi},
		{input: "fr", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeLanguage(tc.input); got != tc.want {
			t.Fatalf("NormalizeLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestLanguageFromAcceptLanguage(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{input: "hi-IN,hi;q=0.9,en;q=0.8", want: LanguageHindi},
		{input: "fr-FR,mr;q=0.9", want: LanguageMarathi},
		{input: "fr-FR,fr;q=0.9", want: ""},
		{input: "", want: ""},
	}

	for _, tc := range cases {
		if got := LanguageFromAcceptLanguage(tc.input); got != tc.want {
			t.Fatalf("LanguageFromAcceptLanguage(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestPreferenceForLanguage(t *testing.T) {
	pref := PreferenceForLanguage("mr-IN")
	if pref.Name != "Marathi" || pref.Code != "mr" {
		t.Fatalf("unexpected preference %+v", pref)
	}

	fallback := PreferenceForLanguage("de")
	if fallback.Tag != LanguageEnglish {
		t.Fatalf("expected fallback %q, got %q", LanguageEnglish, fallback.Tag)
	}
}

func TestPick(t *testing.T) {
	texts := map[string]string{
		LanguageEnglish: "english",
		LanguageHindi:   "hindi",
	}
	if got := Pick("hi-IN", texts); got != "hindi" {
		t.Fatalf("Pick(hi-IN) = %q, want %q", got, "hindi")
	}
	if got := Pick("mr-IN", texts); got != "english" {
		t.Fatalf("Pick(mr-IN) = %q, want %q", got, "english")
	}
}
