package domain

import "testing"

func TestPrimarySubtag(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"en-US": "en",
		"es_ES": "es",
		" FR ":  "fr",
		"zh-CN": "zh",
		"":      "",
		"multi": "multi",
	}
	for input, want := range cases {
		if got := PrimarySubtag(input); got != want {
			t.Fatalf("PrimarySubtag(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestSameLanguage(t *testing.T) {
	t.Parallel()

	if !SameLanguage("en-US", "en") || !SameLanguage("es-ES", "ES-mx") {
		t.Fatalf("expected region variants to match")
	}
	if SameLanguage("en-US", "es-ES") || SameLanguage("", "") {
		t.Fatalf("expected mismatch")
	}
}

func TestLanguageLookupAndNames(t *testing.T) {
	t.Parallel()

	if lang, ok := LookupLanguage("ja-jp"); !ok || lang.Code != "ja-JP" {
		t.Fatalf("expected case-insensitive lookup, got %+v %v", lang, ok)
	}
	if _, ok := LookupLanguage("es"); ok {
		t.Fatalf("expected bare subtag not to be a supported code")
	}
	if got := LanguageName("es"); got != "Spanish" {
		t.Fatalf("expected Spanish, got %q", got)
	}
	if got := LanguageName("pt-BR"); got != "pt-BR" {
		t.Fatalf("expected code fallback, got %q", got)
	}
}

func TestUtteranceWordCountAndConfig(t *testing.T) {
	t.Parallel()

	words := map[string]int{
		"  one two   three ": 3,
		"don't stop, please": 3,
		"¿cómo estás?":       2,
		"我们明天见":              5,
		"今日は いい天気":           7,
		"안녕하세요 반갑습니다":        2,
		" - ":                0,
	}
	for text, want := range words {
		if got := (Utterance{Text: text}).WordCount(); got != want {
			t.Fatalf("WordCount(%q) = %d, want %d", text, got, want)
		}
	}

	base := SessionConfig{UserLanguage: "en-US"}
	next := base.WithUserLanguage("es-ES").WithEnabled(true).WithMultiParticipant(true).WithMicPermission(PermissionGranted)
	if base.UserLanguage != "en-US" || base.Enabled {
		t.Fatalf("expected original config unchanged: %+v", base)
	}
	if next.UserLanguage != "es-ES" || !next.Enabled || !next.MultiParticipantMode || next.MicPermission != PermissionGranted {
		t.Fatalf("unexpected derived config: %+v", next)
	}
	if v := DefaultVoice("fr-FR"); v.Rate != 1 || v.Pitch != 1 || v.Volume != 1 || v.Language != "fr-FR" {
		t.Fatalf("unexpected default voice: %+v", v)
	}
}
