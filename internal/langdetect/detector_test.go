package langdetect

import "testing"

func TestDetectSkipsShortText(t *testing.T) {
	t.Parallel()

	d := New()
	if _, ok := d.Detect("hola"); ok {
		t.Fatalf("expected short text to be skipped")
	}
	if _, ok := d.Detect("   "); ok {
		t.Fatalf("expected blank text to be skipped")
	}
}

func TestDetectLongSentences(t *testing.T) {
	t.Parallel()

	d := New()
	cases := []struct {
		text string
		want string
	}{
		{text: "Buenos días, ¿cómo estás? Me gustaría saber dónde está la estación de tren más cercana.", want: "es"},
		{text: "Good morning, how are you? I would like to know where the nearest train station is.", want: "en"},
		{text: "Bonjour, comment allez-vous? Je voudrais savoir où se trouve la gare la plus proche.", want: "fr"},
	}
	for _, tc := range cases {
		got, ok := d.Detect(tc.text)
		if !ok {
			t.Fatalf("expected detection for %q", tc.text)
		}
		if got != tc.want {
			t.Fatalf("Detect(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestDetectShortConversationalPhrases(t *testing.T) {
	t.Parallel()

	d := New()
	cases := map[string]string{
		"Hola amigo, ¿cómo estás?": "es",
		"bonjour tout le monde":    "fr",
		"こんにちは、元気ですか":              "ja",
	}
	for text, want := range cases {
		got, ok := d.Detect(text)
		if !ok || got != want {
			t.Fatalf("Detect(%q) = %q %v, want %q", text, got, ok, want)
		}
	}
}

func TestDetectStaysWithinSupportedLanguages(t *testing.T) {
	t.Parallel()

	d := New()
	// Portuguese is not offered, so it must map onto a supported language or nothing.
	got, ok := d.Detect("Obrigado pela ajuda, até amanhã meu amigo.")
	if ok {
		if _, supported := whatlangCodes[got]; !supported {
			t.Fatalf("expected a supported language, got %q", got)
		}
	}
}

func TestDetectHonorsMinConfidence(t *testing.T) {
	t.Parallel()

	d := New()
	d.MinConfidence = 1.01
	if _, ok := d.Detect("Good morning, how are you? I would like to know where the station is."); ok {
		t.Fatalf("expected detection below confidence floor to be rejected")
	}
}
