// Package prompt builds the instructions sent to text generation models.
package prompt

import (
	"fmt"
	"strings"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

// Translation asks for a bare translation of req.Text into req.TargetLang.
func Translation(req ports.TranslationRequest) string {
	var b strings.Builder
	b.WriteString("Translate the following ")
	if req.SourceLang != "" {
		b.WriteString(domain.LanguageName(req.SourceLang))
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "speech to %s. Reply with the translation only", domain.LanguageName(req.TargetLang))
	if req.PreserveFormatting {
		b.WriteString(", keeping punctuation and line breaks")
	}
	b.WriteString(": ")
	b.WriteString(strings.TrimSpace(req.Text))
	return b.String()
}

// Song asks for a title and artist, or close guesses, for a lyric snippet.
func Song(lyrics string) string {
	return "Given these lyrics, identify the song title and artist. " +
		"If you can't identify with certainty, provide your best guess of similar songs. Lyrics: " +
		strings.TrimSpace(lyrics)
}
