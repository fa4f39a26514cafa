package usecase

import (
	"log/slog"
	"strings"

	"livetranslate/internal/ports"
)

// transcriptNormalizer runs recognized text through the user's correction
// rules. A failing rule set leaves the text untouched.
type transcriptNormalizer struct {
	rules  ports.TranscriptRules
	logger *slog.Logger
}

func newTranscriptNormalizer(rules ports.TranscriptRules, logger *slog.Logger) transcriptNormalizer {
	return transcriptNormalizer{rules: rules, logger: logger}
}

func (n transcriptNormalizer) Normalize(text string, language string) string {
	text = strings.TrimSpace(text)
	if n.rules == nil || text == "" {
		return text
	}
	transformed, err := n.rules.Apply(text, language)
	if err != nil {
		n.logger.Warn("transcript rules failed", "err", err)
		return text
	}
	if transformed = strings.TrimSpace(transformed); transformed == "" {
		return text
	}
	return transformed
}
