package usecase

import (
	"strings"

	"livetranslate/internal/domain"
	"livetranslate/internal/ports"
)

const (
	minActionConfidence      = 0.5
	speculativeConfidence    = 0.8
	speculativeMinWordsAbove = 5
)

// Class is the outcome of classifying one utterance.
type Class string

const (
	ClassIgnore           Class = "ignore"
	ClassNative           Class = "native"
	ClassForeign          Class = "foreign"
	ClassForeignCandidate Class = "foreign_candidate"
)

// Decision carries the class and the language the utterance was attributed to.
type Decision struct {
	Class      Class
	SourceLang string
}

type utteranceClassifier struct {
	detector ports.LanguageDetector
}

func newUtteranceClassifier(detector ports.LanguageDetector) utteranceClassifier {
	return utteranceClassifier{detector: detector}
}

// Classify never acts on anything at or below 0.5 confidence. Interim
// results only count in multi-participant mode, and only when they are
// confident and long enough to be worth a speculative translation.
func (c utteranceClassifier) Classify(u domain.Utterance, cfg domain.SessionConfig) Decision {
	if strings.TrimSpace(u.Text) == "" || u.Confidence <= minActionConfidence {
		return Decision{Class: ClassIgnore}
	}

	if !u.IsFinal {
		if !cfg.MultiParticipantMode {
			return Decision{Class: ClassIgnore}
		}
		if u.Confidence <= speculativeConfidence || u.WordCount() <= speculativeMinWordsAbove {
			return Decision{Class: ClassIgnore}
		}
		lang := c.detectedLanguage(u)
		if lang != "" && domain.SameLanguage(lang, cfg.UserLanguage) {
			return Decision{Class: ClassIgnore}
		}
		return Decision{Class: ClassForeignCandidate, SourceLang: lang}
	}

	lang := c.detectedLanguage(u)
	if lang == "" {
		lang = cfg.UserLanguage
	}
	if domain.SameLanguage(lang, cfg.UserLanguage) {
		return Decision{Class: ClassNative, SourceLang: domain.PrimarySubtag(lang)}
	}
	return Decision{Class: ClassForeign, SourceLang: domain.PrimarySubtag(lang)}
}

func (c utteranceClassifier) detectedLanguage(u domain.Utterance) string {
	if hint := domain.PrimarySubtag(u.LanguageHint); hint != "" {
		return hint
	}
	if c.detector == nil {
		return ""
	}
	if code, ok := c.detector.Detect(u.Text); ok {
		return domain.PrimarySubtag(code)
	}
	return ""
}
