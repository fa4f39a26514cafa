// Package langdetect guesses the language of recognized text when the
// recognizer does not report one.
package langdetect

import (
	"strings"

	"github.com/abadojack/whatlanggo"

	"livetranslate/internal/domain"
)

const defaultMinConfidence = 0.2

// whatlangCodes maps primary subtags of supported languages to whatlanggo languages.
var whatlangCodes = map[string]whatlanggo.Lang{
	"en": whatlanggo.Eng,
	"es": whatlanggo.Spa,
	"fr": whatlanggo.Fra,
	"de": whatlanggo.Deu,
	"it": whatlanggo.Ita,
	"ja": whatlanggo.Jpn,
	"ko": whatlanggo.Kor,
	"zh": whatlanggo.Cmn,
}

// Detector wraps whatlanggo trigram detection, restricted to the supported
// languages so short phrases are not attributed to unrelated ones.
type Detector struct {
	// MinConfidence rejects guesses below it.
	MinConfidence float64
	// MinRunes skips texts too short to classify.
	MinRunes int

	options whatlanggo.Options
}

func New() *Detector {
	return &Detector{
		MinConfidence: defaultMinConfidence,
		MinRunes:      8,
		options:       whatlanggo.Options{Whitelist: supportedWhitelist()},
	}
}

func supportedWhitelist() map[whatlanggo.Lang]bool {
	whitelist := map[whatlanggo.Lang]bool{}
	for _, lang := range domain.SupportedLanguages {
		if code, ok := whatlangCodes[domain.PrimarySubtag(lang.Code)]; ok {
			whitelist[code] = true
		}
	}
	return whitelist
}

// Detect returns an ISO 639-1 code, or false when the guess is too weak.
func (d *Detector) Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" || len([]rune(text)) < d.MinRunes {
		return "", false
	}

	info := whatlanggo.DetectWithOptions(text, d.options)
	if info.Confidence < d.MinConfidence {
		return "", false
	}

	code := info.Lang.Iso6391()
	if _, supported := whatlangCodes[code]; !supported {
		return "", false
	}
	return code, true
}
