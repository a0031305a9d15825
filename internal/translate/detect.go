package translate

import (
	"regexp"
	"unicode"

	"github.com/pemistahl/lingua-go"
)

var (
	urlPattern   = regexp.MustCompile(`(?i)((https?|ftp|smtp)://)?(www.)?[a-z0-9]+\.[a-z]+(/[a-zA-Z0-9#?=]+/?)*`)
	emojiPattern = regexp.MustCompile(`(?i)<a?:\w+:\d+>`)
)

const (
	minDetectLength = 30
	maxNumericShare = 0.3
	englishMargin   = 5.0
	minRelativeDist = 0.1
)

// Detector flags chat messages that are confidently written in a supported
// language other than English.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector loads the language models. It is expensive; build one per process.
func NewDetector() *Detector {
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(linguaLanguages()...).
			WithMinimumRelativeDistance(minRelativeDist).
			Build(),
	}
}

// Filter strips URLs and custom emoji, which confuse detection.
func Filter(msg string) string {
	return emojiPattern.ReplaceAllString(urlPattern.ReplaceAllString(msg, ""), "")
}

// Detect returns the language of msg when it is clearly not English. Mostly
// numeric text (math) and short text are never reported.
func (d *Detector) Detect(msg string) (Language, bool) {
	filtered := Filter(msg)
	if len(filtered) <= minDetectLength || numericShare(filtered) >= maxNumericShare {
		return Language{}, false
	}

	var best lingua.ConfidenceValue
	var english float64
	values := d.detector.ComputeLanguageConfidenceValues(filtered)
	for i, v := range values {
		if i == 0 || v.Value() > best.Value() {
			best = v
		}
		if v.Language() == lingua.English {
			english = v.Value()
		}
	}
	if len(values) == 0 || best.Language() == lingua.English || english*englishMargin > best.Value() {
		return Language{}, false
	}
	return fromLingua(best.Language())
}

func numericShare(s string) float64 {
	var total, digits int
	for _, r := range s {
		total++
		if unicode.IsNumber(r) {
			digits++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(digits) / float64(total)
}
