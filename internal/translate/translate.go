// Package translate detects foreign-language chat and translates it through
// DeepL or Azure Translator.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/metrics"
)

const (
	FailureMessage = "Error translating :("

	// minAutoDistance keeps auto-translate quiet when the "translation" is
	// the original with a few letters changed (slang, names, typos).
	minAutoDistance = 6
)

type Service struct {
	provider Provider
	detector *Detector
}

func NewService(provider Provider, detector *Detector) *Service {
	return &Service{provider: provider, detector: detector}
}

// Translate formats a user-requested translation. Without an explicit source
// the reply names the detected language.
func (s *Service) Translate(ctx context.Context, text string, source *Language, target Language) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", apperrors.ValidationError("No text!")
	}

	res, err := s.provider.Translate(ctx, text, source, target)
	if err != nil {
		return "", apperrors.ExternalError("translation failed", err).WithField("target", target.Name)
	}
	return Format(res, source == nil), nil
}

func Format(res Result, autodetected bool) string {
	if autodetected && res.Detected != nil {
		return fmt.Sprintf("Translated from %s:\n%s", res.Detected.Name, res.Text)
	}
	return res.Text
}

// Auto translates a chat message to English when it is confidently foreign
// and the translation differs enough from the original. ok is false when
// nothing should be sent.
func (s *Service) Auto(ctx context.Context, text string) (reply string, ok bool) {
	lang, detected := s.detector.Detect(text)
	if !detected {
		return "", false
	}

	res, err := s.provider.Translate(ctx, text, &lang, English)
	if err != nil {
		metrics.AutoTranslations.WithLabelValues("error").Inc()
		slog.WarnContext(ctx, "Auto-translation failed", "language", lang.Name, "error", err)
		return "", false
	}

	if levenshtein.ComputeDistance(text, res.Text) < minAutoDistance {
		metrics.AutoTranslations.WithLabelValues("too_similar").Inc()
		slog.DebugContext(ctx, "Translation too close to original", "language", lang.Name)
		return "", false
	}

	metrics.AutoTranslations.WithLabelValues("sent").Inc()
	return res.Text, true
}

// Detect exposes the detector to the message classifier.
func (s *Service) Detect(text string) (Language, bool) {
	return s.detector.Detect(text)
}

// ParseDirection splits prefix arguments of the form "fr > de some text".
// Without an arrow the whole input is text to translate into English from an
// autodetected source.
func ParseDirection(args string) (text string, source *Language, target Language) {
	target = English
	fields := strings.Fields(args)
	if len(fields) < 3 || fields[1] != ">" {
		return strings.TrimSpace(args), nil, target
	}

	if l, ok := Lookup(fields[0]); ok {
		source = &l
	}
	rest := strings.TrimSpace(args)
	for range 2 {
		_, rest, _ = strings.Cut(rest, " ")
		rest = strings.TrimLeft(rest, " ")
	}

	dst, after, _ := strings.Cut(rest, " ")
	if l, ok := Lookup(dst); ok {
		target = l
	}
	return strings.TrimSpace(after), source, target
}
