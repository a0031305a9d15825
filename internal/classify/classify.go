// Package classify decides what, if anything, a chat message asks of the bot.
package classify

import (
	"context"
	"regexp"
	"strings"

	"github.com/pscheid92/nano/internal/domain"
	"github.com/pscheid92/nano/internal/metrics"
	"github.com/pscheid92/nano/internal/translate"
)

type Kind int

const (
	Normal Kind = iota
	Ignore
	Thank
	GoodNano
	BadNano
	Math
	Command
	Translate
)

var kindNames = [...]string{"normal", "ignore", "thank", "good_nano", "bad_nano", "math", "command", "translate"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

const (
	GoodNanoGIF = "https://i.imgur.com/bgiANhm.gif"
	BadNanoGIF  = "https://c.tenor.com/8QjR5hC91b0AAAAC/nichijou-nano.gif"
)

var (
	thankPattern = regexp.MustCompile(`(?i)\b(thanks|thank|thanx|thx|tysm|ty)\b`)
	badPattern   = regexp.MustCompile(`(?i)bad\b`)
	goodPattern  = regexp.MustCompile(`(?i)(good|nice|awesome) (bot|job|work)`)
)

// Message is the part of a Discord message the classifier looks at.
type Message struct {
	Author      domain.User
	Content     string
	Mentions    []domain.User
	MentionsBot bool
}

type Result struct {
	Kind Kind
	// MathSource is set for Math.
	MathSource string
	// Language is set for Translate.
	Language translate.Language
}

type MathMatcher interface {
	Match(ctx context.Context, author domain.User, content string) (string, bool)
}

type LanguageDetector interface {
	Detect(text string) (translate.Language, bool)
}

type Classifier struct {
	prefix string
	math   MathMatcher
	lang   LanguageDetector
}

// New builds a classifier. lang may be nil to disable auto-translation.
func New(prefix string, math MathMatcher, lang LanguageDetector) *Classifier {
	return &Classifier{prefix: strings.ToLower(prefix), math: math, lang: lang}
}

// Classify checks, in order: bot authors, thanks, praise or scolding of the
// bot, math, prefix commands and finally foreign language.
func (c *Classifier) Classify(ctx context.Context, m Message) Result {
	res := c.classify(ctx, m)
	metrics.MessagesClassified.WithLabelValues(res.Kind.String()).Inc()
	return res
}

func (c *Classifier) classify(ctx context.Context, m Message) Result {
	if m.Author.Bot {
		return Result{Kind: Ignore}
	}

	if len(m.Mentions) > 0 {
		if thankPattern.MatchString(m.Content) {
			return Result{Kind: Thank}
		}
		if m.MentionsBot {
			if badPattern.MatchString(m.Content) {
				return Result{Kind: BadNano}
			}
			if goodPattern.MatchString(m.Content) {
				return Result{Kind: GoodNano}
			}
		}
	}

	if c.math != nil {
		if src, ok := c.math.Match(ctx, m.Author, m.Content); ok {
			return Result{Kind: Math, MathSource: src}
		}
	}

	if c.IsCommand(m.Content) {
		return Result{Kind: Command}
	}

	if c.lang != nil {
		if lang, ok := c.lang.Detect(m.Content); ok && lang.Code != translate.English.Code {
			return Result{Kind: Translate, Language: lang}
		}
	}

	return Result{Kind: Normal}
}

// IsCommand reports whether content starts with the command prefix.
func (c *Classifier) IsCommand(content string) bool {
	return c.prefix != "" && strings.HasPrefix(strings.ToLower(content), c.prefix)
}

// StripPrefix returns content after the command prefix.
func (c *Classifier) StripPrefix(content string) string {
	if !c.IsCommand(content) {
		return content
	}
	return strings.TrimSpace(content[len(c.prefix):])
}
