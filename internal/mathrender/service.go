package mathrender

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pscheid92/nano/internal/domain"
	"github.com/pscheid92/nano/internal/embeds"
	apperrors "github.com/pscheid92/nano/internal/errors"
)

type Service struct {
	renderer *Renderer
	prefs    domain.PreferenceStore
}

func NewService(renderer *Renderer, prefs domain.PreferenceStore) *Service {
	return &Service{renderer: renderer, prefs: prefs}
}

// Markup returns the user's preference, falling back to LaTeX when the store
// is unavailable so chat keeps working.
func (s *Service) Markup(ctx context.Context, user domain.User) domain.MathMarkup {
	pref, err := s.prefs.MathMarkup(ctx, user.Username)
	if err != nil {
		slog.WarnContext(ctx, "Failed to read math markup preference", "username", user.Username, "error", err)
		return domain.MarkupLatex
	}
	return pref
}

// SetMarkup stores the preference and returns the confirmation reply.
func (s *Service) SetMarkup(ctx context.Context, user domain.User, pref domain.MathMarkup) string {
	if err := s.prefs.SetMathMarkup(ctx, user.Username, pref); err != nil {
		slog.ErrorContext(ctx, "Failed to store math markup preference", "username", user.Username, "error", err)
		return fmt.Sprintf("An error occurred! <-<\nError: %v", err)
	}
	return fmt.Sprintf("Success! Your preferred math markup is now %s.\nIf you want to disable TeXit's LaTeX rendering, do\nso with `,config latex_level CODEBLOCK.`", pref)
}

// Match extracts Typst source from a message written by author.
func (s *Service) Match(ctx context.Context, author domain.User, content string) (string, bool) {
	return Extract(content, s.Markup(ctx, author))
}

func (s *Service) Render(ctx context.Context, src string) ([]byte, error) {
	return s.renderer.Render(ctx, src)
}

// ErrorReply shows the source back to the author with the reason it failed.
// Local failures are not described beyond a generic note.
func ErrorReply(src string, err error) string {
	reason := err.Error()
	var srcErr *SourceError
	if !errors.As(err, &srcErr) && !errors.Is(err, ErrPageTooBig) && !errors.Is(err, ErrNoPage) && !errors.Is(err, ErrTimeout) {
		reason = apperrors.UserMessage(err, "Something went wrong while rendering.")
	}
	return embeds.Truncate(fmt.Sprintf("```\n%s\n```\n%s", src, reason), embeds.MaxContent)
}
