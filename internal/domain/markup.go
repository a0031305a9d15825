package domain

import (
	"fmt"
	"strings"
)

// MathMarkup selects how `$…$` in a user's messages is interpreted.
type MathMarkup int

const (
	// MarkupLatex leaves dollars to a LaTeX bot; Typst is reached via `<.` and `.>`.
	MarkupLatex MathMarkup = iota
	// MarkupTypst renders dollar-delimited math with Typst.
	MarkupTypst
)

func (m MathMarkup) String() string {
	if m == MarkupTypst {
		return "Typst"
	}
	return "Latex"
}

// Key is the lowercase form persisted in the store.
func (m MathMarkup) Key() string {
	if m == MarkupTypst {
		return "typst"
	}
	return "latex"
}

// ParseMathMarkup accepts the persisted or display form, case-insensitively.
func ParseMathMarkup(s string) (MathMarkup, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latex":
		return MarkupLatex, nil
	case "typst":
		return MarkupTypst, nil
	default:
		return MarkupLatex, fmt.Errorf("not a valid math markup: %q", s)
	}
}
