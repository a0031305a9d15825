package mathrender

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pscheid92/nano/internal/domain"
)

const (
	TypstOpen  = "<."
	TypstClose = ".>"
)

var (
	dollarPattern = delimiterPattern("$", "$")
	anglePattern  = delimiterPattern(TypstOpen, TypstClose)
)

func delimiterPattern(open, close string) *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`(?s).*%s.*\S+.*%s.*`, regexp.QuoteMeta(open), regexp.QuoteMeta(close)))
}

// Delimiters returns the markers that denote Typst for a user with the given
// preference. LaTeX users keep `$` for other bots and write Typst as `<. .>`.
func Delimiters(pref domain.MathMarkup) (open, close string) {
	if pref == domain.MarkupTypst {
		return "$", "$"
	}
	return TypstOpen, TypstClose
}

// Extract reports whether content contains Typst math for this preference and
// returns it with the delimiters rewritten to `$`.
func Extract(content string, pref domain.MathMarkup) (string, bool) {
	open, close := Delimiters(pref)
	pattern := anglePattern
	if pref == domain.MarkupTypst {
		pattern = dollarPattern
	}
	if !pattern.MatchString(content) {
		return "", false
	}
	return strings.ReplaceAll(strings.ReplaceAll(content, open, "$"), close, "$"), true
}

// CodecogsURL links to a PNG of a LaTeX expression rendered by codecogs.
func CodecogsURL(latex string) string {
	src := `\dpi{300}{\color[rgb]{0.7,0.7,0.7}` + latex + `}`
	return "https://latex.codecogs.com/png.latex?" + strings.ReplaceAll(url.PathEscape(src), "%20", "&space;")
}
