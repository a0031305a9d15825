package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMathMarkup(t *testing.T) {
	tests := []struct {
		in   string
		want MathMarkup
	}{
		{"latex", MarkupLatex},
		{"LaTeX", MarkupLatex},
		{"typst", MarkupTypst},
		{"Typst", MarkupTypst},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMathMarkup(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseMathMarkup("markdown")
	assert.Error(t, err)
}

func TestMathMarkupForms(t *testing.T) {
	assert.Equal(t, "Latex", MarkupLatex.String())
	assert.Equal(t, "Typst", MarkupTypst.String())
	assert.Equal(t, "latex", MarkupLatex.Key())
	assert.Equal(t, "typst", MarkupTypst.Key())
}

func TestUserName(t *testing.T) {
	assert.Equal(t, "Nick", User{Username: "nick_123", DisplayName: "Nick"}.Name())
	assert.Equal(t, "nick_123", User{Username: "nick_123"}.Name())
}
