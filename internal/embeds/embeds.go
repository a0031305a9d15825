// Package embeds holds the Discord size limits and the helpers that keep
// formatted replies inside them.
package embeds

import (
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
)

const (
	MaxContent    = 2000
	MaxTitle      = 256
	MaxFieldName  = 256
	MaxFieldValue = 1024
	MaxFields     = 25
	MaxEmbeds     = 10
)

// Truncate cuts s to at most limit runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	if limit <= 1 {
		return string([]rune(s)[:limit])
	}
	return string([]rune(s)[:limit-1]) + "…"
}

// Field builds an embed field, or nil when value is empty (Discord rejects empty fields).
func Field(name, value string, inline bool) *discordgo.MessageEmbedField {
	if value == "" || name == "" {
		return nil
	}
	return &discordgo.MessageEmbedField{
		Name:   Truncate(name, MaxFieldName),
		Value:  Truncate(value, MaxFieldValue),
		Inline: inline,
	}
}

// AppendFields adds the non-nil fields to e, stopping at Discord's field cap.
func AppendFields(e *discordgo.MessageEmbed, fields ...*discordgo.MessageEmbedField) {
	for _, f := range fields {
		if f == nil || len(e.Fields) >= MaxFields {
			continue
		}
		e.Fields = append(e.Fields, f)
	}
}
