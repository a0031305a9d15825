package embeds

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc…", Truncate("abcdefgh", 4))

	long := strings.Repeat("é", 3000)
	got := Truncate(long, MaxContent)
	assert.Equal(t, MaxContent, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestField(t *testing.T) {
	assert.Nil(t, Field("Audios", "", false))

	f := Field("Poem", strings.Repeat("x", 2000), false)
	assert.Equal(t, MaxFieldValue, utf8.RuneCountInString(f.Value))
}

func TestAppendFields(t *testing.T) {
	e := &discordgo.MessageEmbed{}
	for range 30 {
		AppendFields(e, Field("n", "v", true), nil)
	}
	assert.Len(t, e.Fields, MaxFields)
}
