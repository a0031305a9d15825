package bot

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pscheid92/nano/internal/domain"
	"github.com/pscheid92/nano/internal/mathrender"
)

// Source tells handlers how a command was invoked.
type Source string

const (
	SourceSlash       Source = "slash"
	SourcePrefix      Source = "prefix"
	SourceContextMenu Source = "context_menu"
)

// Args holds option values by name. Prefix invocations only ever carry the
// command's rest option, as a string.
type Args struct {
	values map[string]any
	// Target is the message a context menu command was used on.
	Target *discordgo.Message
}

func (a *Args) set(name string, v any) {
	if a.values == nil {
		a.values = make(map[string]any)
	}
	a.values[name] = v
}

func (a Args) String(name string) string {
	s, _ := a.values[name].(string)
	return s
}

// Int returns def when the option is missing or not a number.
func (a Args) Int(name string, def int64) int64 {
	switch v := a.values[name].(type) {
	case int64:
		return v
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			return n
		}
	}
	return def
}

func (a Args) User(name string) (domain.User, bool) {
	u, ok := a.values[name].(domain.User)
	return u, ok
}

type Request struct {
	Command   string
	Source    Source
	User      domain.User
	GuildID   string
	ChannelID string
	Args      Args
}

type Reply struct {
	Content   string
	Embeds    []*discordgo.MessageEmbed
	Files     []*discordgo.File
	Ephemeral bool
}

func Text(content string) *Reply {
	return &Reply{Content: content}
}

func Embeds(embeds ...*discordgo.MessageEmbed) *Reply {
	return &Reply{Embeds: embeds}
}

func Image(png []byte) *Reply {
	return &Reply{Files: []*discordgo.File{pngFile(png)}}
}

func pngFile(png []byte) *discordgo.File {
	return &discordgo.File{Name: mathrender.Filename, ContentType: "image/png", Reader: bytes.NewReader(png)}
}

// noMentions keeps replies from pinging anyone, whatever they echo.
func noMentions() *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}}
}

func (r *Reply) messageSend(reference *discordgo.MessageReference) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Content:         r.Content,
		Embeds:          r.Embeds,
		Files:           r.Files,
		AllowedMentions: noMentions(),
		Reference:       reference,
	}
}

func (r *Reply) interactionData() *discordgo.InteractionResponseData {
	data := &discordgo.InteractionResponseData{
		Content:         r.Content,
		Embeds:          r.Embeds,
		Files:           r.Files,
		AllowedMentions: noMentions(),
	}
	if r.Ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return data
}

func (r *Reply) webhookEdit() *discordgo.WebhookEdit {
	content := r.Content
	edit := &discordgo.WebhookEdit{
		Content:         &content,
		Files:           r.Files,
		AllowedMentions: noMentions(),
	}
	if len(r.Embeds) > 0 {
		edit.Embeds = &r.Embeds
	}
	return edit
}
