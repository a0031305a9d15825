// Package dictionary fetches English definitions from dictionaryapi.dev.
package dictionary

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/bwmarrin/discordgo"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/embeds"
	"github.com/pscheid92/nano/internal/httpapi"
)

const (
	defaultAPIURL = "https://api.dictionaryapi.dev/api/v2/entries/en"

	FailureMessage = "Could not find definition"
)

type Entry struct {
	Word       string     `json:"word"`
	Phonetic   string     `json:"phonetic"`
	Phonetics  []Phonetic `json:"phonetics"`
	Meanings   []Meaning  `json:"meanings"`
	SourceURLs []string   `json:"sourceUrls"`
}

type Phonetic struct {
	Text  string `json:"text"`
	Audio string `json:"audio"`
}

type Meaning struct {
	PartOfSpeech string       `json:"partOfSpeech"`
	Definitions  []Definition `json:"definitions"`
}

type Definition struct {
	Definition string `json:"definition"`
	Example    string `json:"example"`
}

type Service struct {
	client *httpapi.Client
	APIURL string
}

func NewService(client *httpapi.Client) *Service {
	return &Service{client: client, APIURL: defaultAPIURL}
}

func (s *Service) Lookup(ctx context.Context, word string) ([]Entry, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return nil, apperrors.ValidationError(FailureMessage)
	}

	var entries []Entry
	err := s.client.GetJSON(ctx, s.APIURL+"/"+url.PathEscape(word), nil, &entries)
	if httpapi.IsNotFound(err) {
		return nil, apperrors.NotFoundError(FailureMessage).WithField("word", word)
	}
	if err != nil {
		return nil, apperrors.ExternalError("dictionary lookup failed", err).WithField("word", word)
	}
	if len(entries) == 0 {
		return nil, apperrors.NotFoundError(FailureMessage).WithField("word", word)
	}
	return entries, nil
}

// Define looks word up and renders one embed per entry.
func (s *Service) Define(ctx context.Context, word string) ([]*discordgo.MessageEmbed, error) {
	entries, err := s.Lookup(ctx, word)
	if err != nil {
		return nil, err
	}
	out := make([]*discordgo.MessageEmbed, 0, len(entries))
	for _, e := range entries {
		if len(out) == embeds.MaxEmbeds {
			break
		}
		out = append(out, Embed(e))
	}
	return out, nil
}

func Embed(e Entry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       embeds.Truncate(e.Word, embeds.MaxTitle),
		Description: e.Phonetic,
	}
	if len(e.SourceURLs) > 0 {
		embed.URL = e.SourceURLs[0]
	}

	texts := make([]string, 0, len(e.Phonetics))
	audios := make([]string, 0, len(e.Phonetics))
	for _, p := range e.Phonetics {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
		if p.Audio != "" {
			audios = append(audios, p.Audio)
		}
	}
	if len(texts) > 0 {
		embeds.AppendFields(embed, embeds.Field("Pronunciations", "`"+strings.Join(texts, ", ")+"`", false))
	}
	embeds.AppendFields(embed, embeds.Field("Audios", strings.Join(audios, "\n"), false))

	for _, m := range e.Meanings {
		var b strings.Builder
		for i, d := range m.Definitions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, d.Definition)
			if d.Example != "" {
				fmt.Fprintf(&b, "*\"%s\"*\n", d.Example)
			}
		}
		embeds.AppendFields(embed, embeds.Field("*"+m.PartOfSpeech+"*", b.String(), false))
	}

	return embed
}
