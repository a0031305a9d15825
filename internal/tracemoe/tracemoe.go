// Package tracemoe finds the anime a screenshot or GIF came from.
package tracemoe

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"regexp"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/pscheid92/nano/internal/embeds"
	"github.com/pscheid92/nano/internal/httpapi"
)

const (
	defaultAPIURL = "https://api.trace.moe/search"
	siteURL       = "https://trace.moe/?url="

	ResultTitle   = "Anime Source Results"
	NoImagesReply = "No images found, sorry!"
)

var imageURLPattern = regexp.MustCompile(`(https://tenor\.com/view/[A-Za-z0-9/-]+)|(https?://(?:[a-z0-9\-]+\.)+[a-z]{2,6}(?:/[^/#?\s]+)+\.(?:jpe?g|gif|png))`)

// ImageURLs returns every tenor link and direct image link in content, in order.
func ImageURLs(content string) []string {
	return imageURLPattern.FindAllString(content, -1)
}

type Title struct {
	Native  string `json:"native"`
	Romaji  string `json:"romaji"`
	English string `json:"english"`
}

type Match struct {
	Anilist struct {
		ID    int   `json:"id"`
		Title Title `json:"title"`
	} `json:"anilist"`
	Filename   string  `json:"filename"`
	Episode    any     `json:"episode"`
	From       float64 `json:"from"`
	To         float64 `json:"to"`
	Similarity float64 `json:"similarity"`
}

type searchResponse struct {
	Error  string  `json:"error"`
	Result []Match `json:"result"`
}

type Service struct {
	client *httpapi.Client
	APIURL string
}

func NewService(client *httpapi.Client) *Service {
	return &Service{client: client, APIURL: defaultAPIURL}
}

// BestMatch asks trace.moe for the most similar scene.
func (s *Service) BestMatch(ctx context.Context, imageURL string) (*Match, error) {
	var resp searchResponse
	query := url.Values{"anilistInfo": {""}, "url": {imageURL}}
	if err := s.client.GetJSON(ctx, s.APIURL, query, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("trace.moe: %s", resp.Error)
	}
	if len(resp.Result) == 0 {
		return nil, fmt.Errorf("trace.moe: no results")
	}
	return &resp.Result[0], nil
}

// Sources builds one embed per image in content. A failed lookup still yields
// the link-only embed.
func (s *Service) Sources(ctx context.Context, content string) []*discordgo.MessageEmbed {
	urls := ImageURLs(content)
	if len(urls) > embeds.MaxEmbeds {
		urls = urls[:embeds.MaxEmbeds]
	}

	out := make([]*discordgo.MessageEmbed, 0, len(urls))
	for _, u := range urls {
		match, err := s.BestMatch(ctx, u)
		if err != nil {
			slog.WarnContext(ctx, "trace.moe lookup failed", "url", u, "error", err)
		}
		out = append(out, Embed(u, match))
	}
	return out
}

func Embed(imageURL string, match *Match) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title: ResultTitle,
		URL:   siteURL + imageURL,
		Image: &discordgo.MessageEmbedImage{URL: imageURL},
	}
	if match == nil {
		return e
	}

	embeds.AppendFields(e,
		embeds.Field("Anime", match.Anilist.Title.display(), false),
		embeds.Field("Episode", episode(match.Episode), true),
		embeds.Field("Timestamp", timestamp(match.From), true),
		embeds.Field("Similarity", fmt.Sprintf("%.1f%%", match.Similarity*100), true),
	)
	return e
}

func (t Title) display() string {
	for _, s := range []string{t.English, t.Romaji, t.Native} {
		if strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// episode is a number, a string like "1-2", or null depending on the file.
func episode(v any) string {
	switch ep := v.(type) {
	case float64:
		return fmt.Sprintf("%d", int(ep))
	case string:
		return ep
	default:
		return ""
	}
}

func timestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
