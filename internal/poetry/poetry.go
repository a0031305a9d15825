// Package poetry searches poetryfoundation.org and scrapes poem pages.
package poetry

import (
	"bytes"
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/bwmarrin/discordgo"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/embeds"
	"github.com/pscheid92/nano/internal/httpapi"
	"golang.org/x/net/html"
)

const (
	defaultSearchURL = "https://www.poetryfoundation.org/search"
	defaultSiteURL   = "https://poetryfoundation.org"

	FailureMessage = "Couldn't find poem!"
)

type Poem struct {
	Title string
	Poet  string
	Text  string
	URL   string
}

type Service struct {
	client    *httpapi.Client
	SearchURL string
	SiteURL   string
}

func NewService(client *httpapi.Client) *Service {
	return &Service{
		client:    client,
		SearchURL: defaultSearchURL,
		SiteURL:   defaultSiteURL,
	}
}

// Search takes the first search hit and fetches that poem.
func (s *Service) Search(ctx context.Context, query string) (*Poem, error) {
	body, err := s.client.GetBody(ctx, s.SearchURL, url.Values{"query": {query}})
	if err != nil {
		return nil, apperrors.ExternalError("poem search failed", err).WithField("query", query)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.ExternalError("unreadable search page", err)
	}
	href, ok := doc.Find("h2 > a").First().Attr("href")
	if !ok || href == "" {
		return nil, apperrors.NotFoundError(FailureMessage).WithField("query", query)
	}

	if strings.HasPrefix(href, "/") {
		href = s.SiteURL + href
	}
	return s.Fetch(ctx, href)
}

// Fetch scrapes the poem page at pageURL.
func (s *Service) Fetch(ctx context.Context, pageURL string) (*Poem, error) {
	body, err := s.client.GetBody(ctx, pageURL, nil)
	if err != nil {
		return nil, apperrors.ExternalError("poem fetch failed", err).WithField("url", pageURL)
	}
	poem, err := Parse(pageURL, body)
	if err != nil {
		return nil, err
	}
	return poem, nil
}

// Parse extracts title, poet and verse lines from a poem page.
func Parse(pageURL string, page []byte) (*Poem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, apperrors.ExternalError("unreadable poem page", err)
	}

	div := doc.Find("div.o-poem").First()
	poet := doc.Find("span.c-txt_attribution a").First()
	title := doc.Find("h1").First()
	if div.Length() == 0 || poet.Length() == 0 || title.Length() == 0 {
		return nil, apperrors.NotFoundError(FailureMessage).WithField("url", pageURL)
	}

	return &Poem{
		Title: orDefault(strings.TrimSpace(title.Text()), "[Title not found]"),
		Poet:  orDefault(strings.TrimSpace(poet.Text()), "[Author not found]"),
		Text:  strings.Join(textLines(div), "\n"),
		URL:   pageURL,
	}, nil
}

// textLines returns every non-blank text node under sel in document order,
// so <br>-separated verse keeps its line breaks.
func textLines(sel *goquery.Selection) []string {
	var lines []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if line := strings.TrimSpace(n.Data); line != "" {
				lines = append(lines, line)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return lines
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func Embed(p *Poem) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Title:       embeds.Truncate(p.Title, embeds.MaxTitle),
		Description: "By " + p.Poet,
		URL:         p.URL,
	}
	embeds.AppendFields(e, embeds.Field("Poem", p.Text, false))
	return e
}
