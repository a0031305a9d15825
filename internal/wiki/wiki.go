// Package wiki finds the closest English Wikipedia article and returns its lead summary.
package wiki

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/embeds"
	"github.com/pscheid92/nano/internal/httpapi"
)

const (
	defaultSearchURL  = "https://en.wikipedia.org/w/api.php"
	defaultSummaryURL = "https://en.wikipedia.org/api/rest_v1/page/summary/"
	articlePrefix     = "https://en.wikipedia.org/wiki/"

	FailureMessage = "Couldn't find that on Wikipedia :("
)

type Summary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
}

type Service struct {
	client     *httpapi.Client
	SearchURL  string
	SummaryURL string
}

func NewService(client *httpapi.Client) *Service {
	return &Service{
		client:     client,
		SearchURL:  defaultSearchURL,
		SummaryURL: defaultSummaryURL,
	}
}

// SearchTitle returns the URL path segment of the best fuzzy opensearch match.
func (s *Service) SearchTitle(ctx context.Context, query string) (string, error) {
	q := url.Values{
		"action":    {"opensearch"},
		"search":    {query},
		"limit":     {"1"},
		"namespace": {"0"},
		"profile":   {"fuzzy"},
		"redirects": {"resolve"},
		"format":    {"json"},
	}

	// [query, [titles], [descriptions], [urls]]
	var raw []json.RawMessage
	if err := s.client.GetJSON(ctx, s.SearchURL, q, &raw); err != nil {
		return "", apperrors.ExternalError("wikipedia search failed", err).WithField("query", query)
	}
	if len(raw) < 4 {
		return "", apperrors.ExternalError("unexpected opensearch shape", nil).WithField("query", query)
	}

	var urls []string
	if err := json.Unmarshal(raw[3], &urls); err != nil {
		return "", apperrors.ExternalError("unexpected opensearch urls", err).WithField("query", query)
	}
	if len(urls) == 0 {
		return "", apperrors.NotFoundError(FailureMessage).WithField("query", query)
	}

	title, ok := strings.CutPrefix(urls[0], articlePrefix)
	if !ok || title == "" {
		return "", apperrors.ExternalError("unexpected article url", nil).WithField("url", urls[0])
	}
	return title, nil
}

func (s *Service) Summary(ctx context.Context, title string) (*Summary, error) {
	var sum Summary
	err := s.client.GetJSON(ctx, s.SummaryURL+title, url.Values{"redirect": {"true"}}, &sum)
	if err != nil {
		return nil, apperrors.ExternalError("wikipedia summary failed", err).WithField("title", title)
	}
	if sum.Extract == "" {
		return nil, apperrors.NotFoundError(FailureMessage).WithField("title", title)
	}
	return &sum, nil
}

// Lookup searches and summarises query as a ready-to-send message.
func (s *Service) Lookup(ctx context.Context, query string) (string, error) {
	if strings.TrimSpace(query) == "" {
		return "", apperrors.ValidationError(FailureMessage)
	}
	title, err := s.SearchTitle(ctx, query)
	if err != nil {
		return "", err
	}
	sum, err := s.Summary(ctx, title)
	if err != nil {
		return "", err
	}
	return Format(sum), nil
}

func Format(sum *Summary) string {
	return embeds.Truncate("## "+sum.Title+"\n"+sum.Extract, embeds.MaxContent)
}
