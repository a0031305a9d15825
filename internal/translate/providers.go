package translate

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/pscheid92/nano/internal/httpapi"
)

const defaultAzureURL = "https://api.cognitive.microsofttranslator.com/translate"

// Result is one provider answer. Detected is set when the provider reported
// the source language.
type Result struct {
	Text     string
	Detected *Language
}

// Provider translates text. A nil source asks the provider to detect it.
type Provider interface {
	Translate(ctx context.Context, text string, source *Language, target Language) (Result, error)
}

var errEmptyResult = errors.New("no translation returned")

type DeepL struct {
	client *httpapi.Client
	key    string
	URL    string
}

func NewDeepL(client *httpapi.Client, key, apiURL string) *DeepL {
	return &DeepL{client: client, key: key, URL: apiURL}
}

type deeplRequest struct {
	Text       []string `json:"text"`
	TargetLang string   `json:"target_lang"`
	SourceLang string   `json:"source_lang,omitempty"`
}

type deeplResponse struct {
	Translations []struct {
		DetectedSourceLanguage string `json:"detected_source_language"`
		Text                   string `json:"text"`
	} `json:"translations"`
}

func (d *DeepL) Translate(ctx context.Context, text string, source *Language, target Language) (Result, error) {
	req := deeplRequest{Text: []string{text}, TargetLang: target.DeepLTarget()}
	if source != nil {
		req.SourceLang = source.DeepLSource()
	}

	header := http.Header{}
	header.Set("Authorization", "DeepL-Auth-Key "+d.key)

	var resp deeplResponse
	if err := d.client.PostJSON(ctx, d.URL, header, req, &resp); err != nil {
		return Result{}, err
	}
	if len(resp.Translations) == 0 {
		return Result{}, errEmptyResult
	}

	tr := resp.Translations[0]
	return Result{Text: tr.Text, Detected: lookupPtr(tr.DetectedSourceLanguage)}, nil
}

type Azure struct {
	client *httpapi.Client
	key    string
	region string
	URL    string
}

func NewAzure(client *httpapi.Client, key, region string) *Azure {
	return &Azure{client: client, key: key, region: region, URL: defaultAzureURL}
}

type azureText struct {
	Text string `json:"Text"`
}

type azureResponse []struct {
	DetectedLanguage *struct {
		Language string  `json:"language"`
		Score    float64 `json:"score"`
	} `json:"detectedLanguage"`
	Translations []struct {
		Text string `json:"text"`
		To   string `json:"to"`
	} `json:"translations"`
}

func (a *Azure) Translate(ctx context.Context, text string, source *Language, target Language) (Result, error) {
	u, err := url.Parse(a.URL)
	if err != nil {
		return Result{}, err
	}
	q := u.Query()
	q.Set("api-version", "3.0")
	q.Set("to", target.Azure())
	if source != nil {
		q.Set("from", source.Azure())
	}
	u.RawQuery = q.Encode()

	header := http.Header{}
	header.Set("Ocp-Apim-Subscription-Key", a.key)
	if a.region != "" {
		header.Set("Ocp-Apim-Subscription-Region", a.region)
	}

	var resp azureResponse
	if err := a.client.PostJSON(ctx, u.String(), header, []azureText{{Text: text}}, &resp); err != nil {
		return Result{}, err
	}
	if len(resp) == 0 || len(resp[0].Translations) == 0 {
		return Result{}, errEmptyResult
	}

	res := Result{Text: resp[0].Translations[0].Text}
	if d := resp[0].DetectedLanguage; d != nil {
		res.Detected = lookupPtr(d.Language)
	}
	return res, nil
}

func lookupPtr(code string) *Language {
	if code == "" {
		return nil
	}
	l, ok := Lookup(code)
	if !ok {
		return nil
	}
	return &l
}
