package dictionary

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serenityFixture = `[{"word":"serenity","phonetic":"/səˈɹɛnɪti/",
"phonetics":[{"text":"/səˈɹɛnɪti/","audio":"https://api.dictionaryapi.dev/media/pronunciations/en/serenity-us.mp3"},{"text":"/sɪˈɹɛnɪti/","audio":""}],
"meanings":[{"partOfSpeech":"noun","definitions":[
 {"definition":"The state of being serene; calmness; peacefulness.","synonyms":[],"antonyms":[]},
 {"definition":"A title given to a prince.","example":"Her Serenity the Princess","synonyms":[],"antonyms":[]}],
 "synonyms":[],"antonyms":[]}],
"license":{"name":"CC BY-SA 3.0"},"sourceUrls":["https://en.wiktionary.org/wiki/serenity"]}]`

func newTestService(t *testing.T) *Service {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/serenity":
			_, _ = w.Write([]byte(serenityFixture))
		case "/broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"title":"No Definitions Found"}`))
		}
	}))
	t.Cleanup(srv.Close)

	svc := NewService(httpapi.New("dictionary"))
	svc.APIURL = srv.URL
	return svc
}

func TestLookup_ParsesEntry(t *testing.T) {
	svc := newTestService(t)

	entries, err := svc.Lookup(context.Background(), "serenity")
	require.NoError(t, err)

	want := []Entry{{
		Word:     "serenity",
		Phonetic: "/səˈɹɛnɪti/",
		Phonetics: []Phonetic{
			{Text: "/səˈɹɛnɪti/", Audio: "https://api.dictionaryapi.dev/media/pronunciations/en/serenity-us.mp3"},
			{Text: "/sɪˈɹɛnɪti/"},
		},
		Meanings: []Meaning{{
			PartOfSpeech: "noun",
			Definitions: []Definition{
				{Definition: "The state of being serene; calmness; peacefulness."},
				{Definition: "A title given to a prince.", Example: "Her Serenity the Princess"},
			},
		}},
		SourceURLs: []string{"https://en.wiktionary.org/wiki/serenity"},
	}}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("Lookup() mismatch (-want +got):\n%s", diff)
	}
}

func TestDefine_FormatsEmbed(t *testing.T) {
	svc := newTestService(t)

	out, err := svc.Define(context.Background(), "serenity")
	require.NoError(t, err)
	require.Len(t, out, 1)

	e := out[0]
	assert.Equal(t, "serenity", e.Title)
	assert.Equal(t, "/səˈɹɛnɪti/", e.Description)
	assert.Equal(t, "https://en.wiktionary.org/wiki/serenity", e.URL)
	require.Len(t, e.Fields, 3)

	assert.Equal(t, "Pronunciations", e.Fields[0].Name)
	assert.Equal(t, "`/səˈɹɛnɪti/, /sɪˈɹɛnɪti/`", e.Fields[0].Value)
	assert.Equal(t, "Audios", e.Fields[1].Name)
	assert.Equal(t, "https://api.dictionaryapi.dev/media/pronunciations/en/serenity-us.mp3", e.Fields[1].Value)
	assert.Equal(t, "*noun*", e.Fields[2].Name)
	assert.Equal(t,
		"1. The state of being serene; calmness; peacefulness.\n2. A title given to a prince.\n*\"Her Serenity the Princess\"*\n",
		e.Fields[2].Value)
}

func TestDefine_Failures(t *testing.T) {
	svc := newTestService(t)

	for _, word := range []string{"qwxzv", "broken", "  "} {
		_, err := svc.Define(context.Background(), word)
		require.Error(t, err, word)
		assert.Equal(t, FailureMessage, apperrors.UserMessage(err, FailureMessage), word)
	}
}
