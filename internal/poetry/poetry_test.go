package poetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPage = `<html><body>
<div class="c-feature"><h2><a href="/poems/44272/the-road-not-taken">The Road Not Taken</a></h2></div>
<div class="c-feature"><h2><a href="/poems/other">Other</a></h2></div>
</body></html>`

const poemPage = `<html><body>
<h1>The Road Not Taken</h1>
<span class="c-txt_attribution">By <a href="/poets/robert-frost">Robert Frost</a></span>
<div class="o-poem">
  <div>Two roads diverged in a yellow wood,</div>
  <div>And sorry I could not travel both<br>And be one traveler, long I stood</div>
</div>
</body></html>`

func newTestService(t *testing.T) *Service {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "nothing" {
			_, _ = w.Write([]byte("<html><body><p>No results</p></body></html>"))
			return
		}
		_, _ = w.Write([]byte(searchPage))
	})
	mux.HandleFunc("/poems/44272/the-road-not-taken", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(poemPage))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewService(httpapi.New("poetry"))
	svc.SearchURL = srv.URL + "/search"
	svc.SiteURL = srv.URL
	return svc
}

func TestSearch(t *testing.T) {
	svc := newTestService(t)

	poem, err := svc.Search(context.Background(), "road not taken")
	require.NoError(t, err)

	assert.Equal(t, "The Road Not Taken", poem.Title)
	assert.Equal(t, "Robert Frost", poem.Poet)
	assert.True(t, strings.HasSuffix(poem.URL, "/poems/44272/the-road-not-taken"))
	assert.Equal(t, "Two roads diverged in a yellow wood,\nAnd sorry I could not travel both\nAnd be one traveler, long I stood", poem.Text)

	e := Embed(poem)
	assert.Equal(t, "The Road Not Taken", e.Title)
	assert.Equal(t, "By Robert Frost", e.Description)
	require.Len(t, e.Fields, 1)
	assert.Equal(t, "Poem", e.Fields[0].Name)
	assert.Equal(t, poem.URL, e.URL)
}

func TestSearch_NoHits(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Search(context.Background(), "nothing")
	require.Error(t, err)
	assert.Equal(t, FailureMessage, apperrors.UserMessage(err, "x"))
}

func TestParse_NotAPoemPage(t *testing.T) {
	_, err := Parse("https://example.com", []byte("<html><h1>Title only</h1></html>"))
	require.Error(t, err)
	assert.Equal(t, FailureMessage, apperrors.UserMessage(err, "x"))
}
