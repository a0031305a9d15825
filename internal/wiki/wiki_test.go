package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	apperrors "github.com/pscheid92/nano/internal/errors"
	"github.com/pscheid92/nano/internal/httpapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, search string) *Service {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/w/api.php", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "opensearch", q.Get("action"))
		assert.Equal(t, "fuzzy", q.Get("profile"))
		assert.Equal(t, "1", q.Get("limit"))
		_, _ = w.Write([]byte(search))
	})
	mux.HandleFunc("/summary/Horseshoe_theory", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "true", r.URL.Query().Get("redirect"))
		_, _ = w.Write([]byte(`{"title":"Horseshoe theory","extract":"In popular discourse, the horseshoe theory asserts that the extreme left and the extreme right are closer to each other."}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc := NewService(httpapi.New("wikipedia"))
	svc.SearchURL = srv.URL + "/w/api.php"
	svc.SummaryURL = srv.URL + "/summary/"
	return svc
}

func TestLookup(t *testing.T) {
	svc := newTestService(t, `["horeshoe theory",["Horseshoe theory"],[""],["https://en.wikipedia.org/wiki/Horseshoe_theory"]]`)

	msg, err := svc.Lookup(context.Background(), "horeshoe theory")
	require.NoError(t, err)
	assert.Equal(t, "## Horseshoe theory\nIn popular discourse, the horseshoe theory asserts that the extreme left and the extreme right are closer to each other.", msg)
}

func TestLookup_NoResults(t *testing.T) {
	svc := newTestService(t, `["zzzzqqq",[],[],[]]`)

	_, err := svc.Lookup(context.Background(), "zzzzqqq")
	require.Error(t, err)
	assert.Equal(t, FailureMessage, apperrors.UserMessage(err, "x"))
}

func TestSearchTitle_ForeignURL(t *testing.T) {
	svc := newTestService(t, `["q",["Q"],[""],["https://de.wikipedia.org/wiki/Q"]]`)

	_, err := svc.SearchTitle(context.Background(), "q")
	require.Error(t, err)
}

func TestFormat_Truncates(t *testing.T) {
	msg := Format(&Summary{Title: "Long", Extract: strings.Repeat("a", 5000)})
	assert.Equal(t, 2000, utf8.RuneCountInString(msg))
	assert.True(t, strings.HasPrefix(msg, "## Long\n"))
}
