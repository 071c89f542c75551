package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Semior001/nytsearch/app/rest"
	"github.com/Semior001/nytsearch/app/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slog"
)

func newBackend(t *testing.T) *httptest.Server {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/key":
			_, _ = w.Write([]byte(`{"apiKey":"test-key"}`))
		case "/svc/search/v2/articlesearch.json":
			assert.Equal(t, "Davis OR Sacramento", r.URL.Query().Get("q"))
			assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
			_, _ = fmt.Fprint(w, `{"status":"OK","response":{"docs":[{
				"_id": "id-0",
				"web_url": "https://nytimes.com/test-article-0",
				"headline": {"main": "Test Headline 0"},
				"snippet": "Test Snippet 0",
				"multimedia": {"default": {"url": "image/test-image.jpg"}}
			}]}}`)
		default:
			t.Errorf("unexpected request to %s", r.URL)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestSearch_Execute(t *testing.T) {
	ts := newBackend(t)

	buf := &bytes.Buffer{}
	s := Search{
		Server:  ts.URL,
		Query:   "Davis OR Sacramento",
		Timeout: 5 * time.Second,
		NYT: NYTOpts{
			Endpoint:  ts.URL + "/svc/search/v2/articlesearch.json",
			ImageBase: "https://static01.nyt.com/",
		},
		out: buf,
	}

	require.NoError(t, s.Execute(nil))
	assert.Equal(t, "1. Test Headline 0\n"+
		"   Test Snippet 0\n"+
		"   https://nytimes.com/test-article-0\n"+
		"   image: https://static01.nyt.com/image/test-image.jpg\n", buf.String())

	buf.Reset()
	s.JSON = true
	require.NoError(t, s.Execute(nil))

	var articles []store.Article
	require.NoError(t, json.Unmarshal(buf.Bytes(), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "Test Headline 0", articles[0].Title)
}

func TestSearch_ExecuteDebugLogHidesKey(t *testing.T) {
	ts := newBackend(t)

	buf := &bytes.Buffer{}
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.HandlerOptions{Level: slog.LevelDebug}.NewTextHandler(buf)))
	defer slog.SetDefault(prev)

	s := Search{
		Server:  ts.URL,
		Query:   "Davis OR Sacramento",
		Timeout: 5 * time.Second,
		NYT:     NYTOpts{Endpoint: ts.URL + "/svc/search/v2/articlesearch.json"},
		out:     &bytes.Buffer{},
	}
	require.NoError(t, s.Execute(nil))

	logged := buf.String()
	assert.Contains(t, logged, "response received")
	assert.Contains(t, logged, "/api/key")
	assert.NotContains(t, logged, "test-key")
}

func TestSearch_ExecuteNoKey(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/key" {
			t.Errorf("search must not be issued without a key, got request to %s", r.URL)
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer ts.Close()

	s := Search{
		Server:  ts.URL,
		Query:   "Davis OR Sacramento",
		Timeout: 5 * time.Second,
		NYT:     NYTOpts{Endpoint: ts.URL + "/svc/search/v2/articlesearch.json"},
		out:     &bytes.Buffer{},
	}

	err := s.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get api key")
}

func TestToken_Execute(t *testing.T) {
	buf := &bytes.Buffer{}
	tk := Token{Email: "mod@ucdavis.edu", Name: "Mod", TTL: time.Hour, Secret: "secret", out: buf}
	require.NoError(t, tk.Execute(nil))

	u, err := rest.Auth{Secret: "secret"}.Parse(strings.TrimSpace(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, rest.User{Email: "mod@ucdavis.edu", Name: "Mod"}, u)
}
