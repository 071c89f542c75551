// Package nyt contains a client for the New York Times article search API,
// which maps found documents into articles ready to be rendered.
package nyt

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/nytsearch/app/store"
	cache "github.com/go-pkgz/expirable-cache/v2"
	"golang.org/x/exp/slog"
)

// DefaultEndpoint is the article search endpoint.
const DefaultEndpoint = "https://api.nytimes.com/svc/search/v2/articlesearch.json"

// DefaultImageBase is the host serving relative multimedia urls.
const DefaultImageBase = "https://static01.nyt.com/"

var (
	// ErrNoKey is returned when search is requested without an api key.
	ErrNoKey = errors.New("api key is not provided")
	// ErrEmptyQuery is returned when search is requested with an empty query.
	ErrEmptyQuery = errors.New("empty query")
)

// StatusError is returned when the API responds with a non-200 status.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bad status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("bad status code: %d, %s", e.StatusCode, e.Message)
}

// Doer makes HTTP requests, both *http.Client and *requester.Requester fit.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Params defines parameters of the client.
type Params struct {
	Endpoint  string
	ImageBase string
	CacheTTL  time.Duration
	CacheSize int
}

// Client makes requests to the article search API.
type Client struct {
	log    *slog.Logger
	cl     Doer
	params Params
	cache  cache.Cache[string, []store.Article]
}

// NewClient makes new Client. Zero CacheTTL turns caching off.
func NewClient(lg *slog.Logger, cl Doer, params Params) *Client {
	if params.Endpoint == "" {
		params.Endpoint = DefaultEndpoint
	}

	// relative references replace the last segment of a base without the trailing slash
	if params.ImageBase != "" && !strings.HasSuffix(params.ImageBase, "/") {
		params.ImageBase += "/"
	}

	c := &Client{log: lg, cl: cl, params: params}

	if params.CacheTTL > 0 {
		c.cache = cache.NewCache[string, []store.Article]().
			WithLRU().
			WithMaxKeys(params.CacheSize).
			WithTTL(params.CacheTTL)
	}

	return c
}

// Request describes a single search.
type Request struct {
	Query string
	Key   string
	Page  int
}

func (r Request) cacheKey() string { return strconv.Itoa(r.Page) + ":" + r.Query }

// SearchURL builds the url to search the query with the given key.
func SearchURL(endpoint string, req Request) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}

	q := u.Query()
	q.Set("q", req.Query)
	q.Set("api-key", req.Key)
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// CacheStat returns cache stats.
func (c *Client) CacheStat() cache.Stats {
	if c.cache == nil {
		return cache.Stats{}
	}
	return c.cache.Stat()
}

// Search looks up articles for the query.
func (c *Client) Search(ctx context.Context, req Request) ([]store.Article, error) {
	if req.Key == "" {
		return nil, ErrNoKey
	}

	if req.Query == "" {
		return nil, ErrEmptyQuery
	}

	if c.cache != nil {
		if articles, ok := c.cache.Get(req.cacheKey()); ok {
			c.log.DebugCtx(ctx, "articles found in cache", slog.String("query", req.Query))
			return articles, nil
		}
	}

	u, err := SearchURL(c.params.Endpoint, req)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}

	c.log.DebugCtx(ctx, "searching articles", slog.String("query", req.Query), slog.Int("page", req.Page))

	hreq, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.cl.Do(hreq)
	if err != nil {
		// url.Error carries the full url with the api key in it
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.log.WarnCtx(ctx, "failed to close response body", slog.Any("err", err))
		}
	}()

	var body SearchResponse
	if resp.StatusCode != http.StatusOK {
		serr := &StatusError{StatusCode: resp.StatusCode}
		// error bodies are not always json, best effort
		bts, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(bts, &body) == nil && body.Fault != nil {
			serr.Message = body.Fault.FaultString
		}
		return nil, serr
	}

	if err = json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	for _, doc := range body.Response.Docs {
		if doc.Multimedia.Unexpected != "" {
			c.log.WarnCtx(ctx, "unexpected multimedia shape, ignored",
				slog.String("id", doc.ID), slog.String("multimedia", doc.Multimedia.Unexpected))
		}
	}

	articles, skipped := Map(body.Response.Docs, c.params.ImageBase)
	for _, doc := range skipped {
		c.log.WarnCtx(ctx, "skipped doc with invalid web url",
			slog.String("id", doc.ID), slog.String("web_url", doc.WebURL))
	}

	if c.cache != nil {
		c.cache.Set(req.cacheKey(), articles, 0)
	}

	return articles, nil
}
