// Package feed runs the key-then-search chain for a query and renders its outcome.
package feed

import (
	"context"
	"fmt"
	"time"

	"github.com/Semior001/nytsearch/app/nyt"
	"github.com/Semior001/nytsearch/app/store"
	"github.com/Semior001/nytsearch/pkg/logx"
	"golang.org/x/exp/slog"
)

//go:generate moq -out mock_key_source.go . KeySource
//go:generate moq -out mock_searcher.go . Searcher

// KeySource provides the credential for the search API.
type KeySource interface {
	Key(ctx context.Context) (string, error)
}

// Searcher looks up articles.
type Searcher interface {
	Search(ctx context.Context, req nyt.Request) ([]store.Article, error)
}

// Loader loads articles for a query.
type Loader struct {
	Keys   KeySource
	Search Searcher
	Query  string
	Page   int
	Logger *slog.Logger
}

// Load starts loading in background and returns immediately.
// The returned feed settles once the key is obtained and the search is finished,
// or when any of these steps fails.
func (l *Loader) Load(ctx context.Context) *Feed {
	f := &Feed{Query: l.Query, done: make(chan struct{})}

	lg := l.Logger
	if lg == nil {
		lg = slog.New(logx.NoOp())
	}

	go func() {
		defer close(f.done)
		start := time.Now()

		f.articles, f.err = l.load(ctx)

		if f.err != nil {
			lg.WarnCtx(ctx, "failed to load feed", slog.String("query", l.Query), slog.Any("err", f.err))
			return
		}

		lg.DebugCtx(ctx, "feed loaded",
			slog.String("query", l.Query),
			slog.Int("articles", len(f.articles)),
			slog.Duration("elapsed", time.Since(start)))
	}()

	return f
}

func (l *Loader) load(ctx context.Context) ([]store.Article, error) {
	key, err := l.Keys.Key(ctx)
	if err != nil {
		return nil, fmt.Errorf("get api key: %w", err)
	}

	articles, err := l.Search.Search(ctx, nyt.Request{Query: l.Query, Key: key, Page: l.Page})
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}

	return articles, nil
}

// Feed is a result of a single load.
type Feed struct {
	Query string

	done     chan struct{}
	articles []store.Article
	err      error
}

// Done returns a channel that is closed when the feed is settled.
func (f *Feed) Done() <-chan struct{} { return f.done }

// Wait blocks until the feed is settled and returns its outcome.
func (f *Feed) Wait(ctx context.Context) ([]store.Article, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-f.done:
		return f.articles, f.err
	}
}

// Page returns the current state of the feed to be rendered.
func (f *Feed) Page() Page {
	select {
	case <-f.done:
		return Page{Query: f.Query, Articles: f.articles, Err: f.err, Settled: true}
	default:
		return Page{Query: f.Query}
	}
}
