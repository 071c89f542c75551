package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Semior001/nytsearch/app/feed"
	"github.com/Semior001/nytsearch/app/keys"
	"github.com/Semior001/nytsearch/app/nyt"
	"github.com/Semior001/nytsearch/pkg/logx"
	"github.com/go-pkgz/requester"
	"golang.org/x/exp/slog"
)

// Search is a command to search articles with the key obtained from a running server.
type Search struct {
	Server  string        `long:"server" env:"SERVER" default:"http://localhost:8000" description:"url of the key provider"`
	Query   string        `long:"query" env:"QUERY" default:"Davis OR Sacramento" description:"search query"`
	Page    int           `long:"page" env:"PAGE" default:"0" description:"page of results"`
	Timeout time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"timeout for the whole search"`
	JSON    bool          `long:"json" env:"JSON" description:"print articles as json"`

	NYT NYTOpts `group:"nyt" namespace:"nyt" env-namespace:"NYT"`

	out io.Writer
}

// Execute runs the command.
func (s Search) Execute(_ []string) error {
	lg := slog.Default()

	cl := requester.New(http.Client{}, logx.LoggingRoundTripper(
		lg.With(slog.String("prefix", "http")),
		logx.RoundTripperOpts{
			Level:             slog.LevelDebug,
			SecretQueryParams: []string{"api-key"},
			SecretBodyPaths:   []string{keys.Path},
		},
	)).Client()

	l := &feed.Loader{
		Keys: keys.NewClient(lg.With(slog.String("prefix", "keys")), cl, s.Server),
		Search: nyt.NewClient(lg.With(slog.String("prefix", "nyt")), cl, nyt.Params{
			Endpoint:  s.NYT.Endpoint,
			ImageBase: s.NYT.ImageBase,
		}),
		Query:  s.Query,
		Page:   s.Page,
		Logger: lg.With(slog.String("prefix", "feed")),
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.Timeout)
	defer cancel()

	articles, err := l.Load(ctx).Wait(ctx)
	if err != nil {
		return fmt.Errorf("load articles: %w", err)
	}

	out := s.out
	if out == nil {
		out = os.Stdout
	}

	if s.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err = enc.Encode(articles); err != nil {
			return fmt.Errorf("encode articles: %w", err)
		}
		return nil
	}

	sb := &strings.Builder{}
	for i, a := range articles {
		_, _ = fmt.Fprintf(sb, "%d. %s\n   %s\n   %s\n", i+1, a.Title, a.Abstract, a.URL)
		for _, img := range a.Multimedia {
			_, _ = fmt.Fprintf(sb, "   image: %s\n", img)
		}
	}

	if _, err = io.WriteString(out, sb.String()); err != nil {
		return fmt.Errorf("write articles: %w", err)
	}

	return nil
}
