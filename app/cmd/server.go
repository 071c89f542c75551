// Package cmd contains commands for the application.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Semior001/nytsearch/app/nyt"
	"github.com/Semior001/nytsearch/app/rest"
	"github.com/Semior001/nytsearch/app/store"
	"github.com/Semior001/nytsearch/pkg/logx"
	"github.com/go-pkgz/requester"
	"github.com/go-pkgz/requester/middleware"
	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"
)

// NYTOpts defines options to access the article search API.
type NYTOpts struct {
	Endpoint  string `long:"endpoint" env:"ENDPOINT" default:"https://api.nytimes.com/svc/search/v2/articlesearch.json" description:"article search endpoint"`
	ImageBase string `long:"image-base" env:"IMAGE_BASE" default:"https://static01.nyt.com/" description:"base url for relative image urls"`
}

// Server is a command to run the http backend.
type Server struct {
	Listen          string        `long:"listen" env:"LISTEN" default:":8000" description:"address to listen on"`
	StorePath       string        `long:"store-path" env:"STORE_PATH" default:"." description:"parent dir for bolt files"`
	StaticPath      string        `long:"static-path" env:"STATIC_PATH" description:"dir with static files"`
	Timeout         time.Duration `long:"timeout" env:"TIMEOUT" default:"30s" description:"timeout for requests"`
	ModeratorDomain string        `long:"moderator-domain" env:"MODERATOR_DOMAIN" default:"@ucdavis.edu" description:"email suffix of moderators"`

	NYT struct {
		NYTOpts
		APIKey    string        `long:"api-key" env:"API_KEY" description:"api key"`
		Query     string        `long:"query" env:"QUERY" default:"Davis OR Sacramento" description:"default query"`
		Timeout   time.Duration `long:"timeout" env:"TIMEOUT" default:"10s" description:"timeout for api calls"`
		CacheTTL  time.Duration `long:"cache-ttl" env:"CACHE_TTL" default:"5m" description:"ttl of cached search results, 0 to disable"`
		CacheSize int           `long:"cache-size" env:"CACHE_SIZE" default:"100" description:"max number of cached searches"`
	} `group:"nyt" namespace:"nyt" env-namespace:"NYT"`

	Auth struct {
		Secret string `long:"secret" env:"SECRET" description:"secret to sign and verify tokens"`
	} `group:"auth" namespace:"auth" env-namespace:"AUTH"`
}

// Execute runs the command.
func (s Server) Execute(_ []string) error {
	lg := slog.Default()

	if s.NYT.APIKey == "" {
		lg.Warn("api key is not set, search will not work")
	}

	if s.Auth.Secret == "" {
		lg.Warn("auth secret is not set, commenting is disabled")
	}

	st, err := store.NewBolt(s.StorePath)
	if err != nil {
		return fmt.Errorf("make store: %w", err)
	}

	defer func() {
		if err := st.Close(); err != nil {
			lg.Error("close bolt store", slog.Any("err", err))
		}
	}()

	rq := requester.New(
		http.Client{Timeout: s.NYT.Timeout},
		middleware.Header("User-Agent", "nytsearch"),
		logx.LoggingRoundTripper(lg.With(slog.String("prefix", "nyt-http")), logx.RoundTripperOpts{
			Level:             slog.LevelDebug,
			SecretQueryParams: []string{"api-key"},
		}),
	)

	srv := &rest.Server{
		Logger:       lg.With(slog.String("prefix", "rest")),
		Addr:         s.Listen,
		APIKey:       s.NYT.APIKey,
		DefaultQuery: s.NYT.Query,
		Search: nyt.NewClient(lg.With(slog.String("prefix", "nyt")), rq, nyt.Params{
			Endpoint:  s.NYT.Endpoint,
			ImageBase: s.NYT.ImageBase,
			CacheTTL:  s.NYT.CacheTTL,
			CacheSize: s.NYT.CacheSize,
		}),
		Store:           st,
		Auth:            rest.Auth{Secret: s.Auth.Secret},
		ModeratorDomain: s.ModeratorDomain,
		StaticPath:      s.StaticPath,
		Timeout:         s.Timeout,
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sig:
			lg.Warn("caught signal, stopping", slog.String("signal", sig.String()))
			stop()
			return ctx.Err()
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	ewg.Go(func() error {
		err := srv.Run(ctx)
		lg.Warn("http server stopped")
		return err
	})

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
