// Package rest provides the HTTP backend: the api key provider, the article search proxy,
// comments and the rendered feed page.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Semior001/nytsearch/app/feed"
	"github.com/Semior001/nytsearch/app/keys"
	"github.com/Semior001/nytsearch/app/nyt"
	"github.com/Semior001/nytsearch/app/store"
	cache "github.com/go-pkgz/expirable-cache/v2"
	R "github.com/go-pkgz/rest"
	"github.com/google/uuid"
	"golang.org/x/exp/slog"
)

// Searcher looks up articles and reports its cache usage.
type Searcher interface {
	feed.Searcher
	CacheStat() cache.Stats
}

// Server is a rest server.
type Server struct {
	Logger          *slog.Logger
	Addr            string
	APIKey          string
	DefaultQuery    string
	Search          Searcher
	Store           store.Interface
	Auth            Auth
	ModeratorDomain string
	StaticPath      string
	Timeout         time.Duration
}

// Run starts the server and blocks until the context is canceled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.Logger.InfoCtx(ctx, "starting http server", slog.String("addr", s.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen and serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return ctx.Err()
}

// Handler returns the http handler with all routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET "+keys.Path, s.getKey)
	mux.HandleFunc("GET /api/articles", s.getArticles)
	mux.HandleFunc("GET /api/user", s.getUser)
	mux.HandleFunc("GET /api/stats", s.getStats)
	mux.HandleFunc("GET /api/comments", s.listComments)
	mux.Handle("POST /api/comments", s.requireUser(http.HandlerFunc(s.addComment)))
	mux.Handle("DELETE /api/comments", s.requireUser(http.HandlerFunc(s.removeComment)))
	mux.HandleFunc("GET /{$}", s.index)

	if s.StaticPath != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(s.StaticPath))))
	}

	return chain(mux,
		RequestID,
		Logger(s.Logger),
		Recover(s.Logger),
		R.Ping,
		CORS(),
		Timeout(s.Timeout),
		s.authenticate,
	)
}

func (s *Server) getKey(w http.ResponseWriter, r *http.Request) {
	if s.APIKey == "" {
		s.Logger.WarnCtx(r.Context(), "api key requested, but it is not configured")
		writeError(w, http.StatusServiceUnavailable, "api key is not configured")
		return
	}

	writeJSON(w, http.StatusOK, keys.Response{APIKey: s.APIKey})
}

func (s *Server) loader(r *http.Request) (*feed.Loader, error) {
	l := &feed.Loader{
		Keys:   keys.Static(s.APIKey),
		Search: s.Search,
		Query:  s.DefaultQuery,
		Logger: s.Logger,
	}

	if q := strings.TrimSpace(r.URL.Query().Get("q")); q != "" {
		l.Query = q
	}

	if p := r.URL.Query().Get("page"); p != "" {
		page, err := strconv.Atoi(p)
		if err != nil || page < 0 {
			return nil, fmt.Errorf("invalid page %q", p)
		}
		l.Page = page
	}

	return l, nil
}

func (s *Server) getArticles(w http.ResponseWriter, r *http.Request) {
	l, err := s.loader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	articles, err := l.Load(r.Context()).Wait(r.Context())
	if err != nil {
		s.Logger.WarnCtx(r.Context(), "failed to search articles", slog.Any("err", err))
		writeError(w, searchErrorStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Query    string          `json:"query"`
		Articles []store.Article `json:"articles"`
	}{Query: l.Query, Articles: articles})
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	l, err := s.loader(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	f := l.Load(r.Context())
	var page feed.Page
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if _, err = f.Wait(r.Context()); err != nil {
		s.Logger.WarnCtx(r.Context(), "failed to load feed", slog.Any("err", err))
		// the chain may still be running if the request deadline fired first
		page = feed.Page{Query: f.Query, Err: err, Settled: true}
		w.WriteHeader(searchErrorStatus(err))
	} else {
		page = f.Page()
	}

	if err = feed.Render(w, page); err != nil {
		s.Logger.ErrorCtx(r.Context(), "failed to render feed", slog.Any("err", err))
	}
}

func searchErrorStatus(err error) int {
	switch {
	case errors.Is(err, keys.ErrEmptyKey), errors.Is(err, nyt.ErrNoKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	u, ok := userFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) getStats(w http.ResponseWriter, _ *http.Request) {
	stats := s.Search.CacheStat()
	writeJSON(w, http.StatusOK, map[string]int{
		"hits":    stats.Hits,
		"misses":  stats.Misses,
		"added":   stats.Added,
		"evicted": stats.Evicted,
	})
}

func (s *Server) listComments(w http.ResponseWriter, r *http.Request) {
	articleID := r.URL.Query().Get("article_id")
	if articleID == "" {
		writeError(w, http.StatusBadRequest, "article_id is required")
		return
	}

	comments, err := s.Store.List(r.Context(), store.ListRequest{ArticleID: articleID})
	if err != nil {
		s.Logger.ErrorCtx(r.Context(), "failed to list comments", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to list comments")
		return
	}

	res := make([]store.Comment, 0, len(comments))
	for _, c := range comments {
		res = append(res, c.Redact())
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) addComment(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())

	var req struct {
		ArticleID string `json:"article_id"`
		Text      string `json:"text"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body")
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.ArticleID == "" || req.Text == "" {
		writeError(w, http.StatusBadRequest, "article_id and text are required")
		return
	}

	c := store.Comment{
		ID:        uuid.New().String(),
		ArticleID: req.ArticleID,
		UserEmail: u.Email,
		Text:      req.Text,
		Timestamp: time.Now().UTC(),
	}

	if err := s.Store.Put(r.Context(), c); err != nil {
		s.Logger.ErrorCtx(r.Context(), "failed to put comment", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to add comment")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "comment added", "id": c.ID})
}

func (s *Server) removeComment(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())

	if s.ModeratorDomain == "" || !strings.HasSuffix(u.Email, s.ModeratorDomain) {
		writeError(w, http.StatusForbidden, "unauthorized")
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	err := s.Store.Remove(r.Context(), id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "comment not found")
		return
	case err != nil:
		s.Logger.ErrorCtx(r.Context(), "failed to remove comment", slog.Any("err", err))
		writeError(w, http.StatusInternalServerError, "failed to remove comment")
		return
	}

	s.Logger.InfoCtx(r.Context(), "comment removed", slog.String("id", id), slog.String("moderator", u.Email))
	writeJSON(w, http.StatusOK, map[string]string{"status": "comment removed"})
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "not authenticated")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	R.RenderJSON(w, v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
