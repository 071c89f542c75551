package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Semior001/nytsearch/pkg/logx"
	R "github.com/go-pkgz/rest"
	"github.com/google/uuid"
	"github.com/rs/cors"
	"golang.org/x/exp/slog"
)

// Middleware wraps http handler.
type Middleware func(http.Handler) http.Handler

func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// RequestID is a middleware that adds request id to context and response headers.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(logx.ContextWithRequestID(r.Context(), id)))
	})
}

// Recover is a middleware that recovers from panics and responds with 500.
func Recover(lg *slog.Logger) Middleware {
	return R.Recoverer(logBackend{lg: lg, level: slog.LevelError})
}

// logBackend adapts slog to the printf-style logger of go-pkgz/rest.
type logBackend struct {
	lg    *slog.Logger
	level slog.Level
}

func (b logBackend) Logf(format string, args ...any) {
	b.lg.Log(context.Background(), b.level, fmt.Sprintf(format, args...))
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Logger is a middleware that logs all requests.
func Logger(lg *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			args := []any{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
			}

			if lg.Handler().Enabled(r.Context(), slog.LevelDebug) {
				lg.DebugCtx(r.Context(), "request processed",
					append(args, slog.String("remote", r.RemoteAddr), slog.String("user_agent", r.UserAgent()))...)
				return
			}

			lg.InfoCtx(r.Context(), "request processed", args...)
		})
	}
}

// CORS allows requests from any origin.
func CORS() Middleware {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	}).Handler
}

// Timeout sets the timeout for the request context.
func Timeout(dur time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		if dur <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), dur)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
