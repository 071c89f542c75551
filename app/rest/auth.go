package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/exp/slog"
)

// User is an authenticated reader.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// Claims of the bearer token.
type Claims struct {
	User
	jwt.RegisteredClaims
}

// Auth issues and verifies HS256 bearer tokens.
type Auth struct {
	Secret string
}

// ErrNoSecret is returned when tokens are requested without a signing secret.
var ErrNoSecret = errors.New("auth secret is not set")

// Token issues a token for the user, valid for ttl.
func (a Auth) Token(u User, ttl time.Duration) (string, error) {
	if a.Secret == "" {
		return "", ErrNoSecret
	}

	now := time.Now()
	claims := Claims{
		User: u,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(a.Secret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Parse verifies the token and returns the user it was issued for.
func (a Auth) Parse(token string) (User, error) {
	if a.Secret == "" {
		return User{}, ErrNoSecret
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return []byte(a.Secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return User{}, fmt.Errorf("parse token: %w", err)
	}

	if claims.Email == "" {
		return User{}, errors.New("token without email")
	}

	return claims.User, nil
}

type userKey struct{}

func userFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey{}).(User)
	return u, ok
}

func contextWithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userKey{}, u)
}

// authenticate puts the user into context if the request carries a valid token.
// Requests with a missing or invalid token pass through anonymously, requireUser rejects them where needed.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		u, err := s.Auth.Parse(token)
		if err != nil {
			s.Logger.DebugCtx(r.Context(), "ignored invalid token", slog.Any("err", err))
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), u)))
	})
}
