package http_client_middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ctxClientID = "client_id"
	TokenHeader = "X-Client-Token"
	issuer      = "kinoshelf"
)

var ErrInvalidToken = errors.New("invalid client token")

// Middleware gives every browser a stable anonymous id. The id travels in a
// signed cookie (or a bearer token for non-browser callers) and scopes all
// per-client state.
type Middleware struct {
	cookieName string
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Middleware) {
		m.now = now
	}
}

func New(cookieName, secret string, ttl time.Duration, opts ...Option) *Middleware {
	m := &Middleware{
		cookieName: cookieName,
		secret:     []byte(secret),
		ttl:        ttl,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Middleware) Identify() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if id, err := m.Parse(m.token(ctx)); err == nil {
			ctx.Set(ctxClientID, id)
			ctx.Next()
			return
		}

		id := uuid.NewString()
		token, err := m.Mint(id)
		if err != nil {
			m.logger.Error("failed to mint client token", slog.String("error", err.Error()))
			ctx.AbortWithStatus(http.StatusInternalServerError)
			return
		}

		ctx.SetSameSite(http.SameSiteLaxMode)
		ctx.SetCookie(m.cookieName, token, int(m.ttl.Seconds()), "/", "", false, true)
		ctx.Header(TokenHeader, token)
		ctx.Set(ctxClientID, id)
		ctx.Next()
	}
}

func (m *Middleware) Mint(clientID string) (string, error) {
	now := m.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   clientID,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	})
	return token.SignedString(m.secret)
}

// Parse returns the client id of a valid token.
func (m *Middleware) Parse(raw string) (string, error) {
	if raw == "" {
		return "", ErrInvalidToken
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithTimeFunc(m.now))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return "", fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return claims.Subject, nil
}

func (m *Middleware) token(ctx *gin.Context) string {
	if cookie, err := ctx.Cookie(m.cookieName); err == nil && cookie != "" {
		return cookie
	}
	if h := ctx.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// ClientID is set by Identify on every request that reaches a handler.
func ClientID(ctx *gin.Context) string {
	return ctx.GetString(ctxClientID)
}
