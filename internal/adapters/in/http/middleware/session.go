// internal/adapters/in/http/middleware/session.go
package middleware

import (
	"context"
	"crypto/rand"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	SessionCookieName = "pokemint_session"
	sessionTTL        = 30 * 24 * time.Hour
)

// Sessions issues and reads the session cookie: an HS256 JWT whose jti is
// the session ID the view state is keyed by.
type Sessions struct {
	secret []byte
	secure bool
	now    func() time.Time
	log    *zap.Logger
}

// NewSessions uses secret to sign cookies. An empty secret gets a random
// one, so sessions do not survive a restart.
func NewSessions(secret string, secure bool, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	key := []byte(strings.TrimSpace(secret))
	if len(key) == 0 {
		key = make([]byte, 32)
		_, _ = rand.Read(key)
		log.Warn("SESSION_SECRET is empty; using an ephemeral key")
	}
	return &Sessions{secret: key, secure: secure, now: time.Now, log: log.Named("session")}
}

// Handler makes sure every request carries a session ID.
func (s *Sessions) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := ""
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if parsed, err := s.parse(c.Value); err == nil {
				id = parsed
			} else {
				s.log.Debug("session cookie rejected", zap.Error(err))
			}
		}
		if id == "" {
			id = uuid.NewString()
			token, err := s.sign(id)
			if err != nil {
				s.log.Error("sign session", zap.Error(err))
			} else {
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    token,
					Path:     "/",
					MaxAge:   int(sessionTTL / time.Second),
					HttpOnly: true,
					Secure:   s.secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySession, id)))
	})
}

func (s *Sessions) sign(id string) (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *Sessions) parse(token string) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(claims.ID) == "" {
		return "", errors.New("session: token has no id")
	}
	return claims.ID, nil
}

// SessionID returns the request's session ID ("" outside the middleware).
func SessionID(r *http.Request) string {
	id, _ := r.Context().Value(ctxKeySession).(string)
	return id
}
