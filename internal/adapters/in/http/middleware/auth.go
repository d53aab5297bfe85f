// internal/adapters/in/http/middleware/auth.go
package middleware

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
)

// FirebaseAuthClient is the firebase auth client type main wires in.
type FirebaseAuthClient = fbauth.Client

// IDTokenVerifier is the part of the Firebase auth client the guard uses.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// context keys use their own type to avoid collisions (SA1029).
type ctxKey struct{ name string }

var (
	ctxKeyUID     = ctxKey{name: "uid"}
	ctxKeySession = ctxKey{name: "session"}
)

// AuthMiddleware verifies "Authorization: Bearer <ID_TOKEN>" and stores the
// Firebase uid in the context. With a nil Verifier every request passes.
type AuthMiddleware struct {
	Verifier IDTokenVerifier
	Log      *zap.Logger
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m == nil || m.Verifier == nil {
			next.ServeHTTP(w, r)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			writeAuthError(w, "unauthorized: missing bearer token")
			return
		}
		idToken := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if idToken == "" {
			writeAuthError(w, "unauthorized: empty bearer token")
			return
		}

		token, err := m.Verifier.VerifyIDToken(r.Context(), idToken)
		if err != nil {
			if m.Log != nil {
				m.Log.Debug("id token rejected", zap.Error(err))
			}
			writeAuthError(w, "invalid token")
			return
		}
		uid := ""
		if token != nil {
			uid = strings.TrimSpace(token.UID)
		}
		if uid == "" {
			writeAuthError(w, "invalid uid in token")
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyUID, uid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CurrentUserUID returns the verified Firebase uid, if any.
func CurrentUserUID(r *http.Request) (string, bool) {
	u, ok := r.Context().Value(ctxKeyUID).(string)
	if !ok || strings.TrimSpace(u) == "" {
		return "", false
	}
	return u, true
}

func writeAuthError(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"` + msg + `"}`))
}
