package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

type contextKey string

const (
	IdentityKey contextKey = "identity"

	SessionCookie = "sid"
	SessionHeader = "X-Session-ID"
)

// Identity is who is calling: an authenticated user or an anonymous session.
type Identity struct {
	Authenticated bool
	UserID        string
	SessionToken  string
}

// Identify resolves the caller from the Authorization header, falling back to
// an anonymous session. A fresh sid cookie is issued when none is present.
// A bearer token that matches nothing is rejected; no token means anonymous.
func Identify(userTokens map[string]string, secureCookie bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := Identity{SessionToken: sessionToken(r)}

			if auth := strings.TrimSpace(r.Header.Get("Authorization")); auth != "" {
				// Support both "Bearer <key>" and "<key>" formats
				token := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
				userID, ok := matchToken(userTokens, token)
				if !ok {
					WriteError(w, http.StatusUnauthorized, "Invalid bearer token")
					return
				}
				id.Authenticated = true
				id.UserID = userID
			}

			if id.SessionToken == "" {
				id.SessionToken = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    id.SessionToken,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), IdentityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFrom extracts the caller identity from context
func IdentityFrom(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(IdentityKey).(Identity)
	return id, ok
}

// RequireUser rejects anonymous callers with 401.
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := IdentityFrom(r.Context())
		if !ok || !id.Authenticated {
			WriteError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionToken(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && ValidateSessionToken(c.Value) == nil {
		return c.Value
	}
	if h := strings.TrimSpace(r.Header.Get(SessionHeader)); ValidateSessionToken(h) == nil {
		return h
	}
	return ""
}

// matchToken compares in constant time against every configured token.
func matchToken(userTokens map[string]string, token string) (string, bool) {
	if token == "" {
		return "", false
	}
	var found string
	for userID, key := range userTokens {
		if key == "" {
			continue
		}
		if subtle.ConstantTimeCompare([]byte(token), []byte(key)) == 1 {
			found = userID
		}
	}
	return found, found != ""
}
