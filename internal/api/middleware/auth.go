package middleware

import (
	"context"
	"crypto/rsa"
	"net/http"
	"strings"

	"github.com/mkataria09/sealdrop/internal/identity"
	"github.com/mkataria09/sealdrop/internal/utils"
)

type contextKey string

const (
	userIDKey     contextKey = "userID"
	privateKeyKey contextKey = "privateKey"
)

// Auth validates the bearer token and unlocks the caller's private key for
// the lifetime of this one request. The key rides in the request context and
// is gone when the handler returns; nothing caches it between requests.
func Auth(issuer *identity.TokenIssuer, ids *identity.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			tokenStr := bearerToken(r)
			if tokenStr == "" {
				unauthorized(w)
				return
			}

			claims, err := issuer.Parse(tokenStr)
			if err != nil {
				unauthorized(w)
				return
			}

			priv, err := ids.Unlock(r.Context(), claims.Subject, claims.Credential)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.Subject)
			ctx = context.WithValue(ctx, privateKeyKey, priv)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if cookie, err := r.Cookie("token"); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func unauthorized(w http.ResponseWriter) {
	utils.RespondError(w, http.StatusUnauthorized, "Unauthorized")
}

// UserID returns the authenticated caller's id, empty outside Auth.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// PrivateKey returns the caller's unlocked private key, nil outside Auth.
func PrivateKey(r *http.Request) *rsa.PrivateKey {
	key, _ := r.Context().Value(privateKeyKey).(*rsa.PrivateKey)
	return key
}
