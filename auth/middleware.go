package auth

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

// UserKey carries the authenticated operator through request contexts.
const UserKey contextKey = "user"

// SessionCookie is where the console stores its token after login.
const SessionCookie = "session"

// Middleware rejects requests without a valid session token. The token is
// read from the Authorization header first, then from the session cookie,
// so both curl and the browser console work.
func Middleware(issuer *TokenIssuer, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie(SessionCookie); err == nil {
				tokenString = cookie.Value
			}
		}
		if tokenString == "" {
			http.Error(w, "authorization token is missing", http.StatusUnauthorized)
			return
		}

		claims, err := issuer.Validate(tokenString)
		if err != nil {
			http.Error(w, "invalid or expired token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserKey, claims.User)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}
