package session

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

// The visitor token is the unit of view-throttling. It is minted once per
// browser and carries no expiry; it is not tied to any authenticated user.
const (
	CookieName = "promo_visitor"

	// Ten years, effectively the browser's lifetime.
	cookieMaxAge = 10 * 365 * 24 * 60 * 60
)

type contextKey struct{}

// Middleware ensures every request carries a visitor token: it reads the
// token cookie, minting and setting a fresh UUID when absent, and stores the
// token on the request context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFromCookie(r)
		if token == "" {
			token = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    token,
				Path:     "/",
				MaxAge:   cookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), contextKey{}, token)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromRequest returns the visitor token placed on the context by Middleware.
func FromRequest(r *http.Request) (string, bool) {
	token, ok := r.Context().Value(contextKey{}).(string)
	return token, ok && token != ""
}

func tokenFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
