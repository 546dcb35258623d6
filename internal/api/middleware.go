package api

import (
	"net/http"
	"strings"

	"novamind/backend/internal/auth"
	app_errors "novamind/backend/internal/errors"
)

// AuthMiddleware verifies the bearer token on every request and attaches the
// resolved user to the request context. The watch transports (SSE and
// websocket) cannot set headers from the browser, so a `token` query
// parameter is accepted as a fallback.
func AuthMiddleware(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := bearerToken(r)
			if tokenString == "" {
				respondWithError(w, app_errors.ErrUnauthenticated)
				return
			}

			user, err := tokens.Verify(tokenString)
			if err != nil {
				respondWithError(w, app_errors.ErrUnauthenticated)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}
	return r.URL.Query().Get("token")
}
