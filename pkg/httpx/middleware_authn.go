package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/tally/pkg/jwtx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// TokenValidator turns a raw bearer token into the caller's identity.
type TokenValidator interface {
	Validate(ctx context.Context, raw string) (jwtx.Identity, error)
}

// AuthnMiddleware rejects requests without a valid bearer token. Every failure
// gets the same 401 so callers cannot tell which check failed.
func AuthnMiddleware(v TokenValidator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				writeBearerError(w)
				return
			}

			id, err := v.Validate(ctx, raw)
			if err != nil {
				writeBearerError(w)
				return
			}

			ctx = slogx.With(ctx, "user_id", id.UserID)
			next.ServeHTTP(w, r.WithContext(ContextWithIdentity(ctx, id)))
		})
	}
}

func bearerToken(header string) (string, bool) {
	scheme, raw, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	raw = strings.TrimSpace(raw)
	return raw, raw != ""
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	w.WriteHeader(http.StatusUnauthorized)
}
