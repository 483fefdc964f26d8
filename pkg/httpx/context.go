package httpx

import (
	"context"

	"github.com/aussiebroadwan/tally/pkg/jwtx"
)

type ctxKey string

const CtxKeyIdentity ctxKey = "identity"

// ContextWithIdentity stores the authenticated caller on ctx.
func ContextWithIdentity(ctx context.Context, id jwtx.Identity) context.Context {
	return context.WithValue(ctx, CtxKeyIdentity, id)
}

// IdentityFromContext returns the caller injected by AuthnMiddleware.
func IdentityFromContext(ctx context.Context) (jwtx.Identity, bool) {
	id, ok := ctx.Value(CtxKeyIdentity).(jwtx.Identity)
	return id, ok
}
