package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/feiralabs/feira/pkg/jwtx"
	"github.com/feiralabs/feira/pkg/slogx"
)

// AccessVerifier verifies an access token and returns its claims.
// *jwtx.AccessIssuer satisfies this; tests can substitute fakes.
type AccessVerifier interface {
	Verify(token string) (jwtx.AccessClaims, error)
}

// BearerAuth verifies the Authorization header against the access secret and
// injects the claims into the request context. Requests with a missing,
// garbled, expired, or wrongly signed token are rejected with 401 before the
// handler runs. No store access happens here; the signature and expiry check
// is the whole decision.
func BearerAuth(v AccessVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("access token rejected", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			ctx = contextWithAuth(ctx, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func contextWithAuth(ctx context.Context, c jwtx.AccessClaims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, c.Subject)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, "unauthorized")
}
