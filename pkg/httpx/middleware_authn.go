package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/vaultmind/accountd/pkg/jwtx"
	"github.com/vaultmind/accountd/pkg/slogx"
)

type ctxKey string

const ctxKeyClaims ctxKey = "claims"

// TokenHeader is the API key header/query/cookie name clients present
// session tokens under. A standard Bearer header works too.
const TokenHeader = "x-access-token"

// AuthnMiddleware extracts and verifies a session token, rejecting the
// request with 401 when none is present or verification fails. Verified
// claims land in the request context for downstream handlers.
func AuthnMiddleware(v jwtx.Verifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := ExtractToken(r)
			if raw == "" {
				writeAuthError(w, "missing access token")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("token verification failed", "err", err)
				writeAuthError(w, "access token rejected")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithClaims(ctx, claims)))
		})
	}
}

// ExtractToken looks for a session token in the token header, an
// Authorization Bearer header, the query string, then a cookie.
func ExtractToken(r *http.Request) string {
	if v := r.Header.Get(TokenHeader); v != "" {
		return v
	}
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
	}
	if v := r.URL.Query().Get(TokenHeader); v != "" {
		return v
	}
	if c, err := r.Cookie(TokenHeader); err == nil {
		return c.Value
	}
	return ""
}

func contextWithClaims(ctx context.Context, c jwtx.Claims) context.Context {
	return context.WithValue(ctx, ctxKeyClaims, c)
}

// ClaimsFromContext returns the verified claims placed by AuthnMiddleware.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	c, ok := ctx.Value(ctxKeyClaims).(jwtx.Claims)
	return c, ok
}

func writeAuthError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": desc})
}
