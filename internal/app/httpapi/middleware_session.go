package httpapi

import (
	"context"
	"net/http"

	"github.com/urbanthread/storefront/internal/app/domain/identity"
)

type contextKey string

const ctxPrincipalKey contextKey = "principal"

// requireSession guards administrative endpoints. The request must carry the
// session cookie and the token must resolve in the session store; otherwise
// the wrapped handler never runs. The resolved principal is attached to the
// request context.
func (h *handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(sessionCookie)
		if err != nil || cookie.Value == "" {
			writeMessage(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		principal, ok := h.app.Sessions.Resolve(cookie.Value)
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Not authorized")
			return
		}

		ctx := context.WithValue(r.Context(), ctxPrincipalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// principalFrom returns the authenticated principal attached by
// requireSession, if any.
func principalFrom(ctx context.Context) (identity.User, bool) {
	principal, ok := ctx.Value(ctxPrincipalKey).(identity.User)
	return principal, ok
}
