package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"orgdir/internal/token"
)

type ctxKey int

const identityKey ctxKey = 1

// Identity is the authenticated subject attached to the request context by
// the guard.
type Identity struct {
	AccountID uuid.UUID
	Email     string
}

func IdentityFromCtx(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// Guard decides admit/deny for every protected operation. It holds no state
// across requests; each call is extract -> verify -> conditionally renew.
type Guard struct {
	uc         *Usecase
	log        *zap.Logger
	cookieName string
}

func NewGuard(uc *Usecase, log *zap.Logger, cookieName string) *Guard {
	return &Guard{uc: uc, log: log, cookieName: cookieName}
}

// Middleware verifies the bearer access token and admits the request with the
// subject's identity in context. An expired token with a refresh cookie
// triggers a renewal: the fresh access token is put on the response
// Authorization header for the client's next call, but the current request is
// still denied, since its credential was invalid at call time.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearer(r)
		if raw == "" {
			unauthorized(w, "access token required")
			return
		}

		claims, err := g.uc.Tokens().VerifyAccess(raw)
		if err == nil {
			id, idErr := claims.SubjectID()
			if idErr != nil {
				unauthorized(w, "invalid access token")
				return
			}
			ctx := context.WithValue(r.Context(), identityKey, Identity{AccountID: id, Email: claims.Email})
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		if errors.Is(err, token.ErrExpired) {
			if refresh := g.refreshCookie(r); refresh != "" {
				g.renew(r.Context(), w, refresh)
			}
		}
		unauthorized(w, "invalid access token")
	})
}

// renew mints a courtesy access token from the refresh cookie. Failures are
// logged and swallowed; the caller denies the request either way.
func (g *Guard) renew(ctx context.Context, w http.ResponseWriter, refresh string) {
	access, err := g.uc.RefreshAccess(ctx, refresh)
	if err != nil {
		g.log.Debug("guard: refresh renewal failed", zap.Error(err))
		return
	}
	w.Header().Set("Authorization", "Bearer "+access)
}

func (g *Guard) refreshCookie(r *http.Request) string {
	c, err := r.Cookie(g.cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

func bearer(r *http.Request) string {
	v := r.Header.Get("Authorization")
	if !strings.HasPrefix(strings.ToLower(v), "bearer ") {
		return ""
	}
	return strings.TrimSpace(v[7:])
}
