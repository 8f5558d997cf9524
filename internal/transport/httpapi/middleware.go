package httpapi

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	domainauth "github.com/NordCoder/Authly/internal/domain/auth"
	"github.com/NordCoder/Authly/internal/domain/user"
)

type ctxKey int

const (
	claimsKey ctxKey = iota
	userKey
)

func ClaimsFromContext(ctx context.Context) (*domainauth.AccessClaims, bool) {
	c, ok := ctx.Value(claimsKey).(*domainauth.AccessClaims)
	return c, ok
}

func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(userKey).(*user.User)
	return u, ok
}

// BlacklistChecker reports whether an access token id has been revoked.
type BlacklistChecker interface {
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

// Auth gates authenticated routes: it decodes the bearer token, rejects
// revoked token ids, loads the current user and injects both into the
// request context. A blacklist-check failure rejects the request (fail
// closed): letting a revoked token through is worse than bouncing a valid
// one.
func Auth(codec domainauth.TokenCodec, gate BlacklistChecker, users user.Repo, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}
			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				writeError(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			claims, err := codec.Decode(parts[1])
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			blacklisted, err := gate.IsBlacklisted(r.Context(), claims.JTI)
			if err != nil {
				log.Error("blacklist check failed; rejecting request", zap.Error(err))
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			if blacklisted {
				writeError(w, http.StatusUnauthorized, "token revoked")
				return
			}

			u, err := users.GetByID(r.Context(), claims.Sub)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			ctx = context.WithValue(ctx, userKey, u)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
