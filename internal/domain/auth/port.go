package auth

import (
	"context"
	"time"
)

// PasswordHasher hashes credentials one-way with a per-call salt.
// Verify returns false (not an error) for a wrong password; an error means
// the stored hash is not well-formed.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenCodec signs and verifies self-contained access tokens. Decode
// enforces expiry itself; callers must not re-derive it from the claims.
type TokenCodec interface {
	Issue(subject string, ttl time.Duration) (token string, claims *AccessClaims, err error)
	Decode(token string) (*AccessClaims, error)
}

// TokenCache is a keyed TTL store holding refresh-token mappings and
// blacklisted access-token ids. Entries vanish on their own after the TTL;
// nothing is ever evicted manually.
type TokenCache interface {
	StoreRefreshToken(ctx context.Context, userID, token string, ttl time.Duration) error
	// GetRefreshToken reports the mapped user id. Absent (expired or never
	// issued) is ("", false, nil), not an error.
	GetRefreshToken(ctx context.Context, token string) (string, bool, error)
	BlacklistAccessToken(ctx context.Context, jti string, ttl time.Duration) error
	IsAccessTokenBlacklisted(ctx context.Context, jti string) (bool, error)
}
