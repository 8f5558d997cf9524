package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	domainauth "github.com/NordCoder/Authly/internal/domain/auth"
)

// Codec signs and verifies HS256 access tokens carrying sub/jti/iat/exp.
// Every issuance gets a fresh random jti; nothing else is randomized.
type Codec struct {
	secret []byte
	now    func() time.Time
}

var _ domainauth.TokenCodec = (*Codec)(nil)

func NewCodec(secret []byte) *Codec {
	return &Codec{secret: secret, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock returns a copy of the codec using fn as its time source.
func (c *Codec) WithClock(fn func() time.Time) *Codec {
	cp := *c
	cp.now = fn
	return &cp
}

func (c *Codec) Issue(subject string, ttl time.Duration) (string, *domainauth.AccessClaims, error) {
	now := c.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", nil, fmt.Errorf("sign access token: %w", err)
	}

	return signed, &domainauth.AccessClaims{
		Sub: claims.Subject,
		JTI: claims.ID,
		Iat: claims.IssuedAt.Unix(),
		Exp: claims.ExpiresAt.Unix(),
	}, nil
}

func (c *Codec) Decode(token string) (*domainauth.AccessClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return c.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, domainauth.ErrTokenExpired
		}
		return nil, domainauth.ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.IssuedAt == nil {
		return nil, domainauth.ErrInvalidToken
	}

	return &domainauth.AccessClaims{
		Sub: claims.Subject,
		JTI: claims.ID,
		Iat: claims.IssuedAt.Unix(),
		Exp: claims.ExpiresAt.Unix(),
	}, nil
}
