package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/NordCoder/Authly/internal/domain/auth"
)

var testSecret = []byte("unit-test-signing-secret")

func TestCodec_IssueAndDecode(t *testing.T) {
	c := NewCodec(testSecret)

	token, issued, err := c.Issue("user-42", 15*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.NotEmpty(t, issued.JTI)

	claims, err := c.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.Sub)
	assert.Equal(t, issued.JTI, claims.JTI)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), claims.Exp-claims.Iat)
}

func TestCodec_JTIUniquePerIssuance(t *testing.T) {
	c := NewCodec(testSecret)

	seen := make(map[string]bool)
	for range 50 {
		_, claims, err := c.Issue("user-42", time.Minute)
		require.NoError(t, err)
		require.False(t, seen[claims.JTI], "jti issued twice: %s", claims.JTI)
		seen[claims.JTI] = true
	}
}

func TestCodec_ExpiredToken(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := NewCodec(testSecret).WithClock(func() time.Time { return base })

	token, _, err := c.Issue("user-42", time.Minute)
	require.NoError(t, err)

	// Still valid just before expiry.
	early := c.WithClock(func() time.Time { return base.Add(59 * time.Second) })
	_, err = early.Decode(token)
	require.NoError(t, err)

	late := c.WithClock(func() time.Time { return base.Add(2 * time.Minute) })
	_, err = late.Decode(token)
	assert.ErrorIs(t, err, domainauth.ErrTokenExpired)
}

func TestCodec_InvalidTokens(t *testing.T) {
	c := NewCodec(testSecret)

	token, _, err := c.Issue("user-42", time.Minute)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		other := NewCodec([]byte("a-different-secret"))
		_, err := other.Decode(token)
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("tampered payload", func(t *testing.T) {
		_, err := c.Decode(token[:len(token)-4] + "AAAA")
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := c.Decode("not.a.jwt")
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := c.Decode("")
		assert.ErrorIs(t, err, domainauth.ErrInvalidToken)
	})
}
