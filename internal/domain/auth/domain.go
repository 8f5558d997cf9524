package auth

import "errors"

var (
	ErrEmailExists        = errors.New("email already registered")
	ErrUserNotFound       = errors.New("user not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrHashingFailed      = errors.New("password hashing failed")
	ErrVerificationFailed = errors.New("password verification failed")
)

// AccessClaims is the payload of a signed access token. JTI is the
// revocation key: blacklisting a token means storing its JTI until Exp.
type AccessClaims struct {
	Sub string `json:"sub"`
	JTI string `json:"jti"`
	Iat int64  `json:"iat"`
	Exp int64  `json:"exp"`
}
