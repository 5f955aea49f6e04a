package auth

import (
	"errors"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the payload of the access tokens issued by the API.
// The storefront never holds the signing key, so tokens are only inspected.
type Claims struct {
	UserID    string `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

var ErrMalformed = errors.New("malformed token")

func Inspect(tokenStr string) (*Claims, error) {
	c := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, c); err != nil {
		return nil, errors.Join(ErrMalformed, err)
	}
	return c, nil
}

// Expired reports whether tokenStr carries an exp claim that is before now+leeway.
// Opaque tokens and tokens without exp are never considered expired; the API decides.
func Expired(tokenStr string, now time.Time, leeway time.Duration) bool {
	c, err := Inspect(tokenStr)
	if err != nil || c.ExpiresAt == nil {
		return false
	}
	return !c.ExpiresAt.Time.After(now.Add(leeway))
}
