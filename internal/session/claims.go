package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the fields of an access token the client looks at.
// The signature is not verified; the API remains the authority.
type Claims struct {
	UserID    int
	ExpiresAt time.Time // zero when the token has no exp claim
}

// Expired reports whether the token expiry is at or before now.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

// Inspect decodes the claims of a JWT access token without verifying it.
func Inspect(access string) (Claims, error) {
	mc := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(access, mc); err != nil {
		return Claims{}, fmt.Errorf("malformed access token: %w", err)
	}

	var c Claims
	exp, err := mc.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("malformed access token: %w", err)
	}
	if exp != nil {
		c.ExpiresAt = exp.Time
	}
	if uid, ok := mc["user_id"].(float64); ok {
		c.UserID = int(uid)
	}
	return c, nil
}
