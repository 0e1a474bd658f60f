package sweetshop

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the exp claim of token without verifying it. The token
// stays opaque for validity, the expiry is only used to bound how long the
// client keeps it around. ok is false when token is not a JWT or carries no
// expiration.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// TokenLifetime returns how long a token should be persisted: until its
// expiry when known, otherwise def.
func TokenLifetime(token string, now time.Time, def time.Duration) time.Duration {
	exp, ok := TokenExpiry(token)
	if !ok {
		return def
	}
	if d := exp.Sub(now); d > 0 {
		return d
	}
	return 0
}
