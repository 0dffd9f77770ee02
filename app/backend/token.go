package backend

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo holds the claims of an API token the client cares about
type TokenInfo struct {
	Subject string
	Expires time.Time // zero without an exp claim
}

// ParseToken reads the claims of a JWT API token without verifying the
// signature; the backend does that. ok is false for opaque tokens.
func ParseToken(raw string) (TokenInfo, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return TokenInfo{}, false
	}

	token, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	if err != nil {
		return TokenInfo{}, false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return TokenInfo{}, false
	}

	var info TokenInfo
	if sub, err := claims.GetSubject(); err == nil {
		info.Subject = sub
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		info.Expires = exp.Time
	}
	return info, true
}
