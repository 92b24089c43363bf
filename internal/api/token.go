package api

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired is returned by InspectToken for a token past its expiry.
var ErrTokenExpired = errors.New("token expired")

// TokenInfo holds the claims the client cares about. The signature is
// not verified here; the backend does that on every request.
type TokenInfo struct {
	Subject   string
	ExpiresAt time.Time
}

// InspectToken parses a bearer token without verifying it and reports
// ErrTokenExpired when its exp claim has passed at now. Tokens without
// an exp claim never expire client-side.
func InspectToken(token string, now time.Time) (TokenInfo, error) {
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return TokenInfo{}, fmt.Errorf("parsing token: %w", err)
	}

	info := TokenInfo{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(info.ExpiresAt) {
			return info, ErrTokenExpired
		}
	}
	return info, nil
}
