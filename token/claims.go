package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

var ErrMalformedToken = errors.New("malformed access token")

// Claims is the subset of the API's access token the client relies on.
// The client cannot verify the signature (the key stays on the API), so
// these values are hints for display and profile lookup, never for authorisation.
type Claims struct {
	UserID    string
	TokenType string
	JTI       string
	ExpiresAt time.Time // Zero when the token carries no exp claim
}

// Parse decodes the claims of rawToken without verifying it
func Parse(rawToken string) (Claims, error) {
	if strings.TrimSpace(rawToken) == "" {
		return Claims{}, ErrMalformedToken
	}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(rawToken, jwtlib.MapClaims{})
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	mapClaims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return Claims{}, fmt.Errorf("%w: error extracting claims", ErrMalformedToken)
	}

	claims := Claims{
		UserID:    claimString(mapClaims["user_id"]),
		TokenType: claimString(mapClaims["token_type"]),
		JTI:       claimString(mapClaims["jti"]),
	}
	if claims.UserID == "" {
		claims.UserID = claimString(mapClaims["sub"])
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if exp != nil {
		claims.ExpiresAt = exp.Time
	}

	return claims, nil
}

// Remaining returns how long the token stays valid after now, or zero
func (c Claims) Remaining(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	if left := c.ExpiresAt.Sub(now); left > 0 {
		return left
	}
	return 0
}

// Expired reports whether the exp claim is in the past. Tokens without exp never expire.
func (c Claims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && !now.Before(c.ExpiresAt)
}

func claimString(v any) string {
	switch value := v.(type) {
	case string:
		return value
	case float64:
		return fmt.Sprintf("%.0f", value)
	case nil:
		return ""
	default:
		return fmt.Sprint(value)
	}
}
