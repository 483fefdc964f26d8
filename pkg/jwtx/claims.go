package jwtx

import (
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/tally/pkg/idx"
)

// DefaultTokenLifetime is used when no lifetime is configured or the configured
// value cannot be parsed.
const DefaultTokenLifetime = 60 * time.Minute

// Claims are the access-token claims issued by tally. Identity fields sit next
// to the registered claims so other services can read them without a lookup.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user
	Name string `json:"name,omitempty"`

	// Email of the authenticated user
	Email string `json:"email,omitempty"`
}

// Identity is what a validated token asserts about its bearer.
type Identity struct {
	UserID   string
	Username string
	Email    string
}

// NewAccessClaims builds the claims for a freshly issued token.
func NewAccessClaims(
	id Identity,
	issuer, audience string,
	ttl time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   id.UserID,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        idx.NewAt(now).String(),
		},
		Name:  id.Username,
		Email: id.Email,
	}
}

// Identity returns the identity asserted by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:   c.Subject,
		Username: c.Name,
		Email:    c.Email,
	}
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateAudience checks that the expected audience is present.
func (c *Claims) ValidateAudience(expected string) error {
	if !slices.Contains(c.Audience, expected) {
		return ErrAudience
	}
	return nil
}

// ValidateExpiry requires now to be strictly before exp. There is no leeway,
// a token is dead the second it reaches its expiry.
func (c *Claims) ValidateExpiry(now time.Time) error {
	if c.ExpiresAt == nil {
		return ErrInvalidClaim
	}
	if !now.Before(c.ExpiresAt.Time) {
		return ErrExpired
	}
	return nil
}
