package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// TokenService issues and validates HS256 bearer tokens. It holds only the
// immutable signing configuration and is safe for concurrent use.
type TokenService struct {
	signer   jwtx.Signer
	verifier jwtx.Verifier

	Issuer   string
	Audience string
	Lifetime time.Duration

	// Now is the clock used for iat/exp and expiry checks.
	Now func() time.Time

	// OnReject is called with the reason label of every rejected token.
	OnReject func(reason string)
}

// NewTokenService validates cfg and builds a service around it.
func NewTokenService(cfg jwtx.TokenConfig) (*TokenService, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	signer, err := jwtx.NewSignerHS256(cfg.Secret)
	if err != nil {
		return nil, err
	}

	s := &TokenService{
		signer:   signer,
		Issuer:   cfg.Issuer,
		Audience: cfg.Audience,
		Lifetime: cfg.Lifetime,
		Now:      time.Now,
	}
	s.verifier = jwtx.NewVerifierHS256(cfg.Secret, cfg.Issuer, cfg.Audience).
		WithClock(func() time.Time { return s.now() })
	return s, nil
}

func (s *TokenService) now() time.Time {
	if s.Now == nil {
		return time.Now()
	}
	return s.Now()
}

// Issue signs a token asserting u's identity, valid for Lifetime.
func (s *TokenService) Issue(u domain.User) (string, error) {
	claims := jwtx.NewAccessClaims(
		jwtx.Identity{UserID: u.ID, Username: u.Username, Email: u.Email},
		s.Issuer,
		s.Audience,
		s.Lifetime,
		s.now().UTC(),
	)
	return s.signer.Sign(claims)
}

// Validate checks raw and returns the identity it asserts. Every failure is
// reported as jwtx.ErrInvalidToken.
func (s *TokenService) Validate(ctx context.Context, raw string) (jwtx.Identity, error) {
	claims, err := s.verifier.Verify(raw)
	if err == nil && claims.Subject == "" {
		err = jwtx.ErrInvalidClaim
	}
	if err != nil {
		reason := jwtx.Reason(err)
		slogx.FromContext(ctx).Debug("token rejected", "reason", reason, "err", err)
		if s.OnReject != nil {
			s.OnReject(reason)
		}
		return jwtx.Identity{}, jwtx.ErrInvalidToken
	}
	return claims.Identity(), nil
}
