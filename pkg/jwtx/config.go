package jwtx

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidToken is the only error callers outside the token service should
// see. The specific reason is kept for logs and metrics.
var ErrInvalidToken = errors.New("jwtx: invalid token")

var (
	ErrMissingIssuer   = errors.New("jwtx: issuer is required")
	ErrMissingAudience = errors.New("jwtx: audience is required")
	ErrNegativeTTL     = errors.New("jwtx: token lifetime must not be negative")
)

// TokenConfig is the signing configuration shared by issuing and validating.
type TokenConfig struct {
	Secret   []byte
	Issuer   string
	Audience string
	Lifetime time.Duration
}

// Validate rejects configurations that would produce forgeable or unusable
// tokens. A zero Lifetime is allowed and yields tokens that are already expired.
func (c TokenConfig) Validate() error {
	var errs []error
	if len(c.Secret) < MinSecretLength {
		errs = append(errs, fmt.Errorf("%w: got %d bytes, need %d", ErrWeakSecret, len(c.Secret), MinSecretLength))
	}
	if strings.TrimSpace(c.Issuer) == "" {
		errs = append(errs, ErrMissingIssuer)
	}
	if strings.TrimSpace(c.Audience) == "" {
		errs = append(errs, ErrMissingAudience)
	}
	if c.Lifetime < 0 {
		errs = append(errs, ErrNegativeTTL)
	}
	return errors.Join(errs...)
}
