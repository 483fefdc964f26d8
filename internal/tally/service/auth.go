package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aussiebroadwan/tally/internal/tally/domain"
	"github.com/aussiebroadwan/tally/internal/tally/store"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/slogx"
)

// Auth event names and outcomes passed to AuthService.OnEvent.
const (
	EventRegister = "register"
	EventLogin    = "login"

	OutcomeSuccess            = "success"
	OutcomeConflict           = "conflict"
	OutcomeInvalid            = "invalid"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeError              = "error"
)

// AuthResult is what a successful register or login hands back to the caller.
type AuthResult struct {
	Token    string
	Username string
	Email    string
}

type AuthService struct {
	Store  store.Store
	Hasher cryptox.Hasher
	Tokens *TokenService

	// OnEvent is called once per attempt with the event and an outcome label.
	OnEvent func(event, outcome string)

	dummyOnce   sync.Once
	dummyDigest string
}

// Register creates an account and signs the new user in.
//
// The password is hashed before any storage call so a slow hash never holds
// a connection or transaction. The early lookup only produces a friendlier
// error; the UNIQUE constraints decide races between concurrent registrations.
func (s *AuthService) Register(
	ctx context.Context,
	username, email, password string,
) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		s.event(EventRegister, OutcomeInvalid)
		return AuthResult{}, fmt.Errorf("%w: username, email and password are required", ErrValidation)
	}

	digest, err := s.Hasher.Hash(password)
	if err != nil {
		s.event(EventRegister, OutcomeError)
		l.Error("registration failed", "err", err)
		return AuthResult{}, fmt.Errorf("hash password: %w", err)
	}

	var user domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Users().FindByUsernameOrEmail(ctx, username, email)
		switch {
		case err == nil:
			return ErrConflict
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		user, err = tx.Users().CreateUser(ctx, domain.User{
			Username:     username,
			Email:        email,
			PasswordHash: digest,
		})
		if errors.Is(err, store.ErrAlreadyExists) {
			return ErrConflict
		}
		return err
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.event(EventRegister, OutcomeConflict)
			l.Info("registration rejected, username or email taken", "username", username)
			return AuthResult{}, err
		}
		s.event(EventRegister, OutcomeError)
		l.Error("registration failed", "err", err)
		return AuthResult{}, err
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		s.event(EventRegister, OutcomeError)
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.event(EventRegister, OutcomeSuccess)
	l.Info("user registered", "user_id", user.ID, "username", user.Username)
	return AuthResult{Token: token, Username: user.Username, Email: user.Email}, nil
}

// Login checks credentials and issues a token. Unknown usernames and wrong
// passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (AuthResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Burn the same hashing work as a real verify.
			s.Hasher.Verify(password, s.dummy())
			s.event(EventLogin, OutcomeInvalidCredentials)
			return AuthResult{}, ErrInvalidCredentials
		}
		s.event(EventLogin, OutcomeError)
		l.Error("login lookup failed", "err", err)
		return AuthResult{}, err
	}

	if !s.Hasher.Verify(password, user.PasswordHash) {
		s.event(EventLogin, OutcomeInvalidCredentials)
		return AuthResult{}, ErrInvalidCredentials
	}

	token, err := s.Tokens.Issue(user)
	if err != nil {
		s.event(EventLogin, OutcomeError)
		return AuthResult{}, fmt.Errorf("issue token: %w", err)
	}

	s.event(EventLogin, OutcomeSuccess)
	l.Debug("login succeeded", "user_id", user.ID)
	return AuthResult{Token: token, Username: user.Username, Email: user.Email}, nil
}

// Me returns the stored account behind an authenticated user id.
func (s *AuthService) Me(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrNotFound
	}
	return u, err
}

func (s *AuthService) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyDigest, _ = s.Hasher.Hash("tally-login-timing-equaliser")
	})
	return s.dummyDigest
}

func (s *AuthService) event(event, outcome string) {
	if s.OnEvent != nil {
		s.OnEvent(event, outcome)
	}
}
