package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/tally/internal/tally/store/drivers/sqlite"
	"github.com/aussiebroadwan/tally/pkg/cryptox"
	"github.com/aussiebroadwan/tally/pkg/jwtx"
)

var testSecret = []byte(strings.Repeat("s", jwtx.MinSecretLength))

func newTokens(t *testing.T, lifetime time.Duration) *TokenService {
	t.Helper()

	ts, err := NewTokenService(jwtx.TokenConfig{
		Secret:   testSecret,
		Issuer:   "tally",
		Audience: "tally-clients",
		Lifetime: lifetime,
	})
	require.NoError(t, err)
	return ts
}

func newAuth(t *testing.T, hasher cryptox.Hasher) *AuthService {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.ApplyMigrations())
	t.Cleanup(func() { _ = s.Close() })

	return &AuthService{Store: s, Hasher: hasher, Tokens: newTokens(t, time.Hour)}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t, &cryptox.Argon2idHasher{Pepper: "pepper"})

	var events []string
	auth.OnEvent = func(event, outcome string) { events = append(events, event+":"+outcome) }

	res, err := auth.Register(ctx, "alice", "alice@example.com", "s3cret!")
	require.NoError(t, err)
	require.Equal(t, "alice", res.Username)
	require.Equal(t, "alice@example.com", res.Email)
	require.Len(t, strings.Split(res.Token, "."), 3)

	t.Run("stored digest is not the password", func(t *testing.T) {
		u, err := auth.Store.Users().GetUserByUsername(ctx, "alice")
		require.NoError(t, err)
		require.NotEqual(t, "s3cret!", u.PasswordHash)
		require.NotContains(t, u.PasswordHash, "s3cret!")
		require.True(t, auth.Hasher.Verify("s3cret!", u.PasswordHash))
	})

	t.Run("token identifies the new user", func(t *testing.T) {
		id, err := auth.Tokens.Validate(ctx, res.Token)
		require.NoError(t, err)
		require.Equal(t, "alice", id.Username)
		require.Equal(t, "alice@example.com", id.Email)
		require.NotEmpty(t, id.UserID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := auth.Register(ctx, "alice", "other@example.com", "x")
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := auth.Register(ctx, "alice2", "alice@example.com", "x")
		require.ErrorIs(t, err, ErrConflict)
	})

	t.Run("validation", func(t *testing.T) {
		for _, in := range [][3]string{
			{"", "e@x.io", "p"},
			{"  ", "e@x.io", "p"},
			{"u", "", "p"},
			{"u", "e@x.io", ""},
		} {
			_, err := auth.Register(ctx, in[0], in[1], in[2])
			require.ErrorIs(t, err, ErrValidation, in)
		}
	})

	require.Equal(t, "register:success", events[0])
	require.Contains(t, events, "register:conflict")
	require.Contains(t, events, "register:invalid")
}

func TestRegisterConcurrentDuplicates(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t, cryptox.SHA256Hasher{})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := auth.Register(ctx, "bob", "bob@example.com", "pw")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if err == ErrConflict {
				conflicts++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, ok)
	require.Equal(t, 5, conflicts)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t, &cryptox.Argon2idHasher{Pepper: "pepper"})

	_, err := auth.Register(ctx, "alice", "alice@example.com", "s3cret!")
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		res, err := auth.Login(ctx, "alice", "s3cret!")
		require.NoError(t, err)
		require.Equal(t, "alice", res.Username)

		id, err := auth.Tokens.Validate(ctx, res.Token)
		require.NoError(t, err)
		require.Equal(t, "alice", id.Username)
	})

	t.Run("wrong password and unknown user look the same", func(t *testing.T) {
		_, wrongPw := auth.Login(ctx, "alice", "nope")
		_, unknown := auth.Login(ctx, "mallory", "nope")

		require.ErrorIs(t, wrongPw, ErrInvalidCredentials)
		require.ErrorIs(t, unknown, ErrInvalidCredentials)
		require.Equal(t, wrongPw.Error(), unknown.Error())
	})

	t.Run("username is case sensitive", func(t *testing.T) {
		_, err := auth.Login(ctx, "Alice", "s3cret!")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestLoginWithLegacyDigest(t *testing.T) {
	ctx := context.Background()

	legacy := newAuth(t, cryptox.SHA256Hasher{})
	_, err := legacy.Register(ctx, "old", "old@example.com", "pw")
	require.NoError(t, err)

	// Switch the primary hasher to argon2id; the old digest keeps working.
	h, err := cryptox.NewHasher(cryptox.HasherArgon2id, "pepper")
	require.NoError(t, err)
	legacy.Hasher = h

	_, err = legacy.Login(ctx, "old", "pw")
	require.NoError(t, err)
}

func TestMe(t *testing.T) {
	ctx := context.Background()
	auth := newAuth(t, cryptox.SHA256Hasher{})

	res, err := auth.Register(ctx, "alice", "alice@example.com", "pw")
	require.NoError(t, err)
	id, err := auth.Tokens.Validate(ctx, res.Token)
	require.NoError(t, err)

	u, err := auth.Me(ctx, id.UserID)
	require.NoError(t, err)
	require.Equal(t, "alice", u.Username)

	_, err = auth.Me(ctx, "01HQ7T3Z1MZ0JQ3M6MZQ1FQ3ZV")
	require.ErrorIs(t, err, ErrNotFound)
}
