package cryptox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSHA256Hasher(t *testing.T) {
	h := SHA256Hasher{}

	t.Run("known digest", func(t *testing.T) {
		digest, err := h.Hash("password")
		require.NoError(t, err)
		require.Equal(t, "XohImNooBHFR0OVvjcYpJ3NgPQ1qq73WKhHvch0VQtg=", digest)
	})

	t.Run("empty password", func(t *testing.T) {
		digest, err := h.Hash("")
		require.NoError(t, err)
		require.Equal(t, "47DEQpj8HBSa+/TImW+5JCeuQeRkm5NMpJWZG3hSuFU=", digest)
		require.True(t, h.Verify("", digest))
	})

	t.Run("deterministic", func(t *testing.T) {
		a, _ := h.Hash("s3cret")
		b, _ := h.Hash("s3cret")
		require.Equal(t, a, b)
		require.NotEqual(t, "s3cret", a)
	})

	t.Run("mismatch", func(t *testing.T) {
		digest, _ := h.Hash("s3cret")
		require.False(t, h.Verify("S3cret", digest))
		require.False(t, h.Verify("s3cret", ""))
	})
}

func TestArgon2idHasher(t *testing.T) {
	h := &Argon2idHasher{Pepper: "pepper"}

	tests := []struct {
		name     string
		password string
	}{
		{"simple password", "password123"},
		{"complex password", "P@ssw0rd!#$%^&*()"},
		{"long password", strings.Repeat("a", 100)},
		{"empty password", ""},
		{"unicode password", "пароль🔒密码"},
		{"whitespace password", "   spaces   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, err := h.Hash(tt.password)
			require.NoError(t, err)
			require.True(t, strings.HasPrefix(hash, "$argon2id$v=19$"), "hash should be in PHC format")
			require.Len(t, strings.Split(hash, "$"), 6)
			require.NotContains(t, hash, tt.password+"$")

			require.True(t, h.Verify(tt.password, hash))
			require.False(t, h.Verify(tt.password+"x", hash))
		})
	}

	t.Run("salted", func(t *testing.T) {
		a, err := h.Hash("same")
		require.NoError(t, err)
		b, err := h.Hash("same")
		require.NoError(t, err)
		require.NotEqual(t, a, b)
	})

	t.Run("pepper matters", func(t *testing.T) {
		hash, err := h.Hash("secret")
		require.NoError(t, err)

		other := &Argon2idHasher{Pepper: "different"}
		require.False(t, other.Verify("secret", hash))
	})

	t.Run("invalid formats", func(t *testing.T) {
		for _, bad := range []string{
			"",
			"not-a-hash",
			"$argon2i$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=x,t=2,p=1$c2FsdA$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
			"$argon2id$v=19$m=19456,t=2,p=1$c2FsdA$",
		} {
			require.False(t, h.Verify("secret", bad), bad)
		}
	})
}

func TestMultiHasher(t *testing.T) {
	t.Run("argon2id primary verifies legacy digests", func(t *testing.T) {
		h, err := NewHasher(HasherArgon2id, "pepper")
		require.NoError(t, err)

		hash, err := h.Hash("secret")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$"))
		require.True(t, h.Verify("secret", hash))

		legacy, _ := SHA256Hasher{}.Hash("secret")
		require.True(t, h.Verify("secret", legacy))
		require.False(t, h.Verify("wrong", legacy))
	})

	t.Run("sha256 primary", func(t *testing.T) {
		h, err := NewHasher("SHA256", "")
		require.NoError(t, err)

		hash, err := h.Hash("secret")
		require.NoError(t, err)
		require.Equal(t, "K7gNU3sdo+OL0wNhqoVWhr3g6s1xYv72ol/pe/Unols=", hash)
		require.True(t, h.Verify("secret", hash))
	})

	t.Run("default is argon2id", func(t *testing.T) {
		h, err := NewHasher("", "p")
		require.NoError(t, err)
		hash, err := h.Hash("x")
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := NewHasher("bcrypt", "")
		require.Error(t, err)
	})
}

func TestLoadOrGeneratePepper(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "pepper")

	first, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Len(t, first, 43)

	second, err := LoadOrGeneratePepper(path)
	require.NoError(t, err)
	require.Equal(t, first, second)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestGenerateToken(t *testing.T) {
	tok, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.Len(t, tok, 43)

	other, err := GenerateToken(TokenSize256)
	require.NoError(t, err)
	require.NotEqual(t, tok, other)

	_, err = GenerateToken(0)
	require.Error(t, err)
}
