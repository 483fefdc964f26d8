package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	HasherSHA256   = "sha256"
	HasherArgon2id = "argon2id"
)

// Hasher turns plaintext passwords into stored digests and checks them again
// later. Implementations must never return the plaintext itself.
type Hasher interface {
	Hash(password string) (string, error)
	Verify(password, digest string) bool
}

// SHA256Hasher is the unsalted legacy digest: base64(sha256(password)). It is
// deterministic, so two users with the same password share a digest. Kept so
// existing credential rows keep verifying; prefer Argon2idHasher for new ones.
type SHA256Hasher struct{}

func (SHA256Hasher) Hash(password string) (string, error) {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:]), nil
}

func (h SHA256Hasher) Verify(password, digest string) bool {
	computed, _ := h.Hash(password)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) == 1
}

// MultiHasher hashes with Primary and verifies with whichever hasher produced
// the stored digest, so switching algorithms does not lock anyone out.
type MultiHasher struct {
	Primary Hasher
	Argon2  *Argon2idHasher
	Legacy  SHA256Hasher
}

func (m *MultiHasher) Hash(password string) (string, error) {
	return m.Primary.Hash(password)
}

func (m *MultiHasher) Verify(password, digest string) bool {
	if strings.HasPrefix(digest, "$argon2id$") {
		if m.Argon2 == nil {
			return false
		}
		return m.Argon2.Verify(password, digest)
	}
	return m.Legacy.Verify(password, digest)
}

// NewHasher builds the hasher selected by name. The pepper only applies to
// argon2id digests.
func NewHasher(name, pepper string) (Hasher, error) {
	argon := &Argon2idHasher{Pepper: pepper}

	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", HasherArgon2id:
		return &MultiHasher{Primary: argon, Argon2: argon}, nil
	case HasherSHA256:
		return &MultiHasher{Primary: SHA256Hasher{}, Argon2: argon}, nil
	default:
		return nil, fmt.Errorf("cryptox: unknown password hasher %q", name)
	}
}
