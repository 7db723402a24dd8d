// Package cryptox implements credential hashing for the mirror's offline
// credential map. Passwords are never stored: the mirror keeps a per-account
// random salt and an argon2-derived verifier, and offline login re-derives
// and compares in constant time.
package cryptox

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"

	"golang.org/x/crypto/argon2"
)

const saltSize = 32

// NewSalt returns a fresh random salt for credential derivation.
func NewSalt() []byte {
	b := make([]byte, saltSize)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return b
}

// DeriveKey stretches a password with argon2id.
func DeriveKey(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// MakeVerifier hashes a derived key into the value stored in the mirror.
func MakeVerifier(key []byte) []byte {
	hash := sha256.Sum256(key)
	return hash[:]
}

// HashCredential produces the (salt, verifier) pair persisted for an account.
func HashCredential(password string) (salt, verifier []byte) {
	salt = NewSalt()
	verifier = MakeVerifier(DeriveKey([]byte(password), salt))
	return salt, verifier
}

// VerifyCredential reports whether password matches the stored salt/verifier
// pair. Comparison is constant-time.
func VerifyCredential(password string, salt, verifier []byte) bool {
	candidate := MakeVerifier(DeriveKey([]byte(password), salt))
	return subtle.ConstantTimeCompare(verifier, candidate) == 1
}
