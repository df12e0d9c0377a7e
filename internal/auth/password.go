package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

const defaultCost = bcrypt.DefaultCost

// dummyDigest is a valid bcrypt digest of a random throwaway secret. It is
// verified when a username lookup misses, so that "unknown user" and
// "wrong password" take the same time.
const dummyDigest = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword encrypts the supplied plaintext with bcrypt. Every call salts
// independently, so hashing the same secret twice yields different digests.
func HashPassword(plaintext string) (string, error) {
	if plaintext == "" {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), defaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword verifies plaintext against a stored digest. Any mismatch,
// including a malformed digest, reports false rather than an error.
func CheckPassword(digest, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// BurnCompare performs a bcrypt comparison against a fixed digest and
// discards the result. Call it on the user-absent path of a login.
func BurnCompare(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyDigest), []byte(plaintext))
}
