package auth

import (
	"crypto/hmac"

	"github.com/lingvera/lingvera/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 3
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	hashLen      = 32
	saltLen      = 32
)

// HashPassword derives an argon2id hash with a fresh random salt and returns
// salt‖hash for storage.
func HashPassword(password string) []byte {
	salt := common.GenerateRandByteArray(saltLen)
	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, hashLen)

	result := make([]byte, saltLen+hashLen)
	copy(result[:saltLen], salt)
	copy(result[saltLen:], hash)
	return result
}

// VerifyPassword re-derives the hash with the stored salt and compares in
// constant time.
func VerifyPassword(password string, stored []byte) bool {
	if len(stored) != saltLen+hashLen {
		return false
	}
	salt := stored[:saltLen]
	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, hashLen)
	return hmac.Equal(stored[saltLen:], computed)
}
