package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash := HashPassword("correct horse battery staple")

	assert.Len(t, hash, saltLen+hashLen)
	assert.True(t, VerifyPassword("correct horse battery staple", hash))
	assert.False(t, VerifyPassword("wrong password", hash))
}

func TestHashPassword_SaltedPerCall(t *testing.T) {
	h1 := HashPassword("same password")
	h2 := HashPassword("same password")
	assert.NotEqual(t, h1, h2)
}

func TestVerifyPassword_MalformedStoredHash(t *testing.T) {
	assert.False(t, VerifyPassword("anything", nil))
	assert.False(t, VerifyPassword("anything", []byte("short")))
}
