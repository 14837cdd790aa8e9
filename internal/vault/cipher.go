package vault

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	"github.com/lingvera/lingvera/internal/common"
)

// NonceLen is the length of the random nonce prefixed to every envelope.
const NonceLen = 12

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext with AES-256-GCM under key and returns the
// on-disk envelope: a fresh random nonce followed by ciphertext+tag.
// A new nonce is drawn per call; with a fixed per-process key this is the
// minimum safe reuse policy for the mode.
func Encrypt(plaintext, key []byte) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrEncryption, err)
	}

	envelope := make([]byte, NonceLen, NonceLen+len(plaintext)+aead.Overhead())
	if _, err := rand.Read(envelope[:NonceLen]); err != nil {
		return nil, fmt.Errorf("%w: nonce: %v", common.ErrEncryption, err)
	}

	return aead.Seal(envelope, envelope[:NonceLen], plaintext, nil), nil
}

// Decrypt opens an envelope produced by Encrypt. Every failure mode
// (envelope shorter than the nonce, wrong key, truncation, bit flips)
// is reported identically as common.ErrDecryption so the caller cannot
// be used as an oracle distinguishing the causes.
func Decrypt(envelope, key []byte) ([]byte, error) {
	if len(envelope) < NonceLen {
		return nil, common.ErrDecryption
	}

	aead, err := newGCM(key)
	if err != nil {
		return nil, common.ErrDecryption
	}

	plaintext, err := aead.Open(nil, envelope[:NonceLen], envelope[NonceLen:], nil)
	if err != nil {
		return nil, common.ErrDecryption
	}

	return plaintext, nil
}
