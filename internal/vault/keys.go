// Package vault implements encrypted-at-rest storage for uploaded originals
// and translated deliverables. Files live outside any public web root under
// opaque names; content is sealed with a key derived from an operator secret.
package vault

import (
	"fmt"

	"github.com/lingvera/lingvera/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // KiB
	argonThreads = 4
	keyLen       = 32 // AES-256
)

// keySalt is a fixed application-wide salt. The secret itself is
// operator-configured and high-entropy; per-object salting is not needed
// because the derived key must stay stable across restarts so that
// previously stored envelopes remain decryptable.
var keySalt = []byte("lingvera/vault/v1")

// DeriveKey stretches the operator secret into a 32-byte AES key using
// argon2id. Deterministic: the same secret always yields the same key.
func DeriveKey(secret string) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: encryption secret is empty", common.ErrConfiguration)
	}
	return argon2.IDKey([]byte(secret), keySalt, argonTime, argonMemory, argonThreads, keyLen), nil
}
