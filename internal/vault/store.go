package vault

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/logging"
)

// Collection selects one of the two disjoint storage roots.
type Collection int

const (
	// Originals holds as-uploaded source documents.
	Originals Collection = iota
	// Deliverables holds completed translated documents.
	Deliverables
)

// SavedObject is returned by Save. Only Handle is durable inside the vault;
// the caller persists the rest (typically on the project record) if it is
// needed at download time.
type SavedObject struct {
	Handle       string
	OriginalName string
	MimeType     string
	Size         int64
}

// Store provides save/retrieve/delete over the two collections. All content
// is encrypted before it touches disk and written via a temp file plus
// atomic rename, so a partially written object is never visible under its
// final handle. The store holds no locks across calls; concurrent operations
// rely on per-handle uniqueness and rename atomicity.
type Store struct {
	roots  Roots
	key    []byte
	logger logging.Logger
}

// NewStore derives the encryption key from secret and resolves both
// collection roots under baseDir (empty baseDir triggers the fallback
// chain in ResolveRoots). Both failures are fatal startup conditions.
func NewStore(secret, baseDir string, logger logging.Logger) (*Store, error) {
	key, err := DeriveKey(secret)
	if err != nil {
		return nil, err
	}

	roots, err := ResolveRoots(baseDir)
	if err != nil {
		return nil, err
	}

	return &Store{
		roots:  roots,
		key:    key,
		logger: logger.With("module", "vault"),
	}, nil
}

// Close scrubs the derived key from memory. The store must not be used
// afterwards.
func (s *Store) Close() {
	common.WipeByteArray(s.key)
}

func (s *Store) root(c Collection) string {
	if c == Deliverables {
		return s.roots.Deliverables
	}
	return s.roots.Originals
}

// Save encrypts content and stores it under a freshly generated handle in
// the given collection. Empty content is rejected with common.ErrValidation.
func (s *Store) Save(ctx context.Context, content []byte, originalFilename, mimeType, ownerID string, c Collection) (*SavedObject, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty content", common.ErrValidation)
	}

	handle := NameFor(ownerID, originalFilename, c == Deliverables)

	envelope, err := Encrypt(content, s.key)
	if err != nil {
		return nil, err
	}

	if err := s.writeAtomic(s.root(c), handle, envelope); err != nil {
		return nil, err
	}

	s.logger.Debug(ctx, "object stored", "handle", handle, "size", len(content))

	return &SavedObject{
		Handle:       handle,
		OriginalName: originalFilename,
		MimeType:     mimeType,
		Size:         int64(len(content)),
	}, nil
}

// Retrieve reads and decrypts the object for handle. A handle that does not
// resolve to a file yields common.ErrorNotFound; any cryptographic failure
// yields common.ErrDecryption.
func (s *Store) Retrieve(ctx context.Context, handle string, c Collection) ([]byte, error) {
	path, err := s.resolve(handle, c)
	if err != nil {
		return nil, err
	}

	envelope, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrStorageUnavailable, handle, err)
	}

	return Decrypt(envelope, s.key)
}

// Delete removes the object for handle. Deleting an absent object is not an
// error; the boolean reports whether a file was actually removed.
func (s *Store) Delete(ctx context.Context, handle string, c Collection) (bool, error) {
	path, err := s.resolve(handle, c)
	if err != nil {
		return false, err
	}

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("%w: remove %s: %v", common.ErrStorageUnavailable, handle, err)
	}

	s.logger.Debug(ctx, "object removed", "handle", handle)
	return true, nil
}

// resolve maps a handle to an absolute path strictly inside the collection
// root. Handles are sanitized at creation time, but retrieval defends
// independently: a corrupted or hostile handle must not escape the root.
func (s *Store) resolve(handle string, c Collection) (string, error) {
	if handle == "" ||
		strings.ContainsAny(handle, "/\\") ||
		strings.Contains(handle, "..") ||
		filepath.Base(handle) != handle {
		return "", common.ErrorNotFound
	}
	return filepath.Join(s.root(c), handle), nil
}

// writeAtomic writes data to a temp file in dir and renames it onto the
// final name. The rename keeps a crash mid-write from ever exposing a
// partial envelope under the handle.
func (s *Store) writeAtomic(dir, name string, data []byte) error {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", common.ErrStorageUnavailable, err)
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: write temp: %v", common.ErrStorageUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: close temp: %v", common.ErrStorageUnavailable, err)
	}

	if err := os.Rename(tmp.Name(), filepath.Join(dir, name)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: rename: %v", common.ErrStorageUnavailable, err)
	}

	return nil
}
