package vault

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/lingvera/lingvera/internal/common"
)

// persistentVolumePath is the well-known mount point used on managed hosts.
// It is picked up automatically when no explicit base directory is configured.
const persistentVolumePath = "/var/lib/lingvera"

const (
	originalsDir    = "uploads"
	deliverablesDir = "translated"
)

// Roots holds the two resolved collection directories.
type Roots struct {
	Originals    string
	Deliverables string
}

// ResolveRoots picks the storage base directory and creates both collection
// roots beneath it. Resolution priority:
//
//  1. an explicitly configured base directory,
//  2. the persistent-volume path, when it already exists,
//  3. a data/ directory next to the executable.
//
// Failure to create or write the roots is a fatal startup condition and is
// reported as common.ErrStorageUnavailable.
func ResolveRoots(baseDir string) (Roots, error) {
	base, err := resolveBase(baseDir)
	if err != nil {
		return Roots{}, err
	}

	roots := Roots{
		Originals:    filepath.Join(base, originalsDir),
		Deliverables: filepath.Join(base, deliverablesDir),
	}

	for _, root := range []string{roots.Originals, roots.Deliverables} {
		if err := os.MkdirAll(root, 0o700); err != nil {
			return Roots{}, fmt.Errorf("%w: mkdir %s: %v", common.ErrStorageUnavailable, root, err)
		}
		if err := probeWritable(root); err != nil {
			return Roots{}, fmt.Errorf("%w: %s not writable: %v", common.ErrStorageUnavailable, root, err)
		}
	}

	return roots, nil
}

func resolveBase(baseDir string) (string, error) {
	if baseDir != "" {
		return baseDir, nil
	}

	if info, err := os.Stat(persistentVolumePath); err == nil && info.IsDir() {
		return persistentVolumePath, nil
	}

	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("%w: locating executable: %v", common.ErrStorageUnavailable, err)
	}
	return filepath.Join(filepath.Dir(exe), "data"), nil
}

func probeWritable(dir string) error {
	f, err := os.CreateTemp(dir, ".probe-*")
	if err != nil {
		return err
	}
	name := f.Name()
	if err := f.Close(); err != nil {
		return err
	}
	return os.Remove(name)
}
