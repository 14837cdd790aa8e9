package vault

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/logging"
	"github.com/stretchr/testify/require"
)

const xlsxMime = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	base := t.TempDir()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	store, err := NewStore("unit-test-secret", base, logger)
	require.NoError(t, err)
	return store, base
}

func TestNewStore_EmptySecret(t *testing.T) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	_, err := NewStore("", t.TempDir(), logger)
	if !errors.Is(err, common.ErrConfiguration) {
		t.Fatalf("want ErrConfiguration, got %v", err)
	}
}

func TestStore_SaveRetrieve_RoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	xlsxBytes := bytes.Repeat([]byte("cell;"), 2048)

	saved, err := store.Save(ctx, xlsxBytes, "quote.xlsx", xlsxMime, "proj-123", Originals)
	require.NoError(t, err)
	require.NotEmpty(t, saved.Handle)
	require.Equal(t, "quote.xlsx", saved.OriginalName)
	require.Equal(t, xlsxMime, saved.MimeType)
	require.Equal(t, int64(len(xlsxBytes)), saved.Size)

	got, err := store.Retrieve(ctx, saved.Handle, Originals)
	require.NoError(t, err)
	require.Equal(t, xlsxBytes, got)
}

func TestStore_Save_EmptyContent(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Save(context.Background(), nil, "quote.xlsx", xlsxMime, "proj-123", Originals)
	if !errors.Is(err, common.ErrValidation) {
		t.Fatalf("want ErrValidation, got %v", err)
	}
}

func TestStore_Save_EncryptsOnDisk(t *testing.T) {
	store, base := newTestStore(t)
	ctx := context.Background()

	plaintext := []byte("plaintext must never be written verbatim")
	saved, err := store.Save(ctx, plaintext, "doc.csv", "text/csv", "proj-1", Originals)
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(base, "uploads", saved.Handle))
	require.NoError(t, err)
	require.NotContains(t, string(raw), "plaintext must never")
	require.Equal(t, len(plaintext)+NonceLen+16, len(raw)) // nonce + ciphertext + GCM tag
}

func TestStore_Save_NoTempLeftovers(t *testing.T) {
	store, base := newTestStore(t)

	_, err := store.Save(context.Background(), []byte("x"), "a.csv", "text/csv", "p", Originals)
	require.NoError(t, err)

	entries, err := os.ReadDir(filepath.Join(base, "uploads"))
	require.NoError(t, err)
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}
}

func TestStore_Retrieve_Missing(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Retrieve(context.Background(), "nonexistent_handle", Originals)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestStore_Retrieve_TamperedFile(t *testing.T) {
	store, base := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, []byte("original content"), "doc.csv", "text/csv", "proj-1", Originals)
	require.NoError(t, err)

	path := filepath.Join(base, "uploads", saved.Handle)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	raw[len(raw)/2] ^= 0xFF
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	_, err = store.Retrieve(ctx, saved.Handle, Originals)
	if !errors.Is(err, common.ErrDecryption) {
		t.Fatalf("want ErrDecryption, got %v", err)
	}
}

func TestStore_Retrieve_TruncatedFile(t *testing.T) {
	store, base := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, []byte("original content"), "doc.csv", "text/csv", "proj-1", Originals)
	require.NoError(t, err)

	path := filepath.Join(base, "uploads", saved.Handle)
	require.NoError(t, os.WriteFile(path, []byte{0x01}, 0o600))

	_, err = store.Retrieve(ctx, saved.Handle, Originals)
	if !errors.Is(err, common.ErrDecryption) {
		t.Fatalf("want ErrDecryption, got %v", err)
	}
}

func TestStore_Retrieve_TraversalHandleRejected(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	handles := []string{
		"../uploads/x",
		"..",
		"a/b",
		`a\b`,
		"",
		"../../etc/passwd",
	}
	for _, handle := range handles {
		_, err := store.Retrieve(ctx, handle, Originals)
		if !errors.Is(err, common.ErrorNotFound) {
			t.Fatalf("handle %q: want ErrorNotFound, got %v", handle, err)
		}
	}
}

func TestStore_Save_TraversalFilenameStaysInRoot(t *testing.T) {
	store, base := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, []byte("payload"), "../../etc/passwd", "text/csv", "owner", Originals)
	require.NoError(t, err)

	// The handle resolves strictly inside the collection root.
	_, err = os.Stat(filepath.Join(base, "uploads", saved.Handle))
	require.NoError(t, err)

	got, err := store.Retrieve(ctx, saved.Handle, Originals)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestStore_Delete_Idempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, []byte("payload"), "doc.csv", "text/csv", "owner", Deliverables)
	require.NoError(t, err)

	removed, err := store.Delete(ctx, saved.Handle, Deliverables)
	require.NoError(t, err)
	require.True(t, removed)

	removed, err = store.Delete(ctx, saved.Handle, Deliverables)
	require.NoError(t, err)
	require.False(t, removed)
}

func TestStore_CollectionsDisjoint(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	saved, err := store.Save(ctx, []byte("payload"), "doc.csv", "text/csv", "owner", Originals)
	require.NoError(t, err)

	// The same handle does not exist in the other collection.
	_, err = store.Retrieve(ctx, saved.Handle, Deliverables)
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want ErrorNotFound, got %v", err)
	}
}

func TestStore_KeyRotationBreaksOldObjects(t *testing.T) {
	base := t.TempDir()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	ctx := context.Background()

	oldStore, err := NewStore("old-secret", base, logger)
	require.NoError(t, err)
	saved, err := oldStore.Save(ctx, []byte("payload"), "doc.csv", "text/csv", "owner", Originals)
	require.NoError(t, err)

	newStore, err := NewStore("new-secret", base, logger)
	require.NoError(t, err)

	_, err = newStore.Retrieve(ctx, saved.Handle, Originals)
	if !errors.Is(err, common.ErrDecryption) {
		t.Fatalf("want ErrDecryption after key rotation, got %v", err)
	}

	// Same secret again still decrypts.
	sameStore, err := NewStore("old-secret", base, logger)
	require.NoError(t, err)
	got, err := sameStore.Retrieve(ctx, saved.Handle, Originals)
	require.NoError(t, err)
	require.Equal(t, []byte("payload"), got)
}

func TestStore_ConcurrentSaves(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	const n = 16
	errCh := make(chan error, n)
	handles := make(chan string, n)

	for i := 0; i < n; i++ {
		go func() {
			saved, err := store.Save(ctx, []byte("concurrent payload"), "quote.xlsx", xlsxMime, "proj-123", Originals)
			if err != nil {
				errCh <- err
				return
			}
			handles <- saved.Handle
		}()
	}

	seen := make(map[string]struct{}, n)
	for i := 0; i < n; i++ {
		select {
		case err := <-errCh:
			t.Fatalf("concurrent save failed: %v", err)
		case h := <-handles:
			if _, dup := seen[h]; dup {
				t.Fatalf("duplicate handle under concurrency: %s", h)
			}
			seen[h] = struct{}{}
		}
	}

	for h := range seen {
		got, err := store.Retrieve(ctx, h, Originals)
		require.NoError(t, err)
		require.Equal(t, []byte("concurrent payload"), got)
	}
}

func TestStore_CloseWipesKey(t *testing.T) {
	store, _ := newTestStore(t)

	store.Close()

	for i, b := range store.key {
		if b != 0 {
			t.Fatalf("key byte %d not zeroed after Close", i)
		}
	}
}
