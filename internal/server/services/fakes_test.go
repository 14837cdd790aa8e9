package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/dbx"
	"github.com/lingvera/lingvera/internal/logging"
	"github.com/lingvera/lingvera/internal/server/models"
	projectsrepo "github.com/lingvera/lingvera/internal/server/repositories/projects"
	refreshtokensrepo "github.com/lingvera/lingvera/internal/server/repositories/refreshtokens"
	usersrepo "github.com/lingvera/lingvera/internal/server/repositories/users"
	"github.com/lingvera/lingvera/internal/vault"
)

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// --- repository fakes ---

type fakeUsersRepo struct {
	createOut *models.User
	createErr error

	getOut *models.User
	getErr error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	u.ID = "u-created"
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

type fakeRefreshRepo struct {
	findOut   *models.RefreshToken
	findErr   error
	delErr    error
	createErr error

	created []string
	deleted []string
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, token)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

type fakeProjectsRepo struct {
	byID map[string]*models.Project

	createErr error
	updateErr error
	deleteErr error
}

func newFakeProjectsRepo() *fakeProjectsRepo {
	return &fakeProjectsRepo{byID: make(map[string]*models.Project)}
}

func (f *fakeProjectsRepo) Create(ctx context.Context, p *models.Project) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProjectsRepo) GetByID(ctx context.Context, id string) (*models.Project, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProjectsRepo) ListByUser(ctx context.Context, userID string) ([]*models.Project, error) {
	var result []*models.Project
	for _, p := range f.byID {
		if p.UserID == userID {
			cp := *p
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (f *fakeProjectsRepo) Update(ctx context.Context, p *models.Project) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.byID[p.ID]; !ok {
		return common.ErrorNotFound
	}
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakeProjectsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.byID, id)
	return nil
}

// fakeRepoManager hands out the configured fakes regardless of the DBTX.
type fakeRepoManager struct {
	users         *fakeUsersRepo
	refreshTokens *fakeRefreshRepo
	projects      *fakeProjectsRepo
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }

func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository { return m.users }

func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository {
	return m.refreshTokens
}

func (m *fakeRepoManager) Projects(db dbx.DBTX) projectsrepo.Repository { return m.projects }

// --- vault fake ---

type fakeStore struct {
	objects map[string][]byte

	saveErr     error
	retrieveErr error
	deleteErr   error

	saveCalls   int
	deleteCalls []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: make(map[string][]byte)}
}

func (f *fakeStore) key(handle string, c vault.Collection) string {
	return fmt.Sprintf("%d/%s", c, handle)
}

func (f *fakeStore) Save(ctx context.Context, content []byte, originalFilename, mimeType, ownerID string, c vault.Collection) (*vault.SavedObject, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.saveCalls++
	handle := vault.NameFor(ownerID, originalFilename, c == vault.Deliverables)
	f.objects[f.key(handle, c)] = content
	return &vault.SavedObject{
		Handle:       handle,
		OriginalName: originalFilename,
		MimeType:     mimeType,
		Size:         int64(len(content)),
	}, nil
}

func (f *fakeStore) Retrieve(ctx context.Context, handle string, c vault.Collection) ([]byte, error) {
	if f.retrieveErr != nil {
		return nil, f.retrieveErr
	}
	content, ok := f.objects[f.key(handle, c)]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return content, nil
}

func (f *fakeStore) Delete(ctx context.Context, handle string, c vault.Collection) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	f.deleteCalls = append(f.deleteCalls, handle)
	k := f.key(handle, c)
	_, ok := f.objects[k]
	delete(f.objects, k)
	return ok, nil
}

func requireNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
