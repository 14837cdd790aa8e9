package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/logging"
	"github.com/lingvera/lingvera/internal/server/config"
	"github.com/lingvera/lingvera/internal/server/models"
	"github.com/lingvera/lingvera/internal/server/repositories/repomanager"
	"github.com/lingvera/lingvera/internal/vault"
)

// FileStore is the subset of *vault.Store the project service uses.
type FileStore interface {
	Save(ctx context.Context, content []byte, originalFilename, mimeType, ownerID string, c vault.Collection) (*vault.SavedObject, error)
	Retrieve(ctx context.Context, handle string, c vault.Collection) ([]byte, error)
	Delete(ctx context.Context, handle string, c vault.Collection) (bool, error)
}

// FileDownload is a decrypted document ready to stream to the client.
type FileDownload struct {
	Content      []byte
	OriginalName string
	MimeType     string
}

// ProjectService implements the project/quote lifecycle. File contents go
// through the vault; only handles and metadata are persisted on the project
// row.
type ProjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       FileStore
	policy      vault.Policy
	rates       RateTable
	logger      logging.Logger
}

// NewProjectService constructs a ProjectService.
func NewProjectService(db *sql.DB, m repomanager.RepositoryManager, store FileStore, cfg *config.Config, logger logging.Logger) *ProjectService {
	return &ProjectService{
		db:          db,
		repomanager: m,
		store:       store,
		policy:      cfg.UploadPolicy(),
		rates:       DefaultRates,
		logger:      logger.With("module", "projects"),
	}
}

// Create prices a new translation job and stores it with status "quoted".
func (s *ProjectService) Create(ctx context.Context, userID, name, sourceLang string, targetLangs []string, wordCount int64) (*models.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: project name required", common.ErrValidation)
	}
	if sourceLang == "" {
		return nil, fmt.Errorf("%w: source language required", common.ErrValidation)
	}

	price, err := s.rates.QuoteCents(wordCount, targetLangs)
	if err != nil {
		return nil, err
	}

	project := &models.Project{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		SourceLang:  sourceLang,
		TargetLangs: targetLangs,
		WordCount:   wordCount,
		PriceCents:  price,
		Status:      models.ProjectStatusQuoted,
	}

	repo := s.repomanager.Projects(s.db)
	if err := repo.Create(ctx, project); err != nil {
		return nil, fmt.Errorf("error creating project: %w", err)
	}

	s.logger.Info(ctx, "project quoted", "project_id", project.ID, "price_cents", price)
	return project, nil
}

// Get returns the project for id. A project owned by someone else is
// reported as not found rather than forbidden, to avoid leaking ids.
func (s *ProjectService) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	repo := s.repomanager.Projects(s.db)
	project, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.UserID != userID {
		return nil, common.ErrorNotFound
	}
	return project, nil
}

// List returns all projects owned by userID.
func (s *ProjectService) List(ctx context.Context, userID string) ([]*models.Project, error) {
	repo := s.repomanager.Projects(s.db)
	return repo.ListByUser(ctx, userID)
}

// AttachOriginal validates the uploaded source document against the upload
// policy, stores it encrypted in the Originals collection, and persists the
// returned metadata on the project. Re-attaching replaces the previous
// document; the old object is removed best-effort.
func (s *ProjectService) AttachOriginal(ctx context.Context, userID, id string, content []byte, filename, mimeType string) (*models.Project, error) {
	if !s.policy.ValidateType(mimeType) {
		return nil, fmt.Errorf("%w: file type %q is not accepted", common.ErrValidation, mimeType)
	}
	if !s.policy.ValidateSize(int64(len(content))) {
		return nil, fmt.Errorf("%w: file size %d exceeds the %d byte limit", common.ErrValidation, len(content), s.policy.MaxBytes)
	}

	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusQuoted && project.Status != models.ProjectStatusDraft {
		return nil, common.ErrProjectState
	}

	saved, err := s.store.Save(ctx, content, filename, mimeType, project.ID, vault.Originals)
	if err != nil {
		return nil, err
	}

	previous := project.OriginalHandle

	project.OriginalHandle = saved.Handle
	project.OriginalName = saved.OriginalName
	project.OriginalMime = saved.MimeType
	project.OriginalSize = saved.Size

	repo := s.repomanager.Projects(s.db)
	if err := repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("error updating project: %w", err)
	}

	if previous != "" {
		if _, err := s.store.Delete(ctx, previous, vault.Originals); err != nil {
			s.logger.Warn(ctx, "failed to remove replaced original", "handle", previous, "error", err.Error())
		}
	}

	s.logger.Info(ctx, "original attached", "project_id", project.ID, "size", saved.Size)
	return project, nil
}

// Submit moves a quoted project with an attached original into the work
// queue.
func (s *ProjectService) Submit(ctx context.Context, userID, id string) (*models.Project, error) {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusQuoted {
		return nil, common.ErrProjectState
	}
	if !project.HasOriginal() {
		return nil, fmt.Errorf("%w: no source document attached", common.ErrValidation)
	}

	project.Status = models.ProjectStatusSubmitted
	repo := s.repomanager.Projects(s.db)
	if err := repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("error updating project: %w", err)
	}
	return project, nil
}

// MarkInProgress records that translation work has started.
func (s *ProjectService) MarkInProgress(ctx context.Context, userID, id string) (*models.Project, error) {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusSubmitted {
		return nil, common.ErrProjectState
	}

	project.Status = models.ProjectStatusInProgress
	repo := s.repomanager.Projects(s.db)
	if err := repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("error updating project: %w", err)
	}
	return project, nil
}

// UploadDeliverable validates the translated document against the upload
// policy, stores it in the Deliverables collection, and completes the
// project.
func (s *ProjectService) UploadDeliverable(ctx context.Context, userID, id string, content []byte, filename, mimeType string) (*models.Project, error) {
	if !s.policy.ValidateType(mimeType) {
		return nil, fmt.Errorf("%w: file type %q is not accepted", common.ErrValidation, mimeType)
	}
	if !s.policy.ValidateSize(int64(len(content))) {
		return nil, fmt.Errorf("%w: file size %d exceeds the %d byte limit", common.ErrValidation, len(content), s.policy.MaxBytes)
	}

	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusSubmitted && project.Status != models.ProjectStatusInProgress {
		return nil, common.ErrProjectState
	}

	saved, err := s.store.Save(ctx, content, filename, mimeType, project.ID, vault.Deliverables)
	if err != nil {
		return nil, err
	}

	previous := project.DeliverableHandle

	project.DeliverableHandle = saved.Handle
	project.DeliverableName = saved.OriginalName
	project.DeliverableMime = saved.MimeType
	project.DeliverableSize = saved.Size
	project.Status = models.ProjectStatusCompleted

	repo := s.repomanager.Projects(s.db)
	if err := repo.Update(ctx, project); err != nil {
		return nil, fmt.Errorf("error updating project: %w", err)
	}

	if previous != "" {
		if _, err := s.store.Delete(ctx, previous, vault.Deliverables); err != nil {
			s.logger.Warn(ctx, "failed to remove replaced deliverable", "handle", previous, "error", err.Error())
		}
	}

	s.logger.Info(ctx, "deliverable uploaded", "project_id", project.ID, "size", saved.Size)
	return project, nil
}

// DownloadOriginal retrieves and decrypts the attached source document.
func (s *ProjectService) DownloadOriginal(ctx context.Context, userID, id string) (*FileDownload, error) {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !project.HasOriginal() {
		return nil, common.ErrorNotFound
	}

	content, err := s.store.Retrieve(ctx, project.OriginalHandle, vault.Originals)
	if err != nil {
		return nil, err
	}
	return &FileDownload{Content: content, OriginalName: project.OriginalName, MimeType: project.OriginalMime}, nil
}

// DownloadDeliverable retrieves and decrypts the translated document.
func (s *ProjectService) DownloadDeliverable(ctx context.Context, userID, id string) (*FileDownload, error) {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !project.HasDeliverable() {
		return nil, common.ErrorNotFound
	}

	content, err := s.store.Retrieve(ctx, project.DeliverableHandle, vault.Deliverables)
	if err != nil {
		return nil, err
	}
	return &FileDownload{Content: content, OriginalName: project.DeliverableName, MimeType: project.DeliverableMime}, nil
}

// Delete removes the project row and both stored documents. Vault removal
// is best-effort: an orphaned envelope is harmless, a dangling row is not.
func (s *ProjectService) Delete(ctx context.Context, userID, id string) error {
	project, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}

	repo := s.repomanager.Projects(s.db)
	if err := repo.Delete(ctx, project.ID); err != nil {
		return fmt.Errorf("error deleting project: %w", err)
	}

	if project.HasOriginal() {
		if _, err := s.store.Delete(ctx, project.OriginalHandle, vault.Originals); err != nil {
			s.logger.Warn(ctx, "failed to remove original", "handle", project.OriginalHandle, "error", err.Error())
		}
	}
	if project.HasDeliverable() {
		if _, err := s.store.Delete(ctx, project.DeliverableHandle, vault.Deliverables); err != nil {
			s.logger.Warn(ctx, "failed to remove deliverable", "handle", project.DeliverableHandle, "error", err.Error())
		}
	}

	return nil
}
