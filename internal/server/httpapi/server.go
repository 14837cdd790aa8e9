// Package httpapi exposes the server's functionality over HTTP/JSON:
// authentication, the project/quote lifecycle, document upload/download,
// and the staged-upload endpoints.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/lingvera/lingvera/internal/logging"
	"github.com/lingvera/lingvera/internal/server/models"
	"github.com/lingvera/lingvera/internal/server/services"
)

// UserService is the authentication surface the API needs.
type UserService interface {
	Register(ctx context.Context, username, password string) (*models.User, error)
	Login(ctx context.Context, userName, password string) (*services.TokenPair, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.TokenPair, error)
}

// ProjectService is the project lifecycle surface the API needs.
type ProjectService interface {
	Create(ctx context.Context, userID, name, sourceLang string, targetLangs []string, wordCount int64) (*models.Project, error)
	Get(ctx context.Context, userID, id string) (*models.Project, error)
	List(ctx context.Context, userID string) ([]*models.Project, error)
	AttachOriginal(ctx context.Context, userID, id string, content []byte, filename, mimeType string) (*models.Project, error)
	Submit(ctx context.Context, userID, id string) (*models.Project, error)
	MarkInProgress(ctx context.Context, userID, id string) (*models.Project, error)
	UploadDeliverable(ctx context.Context, userID, id string, content []byte, filename, mimeType string) (*models.Project, error)
	DownloadOriginal(ctx context.Context, userID, id string) (*services.FileDownload, error)
	DownloadDeliverable(ctx context.Context, userID, id string) (*services.FileDownload, error)
	Delete(ctx context.Context, userID, id string) error
}

// StagedUploadService is the staged ingestion surface the API needs.
type StagedUploadService interface {
	Enabled() bool
	PresignStagedUpload(ctx context.Context) (string, string, error)
	CompleteStagedUpload(ctx context.Context, userID, projectID, key, filename, mimeType string) (*models.Project, error)
}

type HTTPServer struct {
	address   string
	logger    logging.Logger
	users     UserService
	projects  ProjectService
	staged    StagedUploadService
	jwtSecret []byte
}

func NewHTTPServer(a string, l logging.Logger, us UserService, ps ProjectService, ss StagedUploadService, secretKey string) *HTTPServer {
	return &HTTPServer{
		address:   a,
		logger:    l.With("module", "http_server"),
		users:     us,
		projects:  ps,
		staged:    ss,
		jwtSecret: []byte(secretKey),
	}
}

// routes builds the request multiplexer. All /api/projects and /api/uploads
// routes require a valid access token.
func (s *HTTPServer) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/auth/refresh", s.handleRefresh)

	mux.Handle("POST /api/projects", s.requireAuth(s.handleCreateProject))
	mux.Handle("GET /api/projects", s.requireAuth(s.handleListProjects))
	mux.Handle("GET /api/projects/{id}", s.requireAuth(s.handleGetProject))
	mux.Handle("DELETE /api/projects/{id}", s.requireAuth(s.handleDeleteProject))
	mux.Handle("POST /api/projects/{id}/submit", s.requireAuth(s.handleSubmitProject))
	mux.Handle("POST /api/projects/{id}/start", s.requireAuth(s.handleStartProject))
	mux.Handle("POST /api/projects/{id}/original", s.requireAuth(s.handleUploadOriginal))
	mux.Handle("GET /api/projects/{id}/original", s.requireAuth(s.handleDownloadOriginal))
	mux.Handle("POST /api/projects/{id}/deliverable", s.requireAuth(s.handleUploadDeliverable))
	mux.Handle("GET /api/projects/{id}/deliverable", s.requireAuth(s.handleDownloadDeliverable))

	mux.Handle("POST /api/uploads/presign", s.requireAuth(s.handlePresignUpload))
	mux.Handle("POST /api/uploads/complete", s.requireAuth(s.handleCompleteUpload))

	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "shutdown error", "error", err.Error())
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
