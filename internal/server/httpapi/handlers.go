package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/lingvera/lingvera/internal/common"
	"github.com/lingvera/lingvera/internal/server/models"
	"github.com/lingvera/lingvera/internal/server/services"
)

// maxMultipartMemory bounds how much of a multipart body is buffered in
// memory before spilling to disk. The upload size policy itself is enforced
// by the project service.
const maxMultipartMemory = 32 << 20

// maxRequestBodyBytes caps an upload request before it is read at all,
// leaving headroom over the largest configurable policy limit plus the
// multipart framing.
const maxRequestBodyBytes = 64 << 20

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type createProjectRequest struct {
	Name        string   `json:"name"`
	SourceLang  string   `json:"source_lang"`
	TargetLangs []string `json:"target_langs"`
	WordCount   int64    `json:"word_count"`
}

type fileInfo struct {
	Name string `json:"name"`
	Mime string `json:"mime"`
	Size int64  `json:"size"`
}

// projectResponse is the client view of a project. Storage handles stay
// internal: clients address documents through the project id.
type projectResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SourceLang  string    `json:"source_lang"`
	TargetLangs []string  `json:"target_langs"`
	WordCount   int64     `json:"word_count"`
	PriceCents  int64     `json:"price_cents"`
	Status      string    `json:"status"`
	Original    *fileInfo `json:"original,omitempty"`
	Deliverable *fileInfo `json:"deliverable,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type presignResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type completeUploadRequest struct {
	ProjectID string `json:"project_id"`
	Key       string `json:"key"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
}

func toProjectResponse(p *models.Project) *projectResponse {
	resp := &projectResponse{
		ID:          p.ID,
		Name:        p.Name,
		SourceLang:  p.SourceLang,
		TargetLangs: p.TargetLangs,
		WordCount:   p.WordCount,
		PriceCents:  p.PriceCents,
		Status:      p.Status,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
	if p.HasOriginal() {
		resp.Original = &fileInfo{Name: p.OriginalName, Mime: p.OriginalMime, Size: p.OriginalSize}
	}
	if p.HasDeliverable() {
		resp.Deliverable = &fileInfo{Name: p.DeliverableName, Mime: p.DeliverableMime, Size: p.DeliverableSize}
	}
	return resp
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body", common.ErrValidation)
	}
	return nil
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	u, err := s.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", u.UserName)
	s.writeJSON(w, http.StatusCreated, map[string]string{"id": u.ID, "username": u.UserName})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *HTTPServer) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	tokens, err := s.users.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, tokenPairResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken})
}

func (s *HTTPServer) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.projects.Create(r.Context(), userIDFromContext(r.Context()), req.Name, req.SourceLang, req.TargetLangs, req.WordCount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, toProjectResponse(p))
}

func (s *HTTPServer) handleListProjects(w http.ResponseWriter, r *http.Request) {
	list, err := s.projects.List(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := make([]*projectResponse, 0, len(list))
	for _, p := range list {
		resp = append(resp, toProjectResponse(p))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *HTTPServer) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Get(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (s *HTTPServer) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	if err := s.projects.Delete(r.Context(), userIDFromContext(r.Context()), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSubmitProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.Submit(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (s *HTTPServer) handleStartProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.projects.MarkInProgress(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, toProjectResponse(p))
}

// readUploadedFile extracts the "file" part of a multipart form: content,
// filename, and declared content type. The body is hard-capped before any
// of it is buffered.
func readUploadedFile(w http.ResponseWriter, r *http.Request) ([]byte, string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)

	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		return nil, "", "", fmt.Errorf("%w: multipart form upload expected, at most %d bytes", common.ErrValidation, maxRequestBodyBytes)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", fmt.Errorf("%w: missing form field \"file\"", common.ErrValidation)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", "", fmt.Errorf("error reading upload: %w", err)
	}

	mimeType := header.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mimeType); err == nil {
		mimeType = mt
	}

	return content, header.Filename, mimeType, nil
}

type attachFunc func(ctx context.Context, userID, id string, content []byte, filename, mimeType string) (*models.Project, error)

func (s *HTTPServer) handleFileUpload(w http.ResponseWriter, r *http.Request, attach attachFunc) {
	content, filename, mimeType, err := readUploadedFile(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := attach(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"), content, filename, mimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toProjectResponse(p))
}

func (s *HTTPServer) handleUploadOriginal(w http.ResponseWriter, r *http.Request) {
	s.handleFileUpload(w, r, s.projects.AttachOriginal)
}

func (s *HTTPServer) handleUploadDeliverable(w http.ResponseWriter, r *http.Request) {
	s.handleFileUpload(w, r, s.projects.UploadDeliverable)
}

type downloadFunc func(ctx context.Context, userID, id string) (*services.FileDownload, error)

func (s *HTTPServer) handleFileDownload(w http.ResponseWriter, r *http.Request, download downloadFunc) {
	dl, err := download(r.Context(), userIDFromContext(r.Context()), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", dl.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.OriginalName}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(dl.Content)
}

func (s *HTTPServer) handleDownloadOriginal(w http.ResponseWriter, r *http.Request) {
	s.handleFileDownload(w, r, s.projects.DownloadOriginal)
}

func (s *HTTPServer) handleDownloadDeliverable(w http.ResponseWriter, r *http.Request) {
	s.handleFileDownload(w, r, s.projects.DownloadDeliverable)
}

func (s *HTTPServer) handlePresignUpload(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.staged.PresignStagedUpload(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, presignResponse{Key: key, UploadURL: url})
}

func (s *HTTPServer) handleCompleteUpload(w http.ResponseWriter, r *http.Request) {
	var req completeUploadRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}

	p, err := s.staged.CompleteStagedUpload(r.Context(), userIDFromContext(r.Context()), req.ProjectID, req.Key, req.Filename, req.MimeType)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, toProjectResponse(p))
}
