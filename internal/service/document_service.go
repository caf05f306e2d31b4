package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
)

type documentStore interface {
	SaveStream(filename string, r io.Reader) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type documentSigner interface {
	Generate(applicationID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (applicationID, relPath string, expiresAt time.Time, err error)
}

type documentApplicationRepository interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	UpdateDocumentURL(ctx context.Context, id, documentURL string, updatedAt time.Time) error
}

var allowedDocumentExtensions = map[string]struct{}{
	".pdf":  {},
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// DocumentUpload is the result of attaching a document to an application.
type DocumentUpload struct {
	ApplicationID string    `json:"applicationId"`
	DocumentURL   string    `json:"documentUrl"`
	ExpiresAt     time.Time `json:"expiresAt"`
}

// DocumentServiceConfig tunes upload limits and retention. A zero Retention
// keeps documents forever.
type DocumentServiceConfig struct {
	MaxFileSize int64
	DownloadURL string
	Retention   time.Duration
}

// DocumentService stores supporting documents for applications and issues
// signed download links for them.
type DocumentService struct {
	store  documentStore
	signer documentSigner
	apps   documentApplicationRepository
	logger *zap.Logger
	cfg    DocumentServiceConfig
}

// NewDocumentService creates an instance of DocumentService.
func NewDocumentService(store documentStore, signer documentSigner, apps documentApplicationRepository, logger *zap.Logger, cfg DocumentServiceConfig) *DocumentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 5 << 20
	}
	if cfg.DownloadURL == "" {
		cfg.DownloadURL = "/api/v1/documents/download"
	}
	return &DocumentService{store: store, signer: signer, apps: apps, logger: logger, cfg: cfg}
}

// Upload stores the file for an existing application, records the signed
// download URL on it and replaces any previously attached document.
func (s *DocumentService) Upload(ctx context.Context, applicationID, filename string, size int64, r io.Reader) (*DocumentUpload, error) {
	if applicationID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "applicationId is required")
	}
	if size > s.cfg.MaxFileSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.cfg.MaxFileSize))
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := allowedDocumentExtensions[ext]; !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported document type, expected pdf, jpg, jpeg or png")
	}

	app, err := s.apps.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	relPath := filepath.Join("applications", app.ID, uuid.NewString()+ext)
	if _, err := s.store.SaveStream(relPath, io.LimitReader(r, s.cfg.MaxFileSize)); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store document")
	}

	token, expiresAt, err := s.signer.Generate(app.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign document URL")
	}
	documentURL := fmt.Sprintf("%s?token=%s", s.cfg.DownloadURL, token)

	if err := s.apps.UpdateDocumentURL(ctx, app.ID, documentURL, time.Now().UTC()); err != nil {
		if cleanupErr := s.store.Delete(relPath); cleanupErr != nil {
			s.logger.Warn("failed to remove orphaned document", zap.String("path", relPath), zap.Error(cleanupErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach document")
	}

	s.logger.Info("document attached",
		zap.String("application_id", app.ID),
		zap.String("path", relPath),
	)
	return &DocumentUpload{ApplicationID: app.ID, DocumentURL: documentURL, ExpiresAt: expiresAt}, nil
}

// Download validates a signed token and opens the referenced document.
// Callers own the returned file handle.
func (s *DocumentService) Download(ctx context.Context, token string) (*os.File, string, error) {
	if token == "" {
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "token is required")
	}
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download token")
	}
	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return file, filepath.Base(relPath), nil
}

// PurgeExpired removes stored documents older than the retention window.
// It returns the number of files deleted; with retention disabled it is a
// no-op.
func (s *DocumentService) PurgeExpired(ctx context.Context) (int, error) {
	if s.cfg.Retention <= 0 {
		return 0, nil
	}
	deleted, err := s.store.CleanupOlderThan(s.cfg.Retention)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to purge expired documents")
	}
	if len(deleted) > 0 {
		s.logger.Info("purged expired documents", zap.Int("count", len(deleted)))
	}
	return len(deleted), nil
}
