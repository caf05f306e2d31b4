package service

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
	"github.com/gramseva/office-portal-api/pkg/storage"
)

type mockDocumentAppRepo struct {
	apps map[string]*models.Application
}

func (m *mockDocumentAppRepo) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := m.apps[id]; ok {
		copy := *app
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockDocumentAppRepo) UpdateDocumentURL(ctx context.Context, id, documentURL string, updatedAt time.Time) error {
	app, ok := m.apps[id]
	if !ok {
		return sql.ErrNoRows
	}
	app.DocumentURL = documentURL
	return nil
}

func newDocumentFixture(t *testing.T) (*DocumentService, *mockDocumentAppRepo) {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	repo := &mockDocumentAppRepo{apps: map[string]*models.Application{
		"a1": {ID: "a1", FullName: "Asha Devi", Status: models.StatusPending},
	}}
	svc := NewDocumentService(store, signer, repo, nil, DocumentServiceConfig{})
	return svc, repo
}

func TestDocumentUploadRejectsUnknownApplication(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), "missing", "proof.pdf", 100, strings.NewReader("data"))

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
}

func TestDocumentUploadRejectsUnsupportedType(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), "a1", "malware.exe", 100, strings.NewReader("data"))

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestDocumentUploadRejectsOversizedFile(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	_, err := svc.Upload(context.Background(), "a1", "proof.pdf", 100<<20, strings.NewReader("data"))

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestDocumentUploadAndDownloadRoundTrip(t *testing.T) {
	svc, repo := newDocumentFixture(t)

	upload, err := svc.Upload(context.Background(), "a1", "proof.pdf", 9, strings.NewReader("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, "a1", upload.ApplicationID)
	assert.Contains(t, upload.DocumentURL, "token=")
	assert.Equal(t, upload.DocumentURL, repo.apps["a1"].DocumentURL)

	token := upload.DocumentURL[strings.Index(upload.DocumentURL, "token=")+len("token="):]
	file, filename, err := svc.Download(context.Background(), token)
	require.NoError(t, err)
	defer file.Close()
	assert.True(t, strings.HasSuffix(filename, ".pdf"))
}

func TestDocumentDownloadRejectsTamperedToken(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	upload, err := svc.Upload(context.Background(), "a1", "proof.pdf", 9, strings.NewReader("pdf bytes"))
	require.NoError(t, err)

	token := upload.DocumentURL[strings.Index(upload.DocumentURL, "token=")+len("token="):]
	_, _, err = svc.Download(context.Background(), token+"x")

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusForbidden, appErr.Status)
}

func TestDocumentPurgeExpiredRemovesOldFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	repo := &mockDocumentAppRepo{apps: map[string]*models.Application{
		"a1": {ID: "a1", FullName: "Asha Devi", Status: models.StatusPending},
	}}
	svc := NewDocumentService(store, signer, repo, nil, DocumentServiceConfig{Retention: 24 * time.Hour})

	_, err = svc.Upload(context.Background(), "a1", "proof.pdf", 4, strings.NewReader("data"))
	require.NoError(t, err)

	var stored string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			stored = path
			old := time.Now().Add(-48 * time.Hour)
			return os.Chtimes(path, old, old)
		}
		return nil
	})
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	purged, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, purged)
	_, err = os.Stat(stored)
	assert.True(t, os.IsNotExist(err))
}

func TestDocumentPurgeDisabledByDefault(t *testing.T) {
	svc, _ := newDocumentFixture(t)

	purged, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Zero(t, purged)
}
