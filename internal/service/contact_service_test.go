package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
)

type mockContactRepo struct {
	created []*models.ContactMessage
}

func (m *mockContactRepo) Create(ctx context.Context, msg *models.ContactMessage) error {
	msg.ID = "c1"
	m.created = append(m.created, msg)
	return nil
}

func (m *mockContactRepo) List(ctx context.Context) ([]models.ContactMessage, error) {
	var out []models.ContactMessage
	for _, msg := range m.created {
		out = append(out, *msg)
	}
	return out, nil
}

func TestContactCreateReportsMissingFields(t *testing.T) {
	svc := NewContactService(&mockContactRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateContactRequest{Subject: "only subject"})

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Contains(t, appErr.Message, "name")
	assert.Contains(t, appErr.Message, "email")
	assert.Contains(t, appErr.Message, "message")
}

func TestContactCreateStoresTrimmedMessage(t *testing.T) {
	repo := &mockContactRepo{}
	svc := NewContactService(repo, nil)

	msg, err := svc.Create(context.Background(), CreateContactRequest{
		Name:    "  Asha Devi ",
		Email:   "asha@example.com",
		Message: "When will my application be processed?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Asha Devi", msg.Name)
	require.Len(t, repo.created, 1)
}
