package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
)

type contactRepository interface {
	Create(ctx context.Context, m *models.ContactMessage) error
	List(ctx context.Context) ([]models.ContactMessage, error)
}

// CreateContactRequest is an enquiry submitted through the public contact form.
type CreateContactRequest struct {
	Name    string `json:"name" validate:"notblank"`
	Email   string `json:"email" validate:"notblank"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"notblank"`
}

// ContactService records enquiries from the public contact form.
type ContactService struct {
	repo      contactRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContactService creates an instance of ContactService.
func NewContactService(repo contactRepository, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{repo: repo, validator: newRequestValidator(), logger: logger}
}

// Create validates and stores an enquiry.
func (s *ContactService) Create(ctx context.Context, req CreateContactRequest) (*models.ContactMessage, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missingFields(err), ", "))
	}

	message := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}
	if err := s.repo.Create(ctx, message); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save contact message")
	}
	return message, nil
}

// List returns every enquiry, newest first.
func (s *ContactService) List(ctx context.Context) ([]models.ContactMessage, error) {
	messages, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list contact messages")
	}
	return messages, nil
}
