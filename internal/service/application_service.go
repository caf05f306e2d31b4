package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gramseva/office-portal-api/internal/models"
	appErrors "github.com/gramseva/office-portal-api/pkg/errors"
	"github.com/gramseva/office-portal-api/pkg/export"
)

type applicationRepository interface {
	Create(ctx context.Context, app *models.Application) error
	FindByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id string, status models.ApplicationStatus, updatedAt time.Time) error
}

// CreateApplicationRequest is the submission payload. Remarks and the
// document URL are optional; everything else is required.
type CreateApplicationRequest struct {
	FullName      string `json:"fullName" validate:"notblank"`
	Age           int    `json:"age" validate:"gt=0"`
	ContactNumber string `json:"contactNumber" validate:"notblank"`
	Gender        string `json:"gender" validate:"notblank"`
	District      string `json:"district" validate:"notblank"`
	RevenueCircle string `json:"revenueCircle" validate:"notblank"`
	Category      string `json:"category" validate:"notblank"`
	VillageWard   string `json:"villageWard" validate:"notblank"`
	Remarks       string `json:"remarks"`
	DocumentURL   string `json:"documentUrl"`
	UserID        string `json:"userId"`
}

// UpdateApplicationStatusRequest moves an application through its lifecycle.
type UpdateApplicationStatusRequest struct {
	ApplicationID string `json:"applicationId" validate:"notblank"`
	Status        string `json:"status" validate:"notblank"`
}

// ApplicationServiceConfig tunes lifecycle behaviour.
type ApplicationServiceConfig struct {
	StrictTransitions bool
}

// ApplicationService owns the application lifecycle: submission, listing,
// the status state machine and the admin register export.
type ApplicationService struct {
	repo      applicationRepository
	validator *validator.Validate
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	cfg       ApplicationServiceConfig
}

// NewApplicationService creates an instance of ApplicationService.
func NewApplicationService(repo applicationRepository, logger *zap.Logger, cfg ApplicationServiceConfig) *ApplicationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApplicationService{
		repo:      repo,
		validator: newRequestValidator(),
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		cfg:       cfg,
	}
}

// Create validates and persists a new application. Every missing field is
// reported, not just the first, and the stored status is always Pending no
// matter what the caller sent.
func (s *ApplicationService) Create(ctx context.Context, req CreateApplicationRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		if missing := missingFields(err); len(missing) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}

	if !validCategory(req.Category) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown category %q", req.Category))
	}
	if req.VillageWard != "Village" && req.VillageWard != "Ward" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "villageWard must be Village or Ward")
	}

	app := &models.Application{
		FullName:      strings.TrimSpace(req.FullName),
		Age:           req.Age,
		ContactNumber: req.ContactNumber,
		Gender:        req.Gender,
		District:      req.District,
		RevenueCircle: req.RevenueCircle,
		Category:      req.Category,
		VillageWard:   req.VillageWard,
		Remarks:       req.Remarks,
		DocumentURL:   req.DocumentURL,
		Status:        models.StatusPending,
		UserID:        req.UserID,
	}
	if err := s.repo.Create(ctx, app); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.logger.Info("application submitted",
		zap.String("application_id", app.ID),
		zap.String("category", app.Category),
		zap.String("district", app.District),
	)
	return app, nil
}

// List returns applications, all of them or those owned by one user.
func (s *ApplicationService) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	apps, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}
	return apps, nil
}

// UpdateStatus transitions an application. Unknown identifiers fail with
// not-found before any write. With strict transitions enabled, applications
// that already left Pending cannot be moved again.
func (s *ApplicationService) UpdateStatus(ctx context.Context, req UpdateApplicationStatusRequest) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "applicationId and status are required")
	}
	status := models.ApplicationStatus(req.Status)
	if !models.ValidStatus(status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", req.Status))
	}

	app, err := s.repo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	if s.cfg.StrictTransitions && app.Status != models.StatusPending && status != app.Status {
		return nil, appErrors.Clone(appErrors.ErrConflict,
			fmt.Sprintf("application is already %s and cannot move to %s", app.Status, status))
	}

	now := time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, app.ID, status, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update application status")
	}

	app.Status = status
	app.UpdatedAt = now

	s.logger.Info("application status updated",
		zap.String("application_id", app.ID),
		zap.String("status", string(status)),
	)
	return app, nil
}

// ExportRegister renders the full application register as CSV or PDF for
// the admin download.
func (s *ApplicationService) ExportRegister(ctx context.Context, format string) ([]byte, string, error) {
	apps, err := s.repo.List(ctx, models.ApplicationFilter{})
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	register := export.Register{
		Title:   "Application Register",
		Columns: []string{"ID", "Applicant", "Age", "Contact", "District", "Revenue Circle", "Category", "Village/Ward", "Status", "Submitted"},
	}
	for _, app := range apps {
		register.Rows = append(register.Rows, []string{
			app.ID,
			app.FullName,
			strconv.Itoa(app.Age),
			app.ContactNumber,
			app.District,
			app.RevenueCircle,
			app.Category,
			app.VillageWard,
			string(app.Status),
			app.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	switch strings.ToLower(format) {
	case "", "csv":
		payload, err := s.csv.Render(register)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(register)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}

func validCategory(category string) bool {
	for _, c := range models.Categories {
		if c == category {
			return true
		}
	}
	return false
}
