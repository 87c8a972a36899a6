package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolalab/gestao-escolar-api/internal/models"
	"github.com/escolalab/gestao-escolar-api/internal/repository"
	appErrors "github.com/escolalab/gestao-escolar-api/pkg/errors"
	"github.com/escolalab/gestao-escolar-api/pkg/export"
)

const birthDateLayout = "2006-01-02"

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error)
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type rosterExporter interface {
	Render(data export.Dataset) ([]byte, error)
}

type rosterPDFExporter interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// CreateStudentRequest describes the student creation payload. BirthDate is
// an ISO date (YYYY-MM-DD). Status is taken as given; assigning a class at
// creation does not force the student active.
type CreateStudentRequest struct {
	Name      string               `json:"name" validate:"required"`
	BirthDate string               `json:"birth_date" validate:"required"`
	Email     *string              `json:"email" validate:"omitempty,email"`
	Status    models.StudentStatus `json:"status" validate:"required,oneof=active inactive"`
	ClassID   *string              `json:"class_id" validate:"omitempty,uuid"`
}

// StudentService orchestrates student workflows.
type StudentService struct {
	repo      studentRepository
	stats     statsInvalidator
	csv       rosterExporter
	pdf       rosterPDFExporter
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs StudentService.
func NewStudentService(repo studentRepository, stats statsInvalidator, csv rosterExporter, pdf rosterPDFExporter, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, stats: stats, csv: csv, pdf: pdf, validator: validate, logger: logger, now: time.Now}
}

// List returns students matching the filter, with resolved class names and
// derived ages.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, error) {
	students, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	now := s.now()
	for i := range students {
		students[i].Age = students[i].AgeAt(now)
	}
	return students, nil
}

// Get returns one student with class name and age.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	detail, err := s.repo.FindDetailByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	detail.Age = detail.AgeAt(s.now())
	return detail, nil
}

// Create persists a new student. When a class is assigned the capacity check
// and the insert happen atomically in the repository.
func (s *StudentService) Create(ctx context.Context, req CreateStudentRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	birthDate, err := time.Parse(birthDateLayout, req.BirthDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "birth_date must be formatted as YYYY-MM-DD")
	}

	if req.Email != nil && *req.Email != "" {
		exists, err := s.repo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check student email")
		}
		if exists {
			return nil, appErrors.Clone(appErrors.ErrConflict, "a student with this email already exists")
		}
	}

	student := &models.Student{
		Name:      req.Name,
		BirthDate: birthDate,
		Email:     req.Email,
		Status:    req.Status,
		ClassID:   req.ClassID,
	}

	if err := s.repo.Create(ctx, student); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		case errors.Is(err, repository.ErrClassFull):
			return nil, appErrors.Clone(appErrors.ErrConflict, "class is already at capacity")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
		}
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	return s.Get(ctx, student.ID)
}

// Delete removes a student. Removal is unconditional and has no side effect
// on class occupancy beyond the row disappearing.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
	return nil
}

// ExportRoster renders the current student roster as CSV or PDF.
func (s *StudentService) ExportRoster(ctx context.Context, filter models.StudentFilter, format string) ([]byte, string, error) {
	students, err := s.List(ctx, filter)
	if err != nil {
		return nil, "", err
	}

	dataset := export.Dataset{
		Headers: []string{"Name", "Birth Date", "Age", "Email", "Status", "Class"},
	}
	for _, st := range students {
		email := ""
		if st.Email != nil {
			email = *st.Email
		}
		className := ""
		if st.ClassName != nil {
			className = *st.ClassName
		}
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Name":       st.Name,
			"Birth Date": st.BirthDate.Format(birthDateLayout),
			"Age":        strconv.Itoa(st.Age),
			"Email":      email,
			"Status":     string(st.Status),
			"Class":      className,
		})
	}

	switch format {
	case "csv", "":
		payload, err := s.csv.Render(dataset)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv roster")
		}
		return payload, "text/csv", nil
	case "pdf":
		payload, err := s.pdf.Render(dataset, "Student Roster")
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf roster")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
}
