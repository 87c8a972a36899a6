package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/escolalab/gestao-escolar-api/internal/models"
	"github.com/escolalab/gestao-escolar-api/internal/repository"
	appErrors "github.com/escolalab/gestao-escolar-api/pkg/errors"
)

type enrollmentRepository interface {
	Enroll(ctx context.Context, studentID, classID string) error
}

type studentDetailReader interface {
	FindDetailByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

// EnrollRequest describes the enrollment payload.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid"`
	ClassID   string `json:"class_id" validate:"required,uuid"`
}

// EnrollmentService executes the assignment of a student to a class.
type EnrollmentService struct {
	repo      enrollmentRepository
	students  studentDetailReader
	stats     statsInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(repo enrollmentRepository, students studentDetailReader, stats statsInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, students: students, stats: stats, validator: validate, logger: logger}
}

// Enroll assigns a student to a class. The student must not already be
// assigned, and the class must have room; on success the student's status is
// forced to active. The repository performs the whole transition under row
// locks, so the checks and the write cannot be interleaved by a concurrent
// enroll.
func (s *EnrollmentService) Enroll(ctx context.Context, req EnrollRequest) (*models.StudentDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if err := s.repo.Enroll(ctx, req.StudentID, req.ClassID); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student or class not found")
		case errors.Is(err, repository.ErrAlreadyEnrolled):
			return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled in a class")
		case errors.Is(err, repository.ErrClassFull):
			return nil, appErrors.Clone(appErrors.ErrConflict, "class is already at capacity")
		default:
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enroll student")
		}
	}

	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}

	detail, err := s.students.FindDetailByID(ctx, req.StudentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrolled student")
	}
	return detail, nil
}
