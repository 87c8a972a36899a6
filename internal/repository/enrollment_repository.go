package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
)

// EnrollmentRepository owns the atomic assignment of a student to a class.
// There is no enrollments table: the relationship is the student's class_id
// column, so the whole transition is one transaction over students and
// classes.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// Enroll assigns the student to the class and forces the student's status to
// active. Both rows are locked for the duration of the transaction so two
// concurrent enrolls cannot both observe occupancy below capacity and
// overshoot it. Error contract: sql.ErrNoRows when the student or the class
// is absent, ErrAlreadyEnrolled when the student already has a class,
// ErrClassFull when the class is at capacity.
func (r *EnrollmentRepository) Enroll(ctx context.Context, studentID, classID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin enroll: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var currentClass *string
	if err := tx.GetContext(ctx, &currentClass, `SELECT class_id FROM students WHERE id = $1 FOR UPDATE`, studentID); err != nil {
		return err
	}
	if currentClass != nil {
		return ErrAlreadyEnrolled
	}

	var capacity int
	if err := tx.GetContext(ctx, &capacity, `SELECT capacity FROM classes WHERE id = $1 FOR UPDATE`, classID); err != nil {
		return err
	}

	var occupancy int
	if err := tx.GetContext(ctx, &occupancy, `SELECT COUNT(*) FROM students WHERE class_id = $1`, classID); err != nil {
		return fmt.Errorf("count class students: %w", err)
	}
	if occupancy >= capacity {
		return ErrClassFull
	}

	const update = `UPDATE students SET class_id = $2, status = 'active', updated_at = $3 WHERE id = $1`
	if _, err := tx.ExecContext(ctx, update, studentID, classID, time.Now().UTC()); err != nil {
		return fmt.Errorf("assign student: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit enroll: %w", err)
	}
	return nil
}
