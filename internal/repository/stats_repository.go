package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/escolalab/gestao-escolar-api/internal/models"
)

// StatsRepository computes aggregate counters over students and classes.
type StatsRepository struct {
	db *sqlx.DB
}

// NewStatsRepository constructs the repository.
func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type statsTotals struct {
	TotalStudents    int `db:"total_students"`
	ActiveStudents   int `db:"active_students"`
	InactiveStudents int `db:"inactive_students"`
	TotalClasses     int `db:"total_classes"`
}

// Totals returns the system-wide counters in a single query.
func (r *StatsRepository) Totals(ctx context.Context) (total, active, inactive, classes int, err error) {
	const query = `SELECT
        (SELECT COUNT(*) FROM students) AS total_students,
        (SELECT COUNT(*) FROM students WHERE status = 'active') AS active_students,
        (SELECT COUNT(*) FROM students WHERE status = 'inactive') AS inactive_students,
        (SELECT COUNT(*) FROM classes) AS total_classes`
	var totals statsTotals
	if err := r.db.GetContext(ctx, &totals, query); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("stats totals: %w", err)
	}
	return totals.TotalStudents, totals.ActiveStudents, totals.InactiveStudents, totals.TotalClasses, nil
}

// PerClass returns each class with its live occupancy.
func (r *StatsRepository) PerClass(ctx context.Context) ([]models.ClassOccupancy, error) {
	const query = `SELECT c.id AS class_id, c.name AS class_name, c.capacity,
        COUNT(s.id) AS occupancy
        FROM classes c LEFT JOIN students s ON s.class_id = c.id
        GROUP BY c.id, c.name, c.capacity
        ORDER BY c.name ASC`
	var occupancies []models.ClassOccupancy
	if err := r.db.SelectContext(ctx, &occupancies, query); err != nil {
		return nil, fmt.Errorf("stats per class: %w", err)
	}
	return occupancies, nil
}
