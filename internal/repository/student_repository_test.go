package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolalab/gestao-escolar-api/internal/models"
)

func studentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "birth_date", "email", "status", "class_id", "created_at", "updated_at", "class_name"})
}

func TestStudentRepositoryListNoFilter(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := studentRows().
		AddRow("stu-1", "Ana Silva Santos", now.AddDate(-14, 0, 0), "ana.silva@email.com", models.StudentStatusActive, "class-1", now, now, "1º Ano A").
		AddRow("stu-2", "Xavier Silva Pinto", now.AddDate(-13, 0, 0), nil, models.StudentStatusInactive, nil, now, now, nil)
	mock.ExpectQuery("SELECT s.id, s.name, s.birth_date").
		WillReturnRows(rows)

	students, err := repo.List(context.Background(), models.StudentFilter{})
	require.NoError(t, err)
	require.Len(t, students, 2)
	require.NotNil(t, students[0].ClassName)
	assert.Equal(t, "1º Ano A", *students[0].ClassName)
	assert.Nil(t, students[1].ClassName)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryListWithFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	mock.ExpectQuery(`LOWER\(s.name\) LIKE \$1 AND s.class_id = \$2 AND s.status = \$3`).
		WithArgs("%ana%", "class-1", models.StudentStatusActive).
		WillReturnRows(studentRows().
			AddRow("stu-1", "Ana Silva Santos", now.AddDate(-14, 0, 0), nil, models.StudentStatusActive, "class-1", now, now, "1º Ano A"))

	students, err := repo.List(context.Background(), models.StudentFilter{
		Search:  "Ana",
		ClassID: "class-1",
		Status:  models.StudentStatusActive,
	})
	require.NoError(t, err)
	require.Len(t, students, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithoutClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(0, 1))

	student := &models.Student{Name: "Ana", BirthDate: time.Now().AddDate(-14, 0, 0), Status: models.StudentStatusActive}
	require.NoError(t, repo.Create(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithClass(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	classID := "class-1"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM classes WHERE id = $1 FOR UPDATE")).
		WithArgs(classID).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE class_id = $1")).
		WithArgs(classID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(10))
	mock.ExpectExec("INSERT INTO students").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{Name: "Ana", BirthDate: time.Now().AddDate(-14, 0, 0), Status: models.StudentStatusActive, ClassID: &classID}
	require.NoError(t, repo.Create(context.Background(), student))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithClassFull(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	classID := "class-1"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM classes WHERE id = $1 FOR UPDATE")).
		WithArgs(classID).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(25))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE class_id = $1")).
		WithArgs(classID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))
	mock.ExpectRollback()

	student := &models.Student{Name: "Ana", BirthDate: time.Now().AddDate(-14, 0, 0), Status: models.StudentStatusActive, ClassID: &classID}
	err := repo.Create(context.Background(), student)
	require.ErrorIs(t, err, ErrClassFull)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateWithClassMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	classID := "missing"
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM classes WHERE id = $1 FOR UPDATE")).
		WithArgs(classID).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	student := &models.Student{Name: "Ana", BirthDate: time.Now().AddDate(-14, 0, 0), Status: models.StudentStatusActive, ClassID: &classID}
	err := repo.Create(context.Background(), student)
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs("stu-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "stu-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM students WHERE id = $1")).
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "missing")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
