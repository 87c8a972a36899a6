// Package seed populates the database with sample data for local
// development and manual testing.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/escolalab/gestao-escolar-api/internal/models"
	"github.com/escolalab/gestao-escolar-api/internal/repository"
)

type userSeed struct {
	username string
	fullName string
	email    string
	role     models.UserRole
	password string
}

type classSeed struct {
	name     string
	capacity int
}

type studentSeed struct {
	name      string
	birthDate string
	email     string
	status    models.StudentStatus
	classIdx  int // index into classes, -1 for unenrolled
}

var users = []userSeed{
	{"admin", "Administrador do Sistema", "admin@escola.com", models.RoleAdmin, "admin123"},
	{"prof.maria", "Maria Silva Santos", "maria.santos@escola.com", models.RoleTeacher, "prof123"},
	{"prof.joao", "João Carlos Lima", "joao.lima@escola.com", models.RoleTeacher, "prof123"},
	{"prof.ana", "Ana Paula Costa", "ana.costa@escola.com", models.RoleTeacher, "prof123"},
}

var classes = []classSeed{
	{"1º Ano A", 25},
	{"1º Ano B", 25},
	{"2º Ano A", 30},
	{"2º Ano B", 30},
	{"3º Ano A", 28},
	{"3º Ano B", 28},
	{"4º Ano A", 20},
	{"5º Ano A", 22},
}

var students = []studentSeed{
	{"Ana Silva Santos", "2012-03-15", "ana.silva@email.com", models.StudentStatusActive, 0},
	{"Bruno Costa Lima", "2011-07-22", "bruno.costa@email.com", models.StudentStatusActive, 0},
	{"Carla Oliveira Souza", "2012-01-08", "carla.oliveira@email.com", models.StudentStatusActive, 0},
	{"Diego Ferreira Alves", "2011-11-30", "diego.ferreira@email.com", models.StudentStatusActive, 1},
	{"Eduarda Martins Rocha", "2012-05-12", "eduarda.martins@email.com", models.StudentStatusActive, 1},
	{"Felipe Santos Dias", "2011-09-05", "felipe.santos@email.com", models.StudentStatusActive, 1},
	{"Gabriela Lima Pereira", "2010-12-18", "gabriela.lima@email.com", models.StudentStatusActive, 2},
	{"Henrique Alves Barbosa", "2011-02-25", "henrique.alves@email.com", models.StudentStatusActive, 2},
	{"Isabela Rodrigues Nunes", "2010-08-14", "isabela.rodrigues@email.com", models.StudentStatusActive, 2},
	{"João Pedro Silva", "2011-04-03", "joao.pedro@email.com", models.StudentStatusActive, 3},
	{"Karen Lopes Machado", "2010-10-27", "karen.lopes@email.com", models.StudentStatusActive, 3},
	{"Leonardo Costa Ribeiro", "2011-06-09", "leonardo.costa@email.com", models.StudentStatusActive, 3},
	{"Mariana Sousa Cruz", "2009-11-21", "mariana.sousa@email.com", models.StudentStatusActive, 4},
	{"Nicolas Fernandes Melo", "2010-01-16", "nicolas.fernandes@email.com", models.StudentStatusActive, 4},
	{"Olivia Santos Carvalho", "2009-07-08", "olivia.santos@email.com", models.StudentStatusActive, 4},
	{"Pedro Henrique Moura", "2010-03-29", "pedro.henrique@email.com", models.StudentStatusActive, 5},
	{"Quésia Araújo Mendes", "2009-09-12", "quesia.araujo@email.com", models.StudentStatusActive, 5},
	{"Rafael Gomes Teixeira", "2010-05-24", "rafael.gomes@email.com", models.StudentStatusActive, 5},
	{"Sofia Vieira Nascimento", "2008-12-07", "sofia.vieira@email.com", models.StudentStatusActive, 6},
	{"Thiago Cardoso Farias", "2009-04-19", "thiago.cardoso@email.com", models.StudentStatusActive, 6},
	{"Valentina Cruz Monteiro", "2007-08-31", "valentina.cruz@email.com", models.StudentStatusActive, 7},
	{"William Ramos Andrade", "2008-02-13", "william.ramos@email.com", models.StudentStatusActive, 7},
	{"Xavier Silva Pinto", "2012-06-20", "xavier.silva@email.com", models.StudentStatusInactive, -1},
	{"Yasmin Torres Batista", "2011-10-04", "yasmin.torres@email.com", models.StudentStatusInactive, -1},
	{"Zacarias Almeida Costa", "2013-01-28", "zacarias.almeida@email.com", models.StudentStatusInactive, -1},
}

// Clear removes all rows from the application tables.
func Clear(ctx context.Context, db *sqlx.DB) error {
	for _, table := range []string{"students", "classes", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// Run populates the database with sample users, classes and students.
// Existing data is wiped first.
func Run(ctx context.Context, db *sqlx.DB, logger *zap.Logger) error {
	if err := Clear(ctx, db); err != nil {
		return err
	}

	userRepo := repository.NewUserRepository(db)
	classRepo := repository.NewClassRepository(db)
	studentRepo := repository.NewStudentRepository(db)

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", u.username, err)
		}
		email := u.email
		user := &models.User{
			Username:     u.username,
			PasswordHash: string(hash),
			FullName:     u.fullName,
			Email:        &email,
			Role:         u.role,
			Active:       true,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			return err
		}
	}
	logger.Sugar().Infow("seeded users", "count", len(users))

	classIDs := make([]string, len(classes))
	for i, cs := range classes {
		class := &models.Class{Name: cs.name, Capacity: cs.capacity}
		if err := classRepo.Create(ctx, class); err != nil {
			return err
		}
		classIDs[i] = class.ID
	}
	logger.Sugar().Infow("seeded classes", "count", len(classes))

	enrolled := 0
	for _, ss := range students {
		birthDate, err := time.Parse("2006-01-02", ss.birthDate)
		if err != nil {
			return fmt.Errorf("parse birth date for %s: %w", ss.name, err)
		}
		email := ss.email
		student := &models.Student{
			Name:      ss.name,
			BirthDate: birthDate,
			Email:     &email,
			Status:    ss.status,
		}
		if ss.classIdx >= 0 {
			id := classIDs[ss.classIdx]
			student.ClassID = &id
			enrolled++
		}
		if err := studentRepo.Create(ctx, student); err != nil {
			return err
		}
	}
	logger.Sugar().Infow("seeded students", "count", len(students), "enrolled", enrolled)

	return nil
}
