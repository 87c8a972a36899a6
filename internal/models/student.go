package models

import "time"

// StudentStatus represents the lifecycle state of a student.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
)

// Student represents a learner registered in the institution. A student is
// assigned to at most one class at a time; the assignment lives on the
// student row itself.
type Student struct {
	ID        string        `db:"id" json:"id"`
	Name      string        `db:"name" json:"name"`
	BirthDate time.Time     `db:"birth_date" json:"birth_date"`
	Email     *string       `db:"email" json:"email,omitempty"`
	Status    StudentStatus `db:"status" json:"status"`
	ClassID   *string       `db:"class_id" json:"class_id,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// AgeAt returns the student's age in whole years at the given moment. The
// year is not counted until the birthday has passed.
func (s *Student) AgeAt(now time.Time) int {
	age := now.Year() - s.BirthDate.Year()
	if now.Month() < s.BirthDate.Month() ||
		(now.Month() == s.BirthDate.Month() && now.Day() < s.BirthDate.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age
}

// StudentDetail enriches Student with the resolved class name and derived age.
type StudentDetail struct {
	Student
	ClassName *string `db:"class_name" json:"class_name,omitempty"`
	Age       int     `db:"-" json:"age"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search  string
	ClassID string
	Status  StudentStatus
}
