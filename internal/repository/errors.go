package repository

import "errors"

// Sentinel errors surfaced by transactional operations. The invariants they
// guard (capacity bound, enrollment exclusivity, empty-class deletion) are
// checked under a row lock, so the violation is only known inside the
// transaction and has to be reported out to the service layer.
var (
	ErrClassFull       = errors.New("class is at capacity")
	ErrClassNotEmpty   = errors.New("class has enrolled students")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in a class")
)
