package user

import (
	"net/http"
	"time"

	"github.com/tutorhive/lesson-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound           = apperror.New(http.StatusNotFound, "user not found")
	ErrEmailAlreadyUsed   = apperror.New(http.StatusConflict, "email already used")
	ErrInvalidCredentials = apperror.New(http.StatusUnauthorized, "invalid email or password")
	ErrInactiveUser       = apperror.New(http.StatusUnauthorized, "user is inactive")
	ErrInvalidRole        = apperror.New(http.StatusBadRequest, "role must be teacher or student")
)

const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User is a platform account, either a teacher or a student.
type User struct {
	ID           string // UUID
	Email        string
	PasswordHash string
	DisplayName  *string
	Role         string
	CreatedAt    time.Time
	LastLoginAt  *time.Time
	IsActive     bool
}
