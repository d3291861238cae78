package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches the id, including ids
	// that are not well-formed for the backend.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned by Create when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
)

// UserRepository defines the interface for the credential store.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// ListByRole returns users with the given role ordered by email.
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
	// ListByTeacher returns the students assigned to teacherID ordered by email.
	ListByTeacher(ctx context.Context, teacherID string) ([]entity.User, error)
}
