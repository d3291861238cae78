package entity

import (
	"time"
)

// User is the aggregate root for the credential store.
// PasswordHash holds a bcrypt hash and never leaves the service.
//
// TeacherID is set if and only if Role is RoleStudent.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         Role
	TeacherID    *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) IsTeacher() bool { return u.Role == RoleTeacher }
