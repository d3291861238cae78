// Package policy decides what a requester may see and change. Every function
// here is pure: callers resolve whatever records are needed beforehand.
package policy

import (
	"errors"
	"fmt"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
)

var (
	ErrNotAuthorized   = errors.New("not authorized")
	ErrTeacherNotFound = errors.New("teacher not found")
	ErrNotATeacher     = errors.New("referenced user is not a teacher")
	ErrInvalidProgress = errors.New("invalid progress filter")
)

// Requester is the authenticated caller.
type Requester struct {
	ID   string
	Role entity.Role
}

func RequesterOf(u *entity.User) Requester {
	return Requester{ID: u.ID, Role: u.Role}
}

// ParseProgressFilter turns a query value into a progress narrowing.
// "" and "all" mean no narrowing and yield the empty Progress.
func ParseProgressFilter(s string) (entity.Progress, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	p := entity.Progress(s)
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidProgress, s)
	}
	return p, nil
}

// VisibilityScope returns the filter of tasks req may list. studentIDs are the
// ids of users whose teacher is req; they are ignored unless req is a teacher.
func VisibilityScope(req Requester, studentIDs []string, progress entity.Progress) repository.TaskFilter {
	owners := []string{req.ID}
	if req.Role == entity.RoleTeacher {
		for _, id := range studentIDs {
			if id != req.ID {
				owners = append(owners, id)
			}
		}
	}
	return repository.TaskFilter{OwnerIDs: owners, Progress: progress}
}

// CanMutate reports whether req may update or delete t. Only the owner may,
// whatever the role: teachers see their students' tasks but cannot change them.
func CanMutate(req Requester, t *entity.Task) bool {
	return t != nil && req.ID != "" && t.UserID == req.ID
}

// AuthorizeMutation is CanMutate as an error.
func AuthorizeMutation(req Requester, t *entity.Task) error {
	if !CanMutate(req, t) {
		return ErrNotAuthorized
	}
	return nil
}

// ValidateTeacherReference checks the user a new student points at. ref is nil
// when the reference did not resolve.
func ValidateTeacherReference(ref *entity.User) error {
	if ref == nil {
		return ErrTeacherNotFound
	}
	if ref.Role != entity.RoleTeacher {
		return ErrNotATeacher
	}
	return nil
}
