package repository

import (
	"context"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
)

// TaskFilter selects tasks. Empty OwnerIDs matches nothing; an empty Progress
// matches any progress; a nil IDs slice does not restrict by id.
type TaskFilter struct {
	OwnerIDs []string
	Progress entity.Progress
	IDs      []string
}

// Matches reports whether t satisfies the filter. Backends that cannot push a
// filter down use it to post-filter.
func (f TaskFilter) Matches(t *entity.Task) bool {
	if !contains(f.OwnerIDs, t.UserID) {
		return false
	}
	if f.Progress != "" && t.Progress != f.Progress {
		return false
	}
	if f.IDs != nil && !contains(f.IDs, t.ID) {
		return false
	}
	return true
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// TaskRepository defines the interface for the task store.
type TaskRepository interface {
	Create(ctx context.Context, t *entity.Task) error
	// Find returns the matching tasks, most recently created first.
	Find(ctx context.Context, f TaskFilter) ([]entity.Task, error)
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	// Update applies the patch and returns the stored task, or ErrNotFound.
	Update(ctx context.Context, id string, p entity.TaskPatch) (*entity.Task, error)
	// Delete reports whether a task was removed.
	Delete(ctx context.Context, id string) (bool, error)
}
