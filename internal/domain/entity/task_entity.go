package entity

import "time"

// Progress is the three-state status of a task. Any state may follow any other.
type Progress string

const (
	ProgressNotStarted Progress = "not-started"
	ProgressInProgress Progress = "in-progress"
	ProgressCompleted  Progress = "completed"
)

func (p Progress) Valid() bool {
	switch p {
	case ProgressNotStarted, ProgressInProgress, ProgressCompleted:
		return true
	}
	return false
}

// Task is owned by exactly one user, fixed at creation.
type Task struct {
	ID          string
	Title       string
	Description string
	Progress    Progress
	DueDate     *time.Time // calendar date, UTC midnight
	UserID      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPatch carries the mutable fields of a task. Nil fields are left unchanged.
type TaskPatch struct {
	Title        *string
	Description  *string
	Progress     *Progress
	DueDate      *time.Time
	ClearDueDate bool
}

// Apply returns a copy of t with the patch applied.
func (p TaskPatch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Progress != nil {
		t.Progress = *p.Progress
	}
	if p.ClearDueDate {
		t.DueDate = nil
	} else if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	return t
}
