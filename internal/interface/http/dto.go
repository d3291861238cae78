package handlers

import (
	"time"

	"github.com/oksasatya/classroom-tasks/internal/application"
	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
)

const dateLayout = "2006-01-02"

type userDTO struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TeacherID *string   `json:"teacherId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserDTO(u *entity.User) userDTO {
	return userDTO{
		ID:        u.ID,
		Email:     u.Email,
		Role:      string(u.Role),
		TeacherID: u.TeacherID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toUserDTOs(us []entity.User) []userDTO {
	out := make([]userDTO, 0, len(us))
	for i := range us {
		out = append(out, toUserDTO(&us[i]))
	}
	return out
}

type teacherDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type ownerDTO struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
}

type taskDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Progress    string    `json:"progress"`
	DueDate     *string   `json:"dueDate"`
	UserID      string    `json:"userId"`
	Owner       *ownerDTO `json:"owner,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func toTaskDTO(t *entity.Task) taskDTO {
	d := taskDTO{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Progress:    string(t.Progress),
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
	if t.DueDate != nil {
		s := t.DueDate.UTC().Format(dateLayout)
		d.DueDate = &s
	}
	return d
}

func toTaskViewDTOs(views []application.TaskView) []taskDTO {
	out := make([]taskDTO, 0, len(views))
	for i := range views {
		d := toTaskDTO(&views[i].Task)
		o := views[i].Owner
		d.Owner = &ownerDTO{ID: o.ID, Email: o.Email, Role: string(o.Role)}
		out = append(out, d)
	}
	return out
}
