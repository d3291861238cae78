package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/policy"
	repo "github.com/oksasatya/classroom-tasks/internal/domain/repository"
	"github.com/oksasatya/classroom-tasks/pkg/mailer"
	"github.com/oksasatya/classroom-tasks/pkg/validation"
)

const (
	searchSize        = 50
	sideEffectTimeout = 3 * time.Second
)

type TaskService struct {
	Tasks  repo.TaskRepository
	Users  repo.UserRepository
	Index  TaskIndexer    // optional
	Events EventPublisher // optional
	Logger *logrus.Logger
	now    func() time.Time
}

func NewTaskService(tasks repo.TaskRepository, users repo.UserRepository, index TaskIndexer, events EventPublisher, logger *logrus.Logger) *TaskService {
	return &TaskService{Tasks: tasks, Users: users, Index: index, Events: events, Logger: logger, now: time.Now}
}

type CreateTaskInput struct {
	Title       string
	Description string
	Progress    string
	DueDate     string
}

// UpdateTaskInput fields left nil are unchanged. An empty DueDate clears it.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Progress    *string
	DueDate     *string
}

// Owner is the public part of a task owner's profile.
type Owner struct {
	ID    string
	Email string
	Role  entity.Role
}

type TaskView struct {
	Task  entity.Task
	Owner Owner
}

func (s *TaskService) Create(ctx context.Context, req policy.Requester, in CreateTaskInput) (*entity.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, invalid("title", "is required")
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return nil, invalid("description", "is required")
	}
	progress := entity.ProgressNotStarted
	if in.Progress != "" {
		p, err := parseProgress(in.Progress)
		if err != nil {
			return nil, err
		}
		progress = p
	}
	t := &entity.Task{Title: title, Description: desc, Progress: progress, UserID: req.ID}
	if in.DueDate != "" {
		d, err := parseDueDate(in.DueDate)
		if err != nil {
			return nil, err
		}
		t.DueDate = &d
	}

	if err := s.Tasks.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	s.afterChange(ctx, mailer.TaskCreated, t)
	return t, nil
}

// List returns the tasks req may see, newest first, with their owners.
func (s *TaskService) List(ctx context.Context, req policy.Requester, progressFilter string) ([]TaskView, error) {
	f, err := s.scope(ctx, req, progressFilter)
	if err != nil {
		return nil, err
	}
	tasks, err := s.Tasks.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	return s.withOwners(ctx, tasks)
}

// Search asks the index for matches inside the caller's visibility scope and
// reloads them from the store, which stays authoritative.
func (s *TaskService) Search(ctx context.Context, req policy.Requester, query, progressFilter string) ([]TaskView, error) {
	if s.Index == nil {
		return nil, ErrSearchUnavailable
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalid("q", "is required")
	}
	f, err := s.scope(ctx, req, progressFilter)
	if err != nil {
		return nil, err
	}
	ids, err := s.Index.SearchTaskIDs(ctx, query, f.OwnerIDs, f.Progress, searchSize)
	if err != nil {
		return nil, fmt.Errorf("search tasks: %w", err)
	}
	if len(ids) == 0 {
		return []TaskView{}, nil
	}
	f.IDs = ids
	tasks, err := s.Tasks.Find(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	byRelevance(tasks, ids)
	return s.withOwners(ctx, tasks)
}

// byRelevance puts tasks back in the index's hit order; the store returns
// them newest first.
func byRelevance(tasks []entity.Task, ids []string) {
	rank := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, seen := rank[id]; !seen {
			rank[id] = i
		}
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		return rank[tasks[i].ID] < rank[tasks[j].ID]
	})
}

func (s *TaskService) Update(ctx context.Context, req policy.Requester, id string, in UpdateTaskInput) (*entity.Task, error) {
	if _, err := s.mutable(ctx, req, id); err != nil {
		return nil, err
	}
	patch, err := buildPatch(in)
	if err != nil {
		return nil, err
	}
	t, err := s.Tasks.Update(ctx, id, patch)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("update task: %w", err)
	}
	s.afterChange(ctx, mailer.TaskUpdated, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, req policy.Requester, id string) error {
	t, err := s.mutable(ctx, req, id)
	if err != nil {
		return err
	}
	ok, err := s.Tasks.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if !ok {
		return ErrTaskNotFound
	}
	s.afterChange(ctx, mailer.TaskDeleted, t)
	return nil
}

// mutable loads the task and checks req owns it. Absence is reported before
// ownership.
func (s *TaskService) mutable(ctx context.Context, req policy.Requester, id string) (*entity.Task, error) {
	t, err := s.Tasks.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("load task: %w", err)
	}
	if err := policy.AuthorizeMutation(req, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TaskService) scope(ctx context.Context, req policy.Requester, progressFilter string) (repo.TaskFilter, error) {
	progress, err := policy.ParseProgressFilter(progressFilter)
	if err != nil {
		return repo.TaskFilter{}, err
	}
	var studentIDs []string
	if req.Role == entity.RoleTeacher {
		students, err := s.Users.ListByTeacher(ctx, req.ID)
		if err != nil {
			return repo.TaskFilter{}, fmt.Errorf("list students: %w", err)
		}
		studentIDs = make([]string, 0, len(students))
		for _, st := range students {
			studentIDs = append(studentIDs, st.ID)
		}
	}
	return policy.VisibilityScope(req, studentIDs, progress), nil
}

func (s *TaskService) withOwners(ctx context.Context, tasks []entity.Task) ([]TaskView, error) {
	owners := make(map[string]Owner)
	out := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		o, ok := owners[t.UserID]
		if !ok {
			u, err := s.Users.GetByID(ctx, t.UserID)
			switch {
			case err == nil:
				o = Owner{ID: u.ID, Email: u.Email, Role: u.Role}
			case errors.Is(err, repo.ErrNotFound):
				o = Owner{ID: t.UserID}
			default:
				return nil, fmt.Errorf("load owner: %w", err)
			}
			owners[t.UserID] = o
		}
		out = append(out, TaskView{Task: t, Owner: o})
	}
	return out, nil
}

// afterChange keeps the search index current and notifies the owner's
// teacher. Failures are logged and never fail the request.
func (s *TaskService) afterChange(ctx context.Context, eventType string, t *entity.Task) {
	if s.Index != nil {
		c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
		var err error
		if eventType == mailer.TaskDeleted {
			err = s.Index.DeleteTask(c, t.ID)
		} else {
			err = s.Index.IndexTask(c, *t)
		}
		cancel()
		if err != nil {
			s.warn(err, t.ID, "task index update failed")
		}
	}
	if s.Events == nil {
		return
	}
	ev, ok, err := s.buildEvent(ctx, eventType, t)
	if err != nil {
		s.warn(err, t.ID, "build task event failed")
		return
	}
	if !ok {
		return
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.Events.PublishJSON(c, ev); err != nil {
		s.warn(err, t.ID, "publish task event failed")
	}
}

// buildEvent reports ok=false when the owner is not a student.
func (s *TaskService) buildEvent(ctx context.Context, eventType string, t *entity.Task) (mailer.TaskEvent, bool, error) {
	owner, err := s.Users.GetByID(ctx, t.UserID)
	if err != nil {
		return mailer.TaskEvent{}, false, err
	}
	if owner.Role != entity.RoleStudent || owner.TeacherID == nil {
		return mailer.TaskEvent{}, false, nil
	}
	teacher, err := s.Users.GetByID(ctx, *owner.TeacherID)
	if err != nil {
		return mailer.TaskEvent{}, false, err
	}
	ev := mailer.TaskEvent{
		Type:         eventType,
		TaskID:       t.ID,
		Title:        t.Title,
		Progress:     string(t.Progress),
		StudentID:    owner.ID,
		StudentEmail: owner.Email,
		TeacherID:    teacher.ID,
		TeacherEmail: teacher.Email,
		OccurredAt:   s.clock().UTC(),
	}
	if t.DueDate != nil {
		ev.DueDate = t.DueDate.Format("2006-01-02")
	}
	return ev, true, nil
}

func (s *TaskService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

func (s *TaskService) warn(err error, taskID, msg string) {
	if s.Logger != nil {
		s.Logger.WithError(err).WithField("task_id", taskID).Warn(msg)
	}
}

func buildPatch(in UpdateTaskInput) (entity.TaskPatch, error) {
	var p entity.TaskPatch
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return p, invalid("title", "must not be empty")
		}
		p.Title = &title
	}
	if in.Description != nil {
		desc := strings.TrimSpace(*in.Description)
		if desc == "" {
			return p, invalid("description", "must not be empty")
		}
		p.Description = &desc
	}
	if in.Progress != nil {
		pr, err := parseProgress(*in.Progress)
		if err != nil {
			return p, err
		}
		p.Progress = &pr
	}
	if in.DueDate != nil {
		if *in.DueDate == "" {
			p.ClearDueDate = true
		} else {
			d, err := parseDueDate(*in.DueDate)
			if err != nil {
				return p, err
			}
			p.DueDate = &d
		}
	}
	return p, nil
}

func parseProgress(s string) (entity.Progress, error) {
	p := entity.Progress(s)
	if !p.Valid() {
		return "", invalid("progress", "must be one of: not-started, in-progress, completed")
	}
	return p, nil
}

func parseDueDate(s string) (time.Time, error) {
	d, err := validation.ParseDate(s)
	if err != nil {
		return time.Time{}, invalid("dueDate", "must be a date (YYYY-MM-DD)")
	}
	return d, nil
}
