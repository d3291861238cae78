package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/policy"
	"github.com/oksasatya/classroom-tasks/internal/infrastructure/memory"
	"github.com/oksasatya/classroom-tasks/pkg/helpers"
)

type fakeIndex struct {
	mu        sync.Mutex
	docs      map[string]entity.Task
	deleted   []string
	searchIDs []string
	gotOwners []string
	err       error
}

func newFakeIndex() *fakeIndex { return &fakeIndex{docs: map[string]entity.Task{}} }

func (f *fakeIndex) IndexTask(_ context.Context, t entity.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.docs[t.ID] = t
	return nil
}

func (f *fakeIndex) DeleteTask(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	delete(f.docs, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeIndex) SearchTaskIDs(_ context.Context, _ string, ownerIDs []string, _ entity.Progress, _ int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gotOwners = ownerIDs
	return f.searchIDs, nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, body)
	return nil
}

var errBoom = errors.New("boom")

// fixture holds two teachers (A, C) with one student each (B under A, D under C).
type fixture struct {
	users  *UserService
	tasks  *TaskService
	index  *fakeIndex
	events *fakePublisher

	teacherA, studentB, teacherC, studentD policy.Requester
	emails                                 map[string]string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	userRepo := memory.NewUserRepository()
	taskRepo := memory.NewTaskRepository()
	logger := helpers.NewDiscardLogger()

	f := &fixture{
		index:  newFakeIndex(),
		events: &fakePublisher{},
		emails: map[string]string{},
	}
	f.users = NewUserService(userRepo, helpers.NewJWTManager("test-secret", time.Hour), logger)
	f.tasks = NewTaskService(taskRepo, userRepo, f.index, f.events, logger)

	signup := func(email string, role entity.Role, teacherID string) policy.Requester {
		u, err := f.users.Signup(ctx, SignupInput{Email: email, Password: "secret1", Role: string(role), TeacherID: teacherID})
		require.NoError(t, err)
		f.emails[u.ID] = u.Email
		return policy.RequesterOf(u)
	}
	f.teacherA = signup("a@school.test", entity.RoleTeacher, "")
	f.teacherC = signup("c@school.test", entity.RoleTeacher, "")
	f.studentB = signup("b@school.test", entity.RoleStudent, f.teacherA.ID)
	f.studentD = signup("d@school.test", entity.RoleStudent, f.teacherC.ID)
	return f
}

func (f *fixture) createTask(t *testing.T, req policy.Requester, title string) *entity.Task {
	t.Helper()
	task, err := f.tasks.Create(context.Background(), req, CreateTaskInput{Title: title, Description: title + " description"})
	require.NoError(t, err)
	return task
}

func titles(views []TaskView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Task.Title)
	}
	return out
}
