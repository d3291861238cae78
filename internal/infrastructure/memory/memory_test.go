package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	teacher := &entity.User{Email: "a@school.test", PasswordHash: "x", Role: entity.RoleTeacher}
	require.NoError(t, r.Create(ctx, teacher))
	require.NotEmpty(t, teacher.ID)
	assert.False(t, teacher.CreatedAt.IsZero())

	err := r.Create(ctx, &entity.User{Email: "a@school.test", Role: entity.RoleTeacher})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	got, err := r.GetByEmail(ctx, "a@school.test")
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, got.ID)

	_, err = r.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = r.GetByEmail(ctx, "missing@school.test")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUserRepository_ListsSortedByEmail(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()

	t1 := &entity.User{Email: "z@school.test", Role: entity.RoleTeacher}
	t2 := &entity.User{Email: "m@school.test", Role: entity.RoleTeacher}
	require.NoError(t, r.Create(ctx, t1))
	require.NoError(t, r.Create(ctx, t2))

	for _, email := range []string{"s3@school.test", "s1@school.test"} {
		require.NoError(t, r.Create(ctx, &entity.User{Email: email, Role: entity.RoleStudent, TeacherID: &t1.ID}))
	}
	require.NoError(t, r.Create(ctx, &entity.User{Email: "s2@school.test", Role: entity.RoleStudent, TeacherID: &t2.ID}))

	teachers, err := r.ListByRole(ctx, entity.RoleTeacher)
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "m@school.test", teachers[0].Email)
	assert.Equal(t, "z@school.test", teachers[1].Email)

	students, err := r.ListByTeacher(ctx, t1.ID)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "s1@school.test", students[0].Email)
	assert.Equal(t, "s3@school.test", students[1].Email)

	none, err := r.ListByTeacher(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestUserRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	r := NewUserRepository()
	tid := "t1"
	u := &entity.User{Email: "s@school.test", Role: entity.RoleStudent, TeacherID: &tid}
	require.NoError(t, r.Create(ctx, u))

	got, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	*got.TeacherID = "changed"

	again, err := r.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "t1", *again.TeacherID)
}

func TestTaskRepository_FindOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewTaskRepository()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time { tick++; return base.Add(time.Duration(tick) * time.Minute) }

	first := &entity.Task{Title: "first", UserID: "u1", Progress: entity.ProgressNotStarted}
	second := &entity.Task{Title: "second", UserID: "u2", Progress: entity.ProgressCompleted}
	third := &entity.Task{Title: "third", UserID: "u3", Progress: entity.ProgressCompleted}
	for _, tk := range []*entity.Task{first, second, third} {
		require.NoError(t, r.Create(ctx, tk))
	}

	got, err := r.Find(ctx, repository.TaskFilter{OwnerIDs: []string{"u1", "u2"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Title)
	assert.Equal(t, "first", got[1].Title)

	got, err = r.Find(ctx, repository.TaskFilter{OwnerIDs: []string{"u1", "u2", "u3"}, Progress: entity.ProgressCompleted})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "third", got[0].Title)

	got, err = r.Find(ctx, repository.TaskFilter{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestTaskRepository_FindTiesKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	r := NewTaskRepository()
	fixed := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return fixed }

	require.NoError(t, r.Create(ctx, &entity.Task{Title: "a", UserID: "u1"}))
	require.NoError(t, r.Create(ctx, &entity.Task{Title: "b", UserID: "u1"}))

	got, err := r.Find(ctx, repository.TaskFilter{OwnerIDs: []string{"u1"}})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	assert.Equal(t, "a", got[1].Title)
}

func TestTaskRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	r := NewTaskRepository()

	tk := &entity.Task{Title: "HW1", Description: "read", UserID: "u1", Progress: entity.ProgressNotStarted}
	require.NoError(t, r.Create(ctx, tk))

	done := entity.ProgressCompleted
	updated, err := r.Update(ctx, tk.ID, entity.TaskPatch{Progress: &done})
	require.NoError(t, err)
	assert.Equal(t, entity.ProgressCompleted, updated.Progress)
	assert.Equal(t, "HW1", updated.Title)
	assert.Equal(t, "u1", updated.UserID)

	_, err = r.Update(ctx, "missing", entity.TaskPatch{Progress: &done})
	assert.ErrorIs(t, err, repository.ErrNotFound)

	ok, err := r.Delete(ctx, tk.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.Delete(ctx, tk.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = r.GetByID(ctx, tk.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
