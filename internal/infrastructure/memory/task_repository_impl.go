package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
)

type storedTask struct {
	task entity.Task
	seq  uint64
}

// TaskRepository keeps tasks in process memory.
type TaskRepository struct {
	mu    sync.RWMutex
	items map[string]storedTask
	seq   uint64
	now   func() time.Time
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{items: make(map[string]storedTask), now: time.Now}
}

func (r *TaskRepository) Create(_ context.Context, t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	r.seq++
	r.items[t.ID] = storedTask{task: cloneTask(*t), seq: r.seq}
	return nil
}

func (r *TaskRepository) Find(_ context.Context, f repository.TaskFilter) ([]entity.Task, error) {
	r.mu.RLock()
	matched := make([]storedTask, 0)
	for _, st := range r.items {
		if f.Matches(&st.task) {
			matched = append(matched, st)
		}
	}
	r.mu.RUnlock()

	// newest first; seq breaks ties between tasks created in the same instant
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.task.CreatedAt.Equal(b.task.CreatedAt) {
			return a.task.CreatedAt.After(b.task.CreatedAt)
		}
		return a.seq > b.seq
	})

	out := make([]entity.Task, 0, len(matched))
	for _, st := range matched {
		out = append(out, cloneTask(st.task))
	}
	return out, nil
}

func (r *TaskRepository) GetByID(_ context.Context, id string) (*entity.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	st, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneTask(st.task)
	return &out, nil
}

func (r *TaskRepository) Update(_ context.Context, id string, p entity.TaskPatch) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	st.task = p.Apply(st.task)
	st.task.UpdatedAt = r.now().UTC()
	r.items[id] = st

	out := cloneTask(st.task)
	return &out, nil
}

func (r *TaskRepository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return false, nil
	}
	delete(r.items, id)
	return true, nil
}

func cloneTask(t entity.Task) entity.Task {
	if t.DueDate != nil {
		d := *t.DueDate
		t.DueDate = &d
	}
	return t
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
