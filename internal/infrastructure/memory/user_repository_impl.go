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

// UserRepository keeps users in process memory. It backs STORE_DRIVER=memory
// and the service and handler tests.
type UserRepository struct {
	mu      sync.RWMutex
	byID    map[string]entity.User
	byEmail map[string]string
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byID:    make(map[string]entity.User),
		byEmail: make(map[string]string),
		now:     time.Now,
	}
}

func (r *UserRepository) Create(_ context.Context, u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[u.Email]; ok {
		return repository.ErrEmailTaken
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now

	r.byID[u.ID] = cloneUser(*u)
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(u)
	return &out, nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := cloneUser(r.byID[id])
	return &out, nil
}

func (r *UserRepository) ListByRole(_ context.Context, role entity.Role) ([]entity.User, error) {
	return r.list(func(u entity.User) bool { return u.Role == role }), nil
}

func (r *UserRepository) ListByTeacher(_ context.Context, teacherID string) ([]entity.User, error) {
	return r.list(func(u entity.User) bool {
		return u.TeacherID != nil && *u.TeacherID == teacherID
	}), nil
}

func (r *UserRepository) list(keep func(entity.User) bool) []entity.User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.User, 0)
	for _, u := range r.byID {
		if keep(u) {
			out = append(out, cloneUser(u))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out
}

func cloneUser(u entity.User) entity.User {
	if u.TeacherID != nil {
		id := *u.TeacherID
		u.TeacherID = &id
	}
	return u
}

var _ repository.UserRepository = (*UserRepository)(nil)
