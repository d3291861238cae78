package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
	"github.com/oksasatya/classroom-tasks/internal/domain/repository"
)

const taskColumns = `id::text, title, description, progress, due_date, user_id::text, created_at, updated_at`

type TaskRepository struct {
	db DB
}

func NewTaskRepository(db DB) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row pgx.Row) (*entity.Task, error) {
	var (
		t        entity.Task
		progress string
		due      pgtype.Date
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &progress, &due, &t.UserID, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Progress = entity.Progress(progress)
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	return &t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	row := r.db.QueryRow(ctx, `
		INSERT INTO tasks (title, description, progress, due_date, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text, created_at, updated_at
	`, t.Title, t.Description, string(t.Progress), t.DueDate, t.UserID)

	return row.Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// findQuery renders the filter as SQL. Ids arrive as text[] and are cast to
// uuid[] so user_id and id stay comparable against their indexes; callers
// drop malformed ids first.
func findQuery(f repository.TaskFilter) (string, []any) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		where = append(where, strings.Replace(cond, "?", "$"+strconv.Itoa(len(args)), 1))
	}

	add("user_id = ANY(?::text[]::uuid[])", f.OwnerIDs)
	if f.Progress != "" {
		add("progress = ?", string(f.Progress))
	}
	if f.IDs != nil {
		add("id = ANY(?::text[]::uuid[])", f.IDs)
	}
	sql := `SELECT ` + taskColumns + ` FROM tasks WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC, id`
	return sql, args
}

func (r *TaskRepository) Find(ctx context.Context, f repository.TaskFilter) ([]entity.Task, error) {
	f.OwnerIDs = validIDs(f.OwnerIDs)
	if f.IDs != nil {
		f.IDs = validIDs(f.IDs)
	}
	if len(f.OwnerIDs) == 0 || (f.IDs != nil && len(f.IDs) == 0) {
		return []entity.Task{}, nil
	}
	sql, args := findQuery(f)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]entity.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

func (r *TaskRepository) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	t, err := scanTask(r.db.QueryRow(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

// Update applies the patch in a single statement.
func (r *TaskRepository) Update(ctx context.Context, id string, p entity.TaskPatch) (*entity.Task, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	var progress *string
	if p.Progress != nil {
		s := string(*p.Progress)
		progress = &s
	}
	t, err := scanTask(r.db.QueryRow(ctx, `
		UPDATE tasks SET
			title       = COALESCE($2, title),
			description = COALESCE($3, description),
			progress    = COALESCE($4, progress),
			due_date    = CASE WHEN $5 THEN NULL ELSE COALESCE($6, due_date) END,
			updated_at  = now()
		WHERE id = $1
		RETURNING `+taskColumns,
		id, p.Title, p.Description, progress, p.ClearDueDate, p.DueDate))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return t, nil
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

var _ repository.TaskRepository = (*TaskRepository)(nil)
