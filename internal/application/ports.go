package application

import (
	"context"

	"github.com/oksasatya/classroom-tasks/internal/domain/entity"
)

// TaskIndexer is the full-text index kept beside the task store.
type TaskIndexer interface {
	IndexTask(ctx context.Context, t entity.Task) error
	DeleteTask(ctx context.Context, id string) error
	// SearchTaskIDs returns ids of tasks matching query, restricted to the
	// given owners and, when non-empty, progress.
	SearchTaskIDs(ctx context.Context, query string, ownerIDs []string, progress entity.Progress, size int) ([]string, error)
}

// EventPublisher puts a JSON message on the task events queue.
// *helpers.RabbitPublisher implements it.
type EventPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}
