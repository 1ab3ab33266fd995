package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/tasks-api/internal/domain"
)

// TaskMutation edits a locked task in place. now is the store's clock
// reading for the write, used for UpdatedAt and CompletedAt.
type TaskMutation func(task *domain.Task, now time.Time) error

// TaskStore persists tasks. Every method is scoped to owner; tasks of
// other owners behave as if they did not exist (ErrTaskNotFound).
type TaskStore interface {
	// Create inserts task for owner, assigning ID, CreatedAt, UpdatedAt and
	// an Order greater than every existing order of that owner. Any Order
	// or Status already on task is overwritten with server values.
	Create(ctx context.Context, owner uuid.UUID, task *domain.Task) error

	// List returns the owner's tasks by ascending Order, then ascending ID.
	List(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error)

	Get(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error)

	// Modify loads the task under a row lock, applies fn and writes the
	// result in the same transaction. Nothing is written if fn fails.
	Modify(ctx context.Context, owner uuid.UUID, id int64, fn TaskMutation) (*domain.Task, error)

	Delete(ctx context.Context, owner uuid.UUID, id int64) error

	WithTx(tx *sql.Tx) TaskStore
}
