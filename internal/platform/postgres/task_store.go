package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/platform/logger"
	"github.com/phrazzld/tasks-api/internal/store"
)

const taskColumns = `id, owner_id, title, description, priority, due_date, status,
	is_completed, completed_at, sort_order, created_at, updated_at`

// PostgresTaskStore implements store.TaskStore on PostgreSQL. Writes that
// read before they write (create, modify) run in a transaction; when the
// store is already bound to a transaction via WithTx they join it.
type PostgresTaskStore struct {
	db       store.DBTX
	logger   *slog.Logger
	timeFunc func() time.Time
}

var _ store.TaskStore = (*PostgresTaskStore)(nil)

// NewPostgresTaskStore creates a task store over db.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresTaskStore{
		db:       db,
		logger:   logger.With(slog.String("component", "task_store")),
		timeFunc: time.Now,
	}
}

// WithTx implements store.TaskStore.
func (s *PostgresTaskStore) WithTx(tx *sql.Tx) store.TaskStore {
	clone := *s
	clone.db = tx
	return &clone
}

func (s *PostgresTaskStore) now() time.Time {
	return s.timeFunc().UTC().Truncate(time.Microsecond)
}

func (s *PostgresTaskStore) inTx(ctx context.Context, fn func(q store.DBTX) error) error {
	if db, ok := s.db.(store.TxBeginner); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return fn(tx)
		})
	}
	return fn(s.db)
}

// Create implements store.TaskStore. The owner's user row is locked for
// the duration so concurrent creates for one owner get distinct, increasing
// order keys.
func (s *PostgresTaskStore) Create(ctx context.Context, owner uuid.UUID, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task.OwnerID = owner
	task.Status = domain.InitialStatus
	task.Order = 0
	if err := task.Validate(); err != nil {
		return err
	}

	err := s.inTx(ctx, func(q store.DBTX) error {
		var locked uuid.UUID
		err := q.QueryRowContext(ctx,
			`SELECT id FROM users WHERE id = $1 FOR NO KEY UPDATE`, owner).Scan(&locked)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: owner %s does not exist", store.ErrInvalidEntity, owner)
		}
		if err != nil {
			return MapError(err)
		}

		var maxOrder sql.NullFloat64
		if err := q.QueryRowContext(ctx,
			`SELECT MAX(sort_order) FROM tasks WHERE owner_id = $1`, owner).Scan(&maxOrder); err != nil {
			return MapError(err)
		}

		now := s.now()
		order, err := domain.NextOrder(now, maxOrder.Float64, maxOrder.Valid)
		if err != nil {
			return err
		}
		task.Order = order
		task.CreatedAt = now
		task.UpdatedAt = now

		return q.QueryRowContext(ctx, `
			INSERT INTO tasks (owner_id, title, description, priority, due_date, status,
				is_completed, completed_at, sort_order, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5::date, $6, $7, $8, $9, $10, $10)
			RETURNING id`,
			owner, task.Title, task.Description, string(task.Priority), task.DueDate.String(),
			string(task.Status), task.IsCompleted, task.CompletedAt, task.Order, now,
		).Scan(&task.ID)
	})
	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("owner_id", owner.String()))
		return MapError(err)
	}

	log.Debug("task created",
		slog.Int64("task_id", task.ID),
		slog.String("owner_id", owner.String()),
		slog.Float64("order", task.Order))
	return nil
}

// List implements store.TaskStore.
func (s *PostgresTaskStore) List(ctx context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE owner_id = $1
		ORDER BY sort_order ASC, id ASC`, owner)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list tasks",
			slog.String("error", err.Error()),
			slog.String("owner_id", owner.String()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*domain.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return tasks, nil
}

// Get implements store.TaskStore.
func (s *PostgresTaskStore) Get(ctx context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2`, id, owner)
	task, err := scanTask(row)
	if err != nil {
		return nil, err
	}
	return task, nil
}

// Modify implements store.TaskStore.
func (s *PostgresTaskStore) Modify(
	ctx context.Context,
	owner uuid.UUID,
	id int64,
	fn store.TaskMutation,
) (*domain.Task, error) {
	var task *domain.Task
	err := s.inTx(ctx, func(q store.DBTX) error {
		var err error
		task, err = scanTask(q.QueryRowContext(ctx,
			`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND owner_id = $2 FOR UPDATE`, id, owner))
		if err != nil {
			return err
		}

		if err := fn(task, s.now()); err != nil {
			return err
		}

		result, err := q.ExecContext(ctx, `
			UPDATE tasks
			SET title = $3, description = $4, priority = $5, due_date = $6::date, status = $7,
				is_completed = $8, completed_at = $9, sort_order = $10, updated_at = $11
			WHERE id = $1 AND owner_id = $2`,
			id, owner, task.Title, task.Description, string(task.Priority), task.DueDate.String(),
			string(task.Status), task.IsCompleted, task.CompletedAt, task.Order, task.UpdatedAt,
		)
		if err != nil {
			return MapError(err)
		}
		return CheckRowsAffected(result, store.ErrTaskNotFound)
	})
	if err != nil {
		if !store.IsNotFoundError(err) && !errors.Is(err, domain.ErrValidation) {
			logger.FromContextOrDefault(ctx, s.logger).Error("failed to modify task",
				slog.String("error", err.Error()),
				slog.Int64("task_id", id))
		}
		return nil, err
	}
	return task, nil
}

// Delete implements store.TaskStore.
func (s *PostgresTaskStore) Delete(ctx context.Context, owner uuid.UUID, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, id, owner)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.Int64("task_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrTaskNotFound)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var (
		t           domain.Task
		priority    string
		status      string
		dueDate     time.Time
		completedAt sql.NullTime
	)
	err := row.Scan(
		&t.ID, &t.OwnerID, &t.Title, &t.Description, &priority, &dueDate, &status,
		&t.IsCompleted, &completedAt, &t.Order, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTaskNotFound
		}
		return nil, MapError(err)
	}
	t.Priority = domain.Priority(priority)
	t.Status = domain.Status(status)
	t.DueDate = domain.DateOf(dueDate)
	if completedAt.Valid {
		ts := completedAt.Time.UTC()
		t.CompletedAt = &ts
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return &t, nil
}
