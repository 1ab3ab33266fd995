package testutils

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/tasks-api/internal/domain"
	"github.com/phrazzld/tasks-api/internal/store"
)

// MemoryUserStore implements store.UserStore in memory. Passwords are
// hashed at bcrypt.MinCost. Transactions are not modelled: WithTx returns
// the same store.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
	Now   func() time.Time
}

// NewMemoryUserStore creates an empty MemoryUserStore.
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[uuid.UUID]*domain.User), Now: time.Now}
}

var _ store.UserStore = (*MemoryUserStore)(nil)

func copyUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

// Create implements store.UserStore.
func (s *MemoryUserStore) Create(_ context.Context, user *domain.User) error {
	if err := user.Validate(); err != nil {
		return err
	}
	if err := domain.ValidatePassword(user.Password); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username {
			return store.ErrUsernameExists
		}
		if strings.EqualFold(u.Email, user.Email) {
			return store.ErrEmailExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	now := s.Now().UTC()
	user.HashedPassword = string(hash)
	user.Password = ""
	user.CreatedAt, user.UpdatedAt = now, now
	s.users[user.ID] = copyUser(user)
	return nil
}

// GetByID implements store.UserStore.
func (s *MemoryUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return copyUser(u), nil
}

// GetByUsername implements store.UserStore.
func (s *MemoryUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == username {
			return copyUser(u), nil
		}
	}
	return nil, store.ErrUserNotFound
}

// UpdateProfile implements store.UserStore.
func (s *MemoryUserStore) UpdateProfile(_ context.Context, id uuid.UUID, profile domain.Profile) (*domain.User, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	u.Profile = profile
	u.UpdatedAt = s.Now().UTC()
	return copyUser(u), nil
}

// UpdatePassword implements store.UserStore.
func (s *MemoryUserStore) UpdatePassword(_ context.Context, id uuid.UUID, password string) error {
	if err := domain.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.HashedPassword = string(hash)
	u.UpdatedAt = s.Now().UTC()
	return nil
}

// MarkEmailVerified implements store.UserStore.
func (s *MemoryUserStore) MarkEmailVerified(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return store.ErrUserNotFound
	}
	u.EmailVerified = true
	return nil
}

// Delete implements store.UserStore.
func (s *MemoryUserStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return store.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

// WithTx implements store.UserStore.
func (s *MemoryUserStore) WithTx(*sql.Tx) store.UserStore { return s }

// Count returns the number of stored users.
func (s *MemoryUserStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users)
}

// MemoryTaskStore implements store.TaskStore in memory with the same
// ordering and scoping rules as the PostgreSQL store.
type MemoryTaskStore struct {
	mu     sync.Mutex
	nextID int64
	tasks  map[int64]*domain.Task
	Now    func() time.Time
}

// NewMemoryTaskStore creates an empty MemoryTaskStore.
func NewMemoryTaskStore() *MemoryTaskStore {
	return &MemoryTaskStore{tasks: make(map[int64]*domain.Task), Now: time.Now}
}

var _ store.TaskStore = (*MemoryTaskStore)(nil)

func copyTask(t *domain.Task) *domain.Task {
	c := *t
	if t.CompletedAt != nil {
		at := *t.CompletedAt
		c.CompletedAt = &at
	}
	return &c
}

// Create implements store.TaskStore.
func (s *MemoryTaskStore) Create(_ context.Context, owner uuid.UUID, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var maxOrder float64
	has := false
	for _, t := range s.tasks {
		if t.OwnerID != owner {
			continue
		}
		if !has || t.Order > maxOrder {
			maxOrder = t.Order
		}
		has = true
	}

	now := s.Now().UTC()
	task.OwnerID = owner
	task.Status = domain.InitialStatus
	order, err := domain.NextOrder(now, maxOrder, has)
	if err != nil {
		return err
	}
	task.Order = order
	task.CreatedAt, task.UpdatedAt = now, now
	if err := task.Validate(); err != nil {
		return err
	}

	s.nextID++
	task.ID = s.nextID
	s.tasks[task.ID] = copyTask(task)
	return nil
}

// List implements store.TaskStore.
func (s *MemoryTaskStore) List(_ context.Context, owner uuid.UUID) ([]*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Task, 0)
	for _, t := range s.tasks {
		if t.OwnerID == owner {
			out = append(out, copyTask(t))
		}
	}
	domain.SortTasks(out)
	return out, nil
}

// Get implements store.TaskStore.
func (s *MemoryTaskStore) Get(_ context.Context, owner uuid.UUID, id int64) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, store.ErrTaskNotFound
	}
	return copyTask(t), nil
}

// Modify implements store.TaskStore. The store mutex plays the part of
// the row lock.
func (s *MemoryTaskStore) Modify(
	_ context.Context,
	owner uuid.UUID,
	id int64,
	fn store.TaskMutation,
) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != owner {
		return nil, store.ErrTaskNotFound
	}
	working := copyTask(t)
	if err := fn(working, s.Now()); err != nil {
		return nil, err
	}
	s.tasks[id] = copyTask(working)
	return working, nil
}

// Delete implements store.TaskStore.
func (s *MemoryTaskStore) Delete(_ context.Context, owner uuid.UUID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	if !ok || t.OwnerID != owner {
		return store.ErrTaskNotFound
	}
	delete(s.tasks, id)
	return nil
}

// WithTx implements store.TaskStore.
func (s *MemoryTaskStore) WithTx(*sql.Tx) store.TaskStore { return s }

// MemoryConfirmationTokenStore implements store.ConfirmationTokenStore in memory.
type MemoryConfirmationTokenStore struct {
	mu     sync.Mutex
	nextID int64
	tokens map[string]*domain.ConfirmationToken
}

// NewMemoryConfirmationTokenStore creates an empty store.
func NewMemoryConfirmationTokenStore() *MemoryConfirmationTokenStore {
	return &MemoryConfirmationTokenStore{tokens: make(map[string]*domain.ConfirmationToken)}
}

var _ store.ConfirmationTokenStore = (*MemoryConfirmationTokenStore)(nil)

// Create implements store.ConfirmationTokenStore.
func (s *MemoryConfirmationTokenStore) Create(_ context.Context, token *domain.ConfirmationToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.tokens[token.TokenHash]; exists {
		return store.ErrDuplicate
	}
	s.nextID++
	token.ID = s.nextID
	c := *token
	s.tokens[token.TokenHash] = &c
	return nil
}

// Consume implements store.ConfirmationTokenStore.
func (s *MemoryConfirmationTokenStore) Consume(
	_ context.Context,
	tokenHash, purpose string,
	now time.Time,
) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[tokenHash]
	if !ok || t.Purpose != purpose || !t.Usable(now) {
		return uuid.Nil, store.ErrTokenNotFound
	}
	used := now.UTC()
	t.UsedAt = &used
	return t.UserID, nil
}

// WithTx implements store.ConfirmationTokenStore.
func (s *MemoryConfirmationTokenStore) WithTx(*sql.Tx) store.ConfirmationTokenStore { return s }
