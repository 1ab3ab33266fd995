package domain

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxTitleLength = 255

// Priority ranks a task.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// ParsePriority matches s case-insensitively. An empty string yields the
// default, PriorityLow.
func ParsePriority(s string) (Priority, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return PriorityLow, nil
	}
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", NewValidationError("priority", ErrInvalidPriority)
}

// Status is the workflow state of a task. It is independent of
// IsCompleted: changing one never changes the other.
type Status string

const (
	StatusQueue      Status = "Queue"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusAborted    Status = "Aborted"

	// InitialStatus is assigned to every new task.
	InitialStatus = StatusQueue
)

// Statuses lists every known status in workflow order.
var Statuses = []Status{StatusQueue, StatusInProgress, StatusCompleted, StatusAborted}

// ParseStatus matches s case-insensitively against Statuses.
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if strings.EqualFold(s, string(st)) {
			return st, nil
		}
	}
	return "", NewValidationError("status", ErrInvalidStatus)
}

// Task is a single to-do item belonging to exactly one owner.
type Task struct {
	ID          int64      `json:"id"`
	OwnerID     uuid.UUID  `json:"-"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     Date       `json:"due_date"`
	Status      Status     `json:"status"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Order       float64    `json:"order"`
}

// TaskFields are the content fields a client supplies on create and
// replaces wholesale on update.
type TaskFields struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     Date
}

// TaskReplacement is a full update. Status and IsCompleted are lifecycle
// fields and only change when supplied.
type TaskReplacement struct {
	TaskFields
	Status      *Status
	IsCompleted *bool
}

// TaskPatch is a partial update; nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *Priority
	DueDate     *Date
	Status      *Status
	IsCompleted *bool
	Order       *float64
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p == TaskPatch{}
}

// NewTask builds an unsaved task for owner. Status is always InitialStatus;
// ID, Order and the timestamps are assigned by the store.
func NewTask(owner uuid.UUID, fields TaskFields) (*Task, error) {
	if owner == uuid.Nil {
		return nil, NewValidationError("owner", ErrInvalidID)
	}
	if fields.Priority == "" {
		fields.Priority = PriorityLow
	}
	t := &Task{
		OwnerID:     owner,
		Title:       strings.TrimSpace(fields.Title),
		Description: fields.Description,
		Priority:    fields.Priority,
		DueDate:     fields.DueDate,
		Status:      InitialStatus,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the client-controlled fields of the task.
func (t *Task) Validate() error {
	if t.Title == "" {
		return NewValidationError("title", ErrEmptyTitle)
	}
	if utf8.RuneCountInString(t.Title) > maxTitleLength {
		return NewValidationError("title", ErrTitleTooLong)
	}
	switch t.Priority {
	case PriorityLow, PriorityMedium, PriorityHigh:
	default:
		return NewValidationError("priority", ErrInvalidPriority)
	}
	if t.DueDate.IsZero() {
		return NewValidationError("due_date", ErrInvalidDueDate)
	}
	if !slices.Contains(Statuses, t.Status) {
		return NewValidationError("status", ErrInvalidStatus)
	}
	return ValidateOrder(t.Order)
}

// ValidateOrder rejects NaN and infinities. Any other value, including
// duplicates of existing keys, is a valid position.
func ValidateOrder(order float64) error {
	if math.IsNaN(order) || math.IsInf(order, 0) {
		return NewValidationError("order", ErrInvalidOrder)
	}
	return nil
}

// SetCompleted applies the completion transition: false->true stamps
// CompletedAt with now, any transition to false clears it, and true->true
// keeps the original stamp.
func (t *Task) SetCompleted(done bool, now time.Time) {
	switch {
	case done && !t.IsCompleted:
		stamp := now.UTC()
		t.CompletedAt = &stamp
	case !done:
		t.CompletedAt = nil
	}
	t.IsCompleted = done
}

// Replace applies a full update. The task is left untouched when the
// result would be invalid.
func (t *Task) Replace(r TaskReplacement, now time.Time) error {
	next := *t
	next.Title = strings.TrimSpace(r.Title)
	next.Description = r.Description
	next.Priority = r.Priority
	if next.Priority == "" {
		next.Priority = PriorityLow
	}
	next.DueDate = r.DueDate
	if r.Status != nil {
		next.Status = *r.Status
	}
	return t.commit(next, r.IsCompleted, now)
}

// ApplyPatch changes only the supplied fields. The task is left untouched
// when the result would be invalid.
func (t *Task) ApplyPatch(p TaskPatch, now time.Time) error {
	next := *t
	if p.Title != nil {
		next.Title = strings.TrimSpace(*p.Title)
	}
	if p.Description != nil {
		next.Description = *p.Description
	}
	if p.Priority != nil {
		next.Priority = *p.Priority
	}
	if p.DueDate != nil {
		next.DueDate = *p.DueDate
	}
	if p.Status != nil {
		next.Status = *p.Status
	}
	if p.Order != nil {
		next.Order = *p.Order
	}
	return t.commit(next, p.IsCompleted, now)
}

func (t *Task) commit(next Task, completed *bool, now time.Time) error {
	if err := next.Validate(); err != nil {
		return err
	}
	if completed != nil {
		next.SetCompleted(*completed, now)
	}
	next.UpdatedAt = now.UTC()
	*t = next
	return nil
}

// CompareTasks orders tasks by ascending Order, then ascending ID.
func CompareTasks(a, b *Task) int {
	if c := cmp.Compare(a.Order, b.Order); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}

// SortTasks sorts tasks into list order in place.
func SortTasks(tasks []*Task) {
	slices.SortFunc(tasks, CompareTasks)
}

// NextOrder returns the order key for a task appended to an owner's list:
// the creation time in fractional Unix seconds, or one past the current
// maximum when an earlier reorder already moved a task beyond that. Where
// adding one no longer changes a large maximum, the next representable
// float is used. The result is always strictly greater than maxOrder;
// ErrOrderExhausted is returned when no finite key remains.
func NextOrder(now time.Time, maxOrder float64, hasTasks bool) (float64, error) {
	order := float64(now.UnixNano()) / float64(time.Second)
	if !hasTasks {
		return order, nil
	}
	if next := maxOrder + 1; next > order {
		order = next
	}
	if order <= maxOrder {
		order = math.Nextafter(maxOrder, math.Inf(1))
	}
	if math.IsInf(order, 0) {
		return 0, NewValidationError("order", ErrOrderExhausted)
	}
	return order, nil
}
