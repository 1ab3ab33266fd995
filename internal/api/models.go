package api

import (
	"time"

	"github.com/phrazzld/tasks-api/internal/domain"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username" validate:"required,max=150"`
	Email    string `json:"email"    validate:"required,email,max=254"`
	Password string `json:"password" validate:"required"`
}

// RegisterResponse echoes the created account.
type RegisterResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoginRequest is the body of POST /auth/login, JSON or form encoded.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest is the body of POST /auth/refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// TokenResponse carries an access/refresh pair.
type TokenResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ChangePasswordRequest is the body of POST /auth/password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required"`
}

// StatusResponse is a minimal acknowledgement.
type StatusResponse struct {
	Status string `json:"status"`
}

// CreateTaskRequest is the body of POST /tasks. Client-supplied status
// and order are not part of it and are ignored if sent.
type CreateTaskRequest struct {
	Title       string `json:"title"       validate:"required,max=255"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"    validate:"required"`
}

// UpdateTaskRequest is the body of PUT /tasks/{id}.
type UpdateTaskRequest struct {
	CreateTaskRequest
	Status      *string `json:"status"`
	IsCompleted *bool   `json:"is_completed"`
}

// PatchTaskRequest is the body of PATCH /tasks/{id}. Absent and null
// fields are left unchanged.
type PatchTaskRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Priority    *string  `json:"priority"`
	DueDate     *string  `json:"due_date"`
	Status      *string  `json:"status"`
	IsCompleted *bool    `json:"is_completed"`
	Order       *float64 `json:"order"`
}

// TaskResponse is the JSON representation of a task.
type TaskResponse struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	DueDate     string     `json:"due_date"`
	Status      string     `json:"status"`
	IsCompleted bool       `json:"is_completed"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Order       float64    `json:"order"`
}

// ProfileRequest is the body of PUT /tasks/profile. It replaces all
// profile fields.
type ProfileRequest struct {
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	Location  string `json:"location"`
	AvatarURL string `json:"avatar_url"`
}

// ProfileResponse is the account view returned by the profile endpoints.
type ProfileResponse struct {
	Username      string `json:"username"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	FullName      string `json:"full_name"`
	Bio           string `json:"bio"`
	Location      string `json:"location"`
	AvatarURL     string `json:"avatar_url"`
}

func (r CreateTaskRequest) toFields() (domain.TaskFields, error) {
	priority, err := domain.ParsePriority(r.Priority)
	if err != nil {
		return domain.TaskFields{}, err
	}
	due, err := domain.ParseDate(r.DueDate)
	if err != nil {
		return domain.TaskFields{}, err
	}
	return domain.TaskFields{
		Title:       r.Title,
		Description: r.Description,
		Priority:    priority,
		DueDate:     due,
	}, nil
}

func (r UpdateTaskRequest) toReplacement() (domain.TaskReplacement, error) {
	fields, err := r.CreateTaskRequest.toFields()
	if err != nil {
		return domain.TaskReplacement{}, err
	}
	out := domain.TaskReplacement{TaskFields: fields, IsCompleted: r.IsCompleted}
	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return domain.TaskReplacement{}, err
		}
		out.Status = &status
	}
	return out, nil
}

func (r PatchTaskRequest) toPatch() (domain.TaskPatch, error) {
	p := domain.TaskPatch{
		Title:       r.Title,
		Description: r.Description,
		IsCompleted: r.IsCompleted,
		Order:       r.Order,
	}
	if r.Priority != nil {
		priority, err := domain.ParsePriority(*r.Priority)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		p.Priority = &priority
	}
	if r.DueDate != nil {
		due, err := domain.ParseDate(*r.DueDate)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		p.DueDate = &due
	}
	if r.Status != nil {
		status, err := domain.ParseStatus(*r.Status)
		if err != nil {
			return domain.TaskPatch{}, err
		}
		p.Status = &status
	}
	return p, nil
}

func toTaskResponse(t *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		DueDate:     t.DueDate.String(),
		Status:      string(t.Status),
		IsCompleted: t.IsCompleted,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Order:       t.Order,
	}
}

func toProfileResponse(u *domain.User) ProfileResponse {
	return ProfileResponse{
		Username:      u.Username,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		FullName:      u.Profile.FullName,
		Bio:           u.Profile.Bio,
		Location:      u.Profile.Location,
		AvatarURL:     u.Profile.AvatarURL,
	}
}
