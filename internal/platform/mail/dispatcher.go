// Package mail delivers account mails such as the email confirmation link.
// Delivery is fire-and-forget from the caller's point of view: failures are
// logged and never undo the operation that triggered the mail.
package mail

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrQueueFull is returned by AsyncDispatcher when the buffer is full.
var ErrQueueFull = errors.New("mail queue is full")

// ErrDispatcherStopped is returned after Stop has been called.
var ErrDispatcherStopped = errors.New("mail dispatcher is stopped")

// ConfirmationMessage is the content of an email confirmation mail.
type ConfirmationMessage struct {
	UserID     uuid.UUID `json:"user_id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Token      string    `json:"token"`
	ConfirmURL string    `json:"confirm_url"`
}

// Dispatcher sends confirmation mails.
type Dispatcher interface {
	SendConfirmation(ctx context.Context, msg ConfirmationMessage) error
}
