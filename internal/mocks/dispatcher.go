package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/tasks-api/internal/platform/mail"
)

// MockDispatcher implements mail.Dispatcher and records what it was sent.
type MockDispatcher struct {
	SendConfirmationFn func(ctx context.Context, msg mail.ConfirmationMessage) error

	mu   sync.Mutex
	sent []mail.ConfirmationMessage
}

// SendConfirmation implements mail.Dispatcher.
func (m *MockDispatcher) SendConfirmation(ctx context.Context, msg mail.ConfirmationMessage) error {
	m.mu.Lock()
	m.sent = append(m.sent, msg)
	m.mu.Unlock()
	if m.SendConfirmationFn != nil {
		return m.SendConfirmationFn(ctx, msg)
	}
	return nil
}

// Sent returns a copy of the recorded messages.
func (m *MockDispatcher) Sent() []mail.ConfirmationMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.ConfirmationMessage(nil), m.sent...)
}

// Last returns the most recent message, if any.
func (m *MockDispatcher) Last() (mail.ConfirmationMessage, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return mail.ConfirmationMessage{}, false
	}
	return m.sent[len(m.sent)-1], true
}
