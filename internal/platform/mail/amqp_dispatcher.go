package mail

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/phrazzld/tasks-api/internal/redact"
)

// AMQPDispatcher publishes confirmation mails as persistent JSON messages
// to a durable queue, where a separate mailer consumes them.
type AMQPDispatcher struct {
	url    string
	queue  string
	logger *slog.Logger
	dial   func(url string) (amqpConnection, error)
}

// amqpConnection and amqpChannel are the parts of amqp091 the dispatcher
// uses, so tests can substitute them.
type amqpConnection interface {
	Channel() (amqpChannel, error)
	Close() error
}

type amqpChannel interface {
	QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error)
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

type connAdapter struct{ *amqp.Connection }

func (c connAdapter) Channel() (amqpChannel, error) {
	ch, err := c.Connection.Channel()
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func dialAMQP(url string) (amqpConnection, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	return connAdapter{conn}, nil
}

// NewAMQPDispatcher creates a dispatcher for queue on the broker at url.
// Nothing is dialled until the first message.
func NewAMQPDispatcher(url, queue string, logger *slog.Logger) *AMQPDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &AMQPDispatcher{
		url:    url,
		queue:  queue,
		logger: logger.With(slog.String("component", "mail"), slog.String("queue", queue)),
		dial:   dialAMQP,
	}
}

// SendConfirmation implements Dispatcher. Each call opens and closes its
// own connection.
func (d *AMQPDispatcher) SendConfirmation(ctx context.Context, msg ConfirmationMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode confirmation mail: %w", err)
	}

	conn, err := d.dial(d.url)
	if err != nil {
		return fmt.Errorf("failed to connect to broker %s: %w", redact.String(d.url), err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(d.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", d.queue, err)
	}

	err = ch.PublishWithContext(ctx, "", d.queue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Type:         "email_confirmation",
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("failed to publish confirmation mail: %w", err)
	}

	d.logger.DebugContext(ctx, "confirmation mail published",
		slog.String("user_id", msg.UserID.String()))
	return nil
}
