package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/tasks-api/internal/config"
	"github.com/phrazzld/tasks-api/internal/platform/mail"
	"github.com/phrazzld/tasks-api/internal/platform/postgres"
	"github.com/phrazzld/tasks-api/internal/platform/redis"
	"github.com/phrazzld/tasks-api/internal/service"
	"github.com/phrazzld/tasks-api/internal/service/auth"
)

// mailSendTimeout bounds a single confirmation mail delivery.
const mailSendTimeout = 30 * time.Second

// application holds the long-lived dependencies so they can be shut down
// in order.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB
	redis  *goredis.Client
	mailer *mail.AsyncDispatcher

	identity service.IdentityService
	tasks    service.TaskService
}

// newApplication wires the application. Anything started before a failure
// is released again.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{config: cfg, logger: logger, db: db}
	if err := app.init(ctx); err != nil {
		app.cleanup(ctx)
		return nil, err
	}
	return app, nil
}

func (app *application) init(ctx context.Context) error {
	cfg, logger, db := app.config, app.logger, app.db

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	verifier, err := auth.NewBcryptVerifier(cfg.Auth.BCryptCost)
	if err != nil {
		return err
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes,
		"refresh_token_lifetime_minutes", cfg.Auth.RefreshTokenLifetimeMinutes)

	app.redis, err = redis.NewClient(ctx, cfg.Redis, logger)
	if err != nil {
		return err
	}

	app.mailer = mail.NewAsyncDispatcher(newMailDriver(cfg.Mail, logger), mail.AsyncConfig{
		Workers:     cfg.Mail.Workers,
		QueueSize:   cfg.Mail.QueueSize,
		SendTimeout: mailSendTimeout,
	}, logger)
	app.mailer.Start()

	users := postgres.NewPostgresUserStore(db, cfg.Auth.BCryptCost, logger)
	tokens := postgres.NewPostgresConfirmationTokenStore(db, logger)
	tasks := postgres.NewPostgresTaskStore(db, logger)

	app.identity, err = service.NewIdentityService(db, users, tokens, jwtService, verifier, app.mailer,
		service.IdentityConfig{
			ConfirmationTTL: time.Duration(cfg.Auth.ConfirmationTokenLifetimeMinutes) * time.Minute,
			ConfirmURLBase:  cfg.Mail.ConfirmURLBase,
		}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize identity service: %w", err)
	}
	app.tasks, err = service.NewTaskService(tasks, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize task service: %w", err)
	}

	return nil
}

func newMailDriver(cfg config.MailConfig, logger *slog.Logger) mail.Dispatcher {
	if cfg.Driver == "amqp" {
		logger.Info("confirmation mails go to AMQP", "queue", cfg.Queue)
		return mail.NewAMQPDispatcher(cfg.AMQPURL, cfg.Queue, logger)
	}
	return mail.NewLogDispatcher(logger)
}

// cleanup drains the mail queue and closes Redis. The database is closed
// by the caller that opened it.
func (app *application) cleanup(ctx context.Context) {
	if app.mailer != nil {
		if err := app.mailer.Stop(ctx); err != nil {
			app.logger.Error("mail queue not drained", "error", err)
		}
	}
	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("failed to close redis", "error", err)
		}
	}
}
