package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/pilotprep/pilotprep/internal/config"
	"github.com/pilotprep/pilotprep/internal/platform/postgres"
	"github.com/pilotprep/pilotprep/internal/service/auth"
	"github.com/pilotprep/pilotprep/internal/service/progress"
	"github.com/pilotprep/pilotprep/internal/service/scheduler"
	"github.com/pilotprep/pilotprep/internal/service/syllabus"
	"github.com/pilotprep/pilotprep/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	userStore         store.UserStore
	topicStore        store.TopicStore
	revisionStore     store.RevisionStore
	sessionStore      store.StudySessionStore
	questionStore     store.QuestionRecordStore
	syllabusStore     store.SyllabusStore
	notificationStore store.NotificationStore

	// Service interfaces
	jwtService       auth.JWTService
	passwordHasher   auth.PasswordHasher
	passwordVerifier auth.PasswordVerifier
	schedulerService scheduler.Service
	progressService  progress.Service
	syllabusImporter syllabus.Importer
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	// Initialize JWT service
	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Initialize password hashing
	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	app.passwordHasher = hasher
	app.passwordVerifier = hasher

	// Initialize stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.topicStore = postgres.NewPostgresTopicStore(db, logger)
	app.revisionStore = postgres.NewPostgresRevisionStore(db, logger)
	app.sessionStore = postgres.NewPostgresStudySessionStore(db, logger)
	app.questionStore = postgres.NewPostgresQuestionRecordStore(db, logger)
	app.syllabusStore = postgres.NewPostgresSyllabusStore(db, logger)
	app.notificationStore = postgres.NewPostgresNotificationStore(db, logger)

	// Initialize scheduler service
	app.schedulerService, err = scheduler.NewService(
		db,
		app.topicStore,
		app.revisionStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler service: %w", err)
	}

	// Initialize progress service
	app.progressService, err = progress.NewService(
		app.topicStore,
		app.sessionStore,
		app.questionStore,
		app.syllabusStore,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress service: %w", err)
	}

	// Initialize syllabus importer
	app.syllabusImporter, err = syllabus.NewImporter(
		db,
		app.syllabusStore,
		cfg.Syllabus.SourcePath,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create syllabus importer: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	err := app.startHTTPServer(ctx, router)
	if err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
