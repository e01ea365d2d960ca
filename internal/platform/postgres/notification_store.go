package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/store"
)

// PostgresNotificationStore implements the store.NotificationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresNotificationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresNotificationStore creates a new PostgreSQL implementation of the
// NotificationStore interface. If logger is nil, the default logger is used.
func NewPostgresNotificationStore(db store.DBTX, logger *slog.Logger) *PostgresNotificationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresNotificationStore{
		db:     db,
		logger: logger.With(slog.String("component", "notification_store")),
	}
}

var _ store.NotificationStore = (*PostgresNotificationStore)(nil)

// WithTx implements store.NotificationStore.WithTx
func (s *PostgresNotificationStore) WithTx(tx *sql.Tx) store.NotificationStore {
	return &PostgresNotificationStore{db: tx, logger: s.logger}
}

// Create implements store.NotificationStore.Create
func (s *PostgresNotificationStore) Create(ctx context.Context, notification *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := notification.Validate(); err != nil {
		log.Warn("notification validation failed during create",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	query := `
		INSERT INTO notifications (id, user_id, revision_id, title, message,
			is_read, created_at, scheduled_for)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		notification.ID,
		notification.UserID,
		notification.RevisionID,
		notification.Title,
		notification.Message,
		notification.Read,
		notification.CreatedAt,
		notification.ScheduledFor,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during notification creation",
				slog.String("notification_id", notification.ID.String()))
			return store.ErrInvalidEntity
		}

		log.Error("failed to create notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	log.Info("notification created successfully",
		slog.String("notification_id", notification.ID.String()),
		slog.String("user_id", notification.UserID.String()))
	return nil
}

const notificationColumns = `id, user_id, revision_id, title, message,
	is_read, created_at, scheduled_for`

func scanNotification(row interface{ Scan(dest ...any) error }) (*domain.Notification, error) {
	var n domain.Notification
	err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.RevisionID,
		&n.Title,
		&n.Message,
		&n.Read,
		&n.CreatedAt,
		&n.ScheduledFor,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// GetForUser implements store.NotificationStore.GetForUser
func (s *PostgresNotificationStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE id = $1 AND user_id = $2
	`

	notification, err := scanNotification(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotificationNotFound
		}
		log.Error("failed to get notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", id.String()))
		return nil, err
	}

	return notification, nil
}

// ListByUser implements store.NotificationStore.ListByUser
func (s *PostgresNotificationStore) ListByUser(ctx context.Context, userID uuid.UUID, read *bool) ([]*domain.Notification, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = $1
	`
	args := []any{userID}

	if read != nil {
		args = append(args, *read)
		query += ` AND is_read = $2`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list notifications",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	notifications := []*domain.Notification{}
	for rows.Next() {
		notification, err := scanNotification(rows)
		if err != nil {
			log.Error("failed to scan notification row",
				slog.String("error", err.Error()))
			return nil, err
		}
		notifications = append(notifications, notification)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning notification rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return notifications, nil
}

// Update implements store.NotificationStore.Update
func (s *PostgresNotificationStore) Update(ctx context.Context, notification *domain.Notification) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := notification.Validate(); err != nil {
		log.Warn("notification validation failed during update",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	query := `
		UPDATE notifications
		SET title = $1, message = $2, is_read = $3, scheduled_for = $4
		WHERE id = $5 AND user_id = $6
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		notification.Title,
		notification.Message,
		notification.Read,
		notification.ScheduledFor,
		notification.ID,
		notification.UserID,
	)

	if err != nil {
		log.Error("failed to update notification",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("notification_id", notification.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrNotificationNotFound
	}

	log.Info("notification updated successfully",
		slog.String("notification_id", notification.ID.String()))
	return nil
}

// GetPreference implements store.NotificationStore.GetPreference
func (s *PostgresNotificationStore) GetPreference(ctx context.Context, userID uuid.UUID) (*domain.NotificationPreference, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, browser_enabled, email_enabled,
			reminder_minutes_before, created_at, updated_at
		FROM notification_preferences
		WHERE user_id = $1
	`

	var pref domain.NotificationPreference
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&pref.ID,
		&pref.UserID,
		&pref.BrowserEnabled,
		&pref.EmailEnabled,
		&pref.ReminderMinutesBefore,
		&pref.CreatedAt,
		&pref.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrPreferenceNotFound
		}
		log.Error("failed to get notification preference",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}

	return &pref, nil
}

// SavePreference implements store.NotificationStore.SavePreference
// Upserts on the user_id uniqueness constraint so a user always has at most
// one preference row.
func (s *PostgresNotificationStore) SavePreference(ctx context.Context, pref *domain.NotificationPreference) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO notification_preferences (id, user_id, browser_enabled,
			email_enabled, reminder_minutes_before, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE
		SET browser_enabled = EXCLUDED.browser_enabled,
			email_enabled = EXCLUDED.email_enabled,
			reminder_minutes_before = EXCLUDED.reminder_minutes_before,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		pref.ID,
		pref.UserID,
		pref.BrowserEnabled,
		pref.EmailEnabled,
		pref.ReminderMinutesBefore,
		pref.CreatedAt,
		pref.UpdatedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during preference save",
				slog.String("user_id", pref.UserID.String()))
			return store.ErrInvalidEntity
		}

		log.Error("failed to save notification preference",
			slog.String("error", err.Error()),
			slog.String("user_id", pref.UserID.String()))
		return err
	}

	log.Info("notification preference saved successfully",
		slog.String("user_id", pref.UserID.String()))
	return nil
}
