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

// PostgresTopicStore implements the store.TopicStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTopicStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTopicStore creates a new PostgreSQL implementation of the
// TopicStore interface. If logger is nil, the default logger is used.
func NewPostgresTopicStore(db store.DBTX, logger *slog.Logger) *PostgresTopicStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTopicStore{
		db:     db,
		logger: logger.With(slog.String("component", "topic_store")),
	}
}

var _ store.TopicStore = (*PostgresTopicStore)(nil)

// WithTx implements store.TopicStore.WithTx
func (s *PostgresTopicStore) WithTx(tx *sql.Tx) store.TopicStore {
	return &PostgresTopicStore{db: tx, logger: s.logger}
}

// Create implements store.TopicStore.Create
// Returns store.ErrInvalidEntity if the owner does not exist.
func (s *PostgresTopicStore) Create(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := topic.Validate(); err != nil {
		log.Warn("topic validation failed during create",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	query := `
		INSERT INTO topics (id, user_id, group_id, group_name, name, description,
			is_completed, confidence_level, created_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		topic.ID,
		topic.UserID,
		topic.GroupID,
		topic.GroupName,
		topic.Name,
		topic.Description,
		topic.Completed,
		topic.Confidence,
		topic.CreatedAt,
		topic.CompletedAt,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during topic creation",
				slog.String("topic_id", topic.ID.String()),
				slog.String("user_id", topic.UserID.String()))
			return store.ErrInvalidEntity
		}

		log.Error("failed to create topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	log.Info("topic created successfully",
		slog.String("topic_id", topic.ID.String()),
		slog.String("user_id", topic.UserID.String()))
	return nil
}

const topicColumns = `id, user_id, group_id, group_name, name, description,
	is_completed, confidence_level, created_at, completed_at`

func scanTopic(row interface{ Scan(dest ...any) error }) (*domain.Topic, error) {
	var topic domain.Topic
	var confidence string
	err := row.Scan(
		&topic.ID,
		&topic.UserID,
		&topic.GroupID,
		&topic.GroupName,
		&topic.Name,
		&topic.Description,
		&topic.Completed,
		&confidence,
		&topic.CreatedAt,
		&topic.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	topic.Confidence = domain.Confidence(confidence)
	return &topic, nil
}

// GetForUser implements store.TopicStore.GetForUser
func (s *PostgresTopicStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + topicColumns + `
		FROM topics
		WHERE id = $1 AND user_id = $2
	`

	topic, err := scanTopic(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrTopicNotFound
		}
		log.Error("failed to get topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", id.String()))
		return nil, err
	}

	return topic, nil
}

// ListByUser implements store.TopicStore.ListByUser
func (s *PostgresTopicStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Topic, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + topicColumns + `
		FROM topics
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list topics",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	topics := []*domain.Topic{}
	for rows.Next() {
		topic, err := scanTopic(rows)
		if err != nil {
			log.Error("failed to scan topic row",
				slog.String("error", err.Error()))
			return nil, err
		}
		topics = append(topics, topic)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning topic rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return topics, nil
}

// Update implements store.TopicStore.Update
func (s *PostgresTopicStore) Update(ctx context.Context, topic *domain.Topic) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := topic.Validate(); err != nil {
		log.Warn("topic validation failed during update",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	query := `
		UPDATE topics
		SET group_id = $1, group_name = $2, name = $3, description = $4,
			is_completed = $5, confidence_level = $6, completed_at = $7
		WHERE id = $8 AND user_id = $9
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		topic.GroupID,
		topic.GroupName,
		topic.Name,
		topic.Description,
		topic.Completed,
		topic.Confidence,
		topic.CompletedAt,
		topic.ID,
		topic.UserID,
	)

	if err != nil {
		log.Error("failed to update topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("topic_id", topic.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrTopicNotFound
	}

	log.Info("topic updated successfully",
		slog.String("topic_id", topic.ID.String()))
	return nil
}

// Delete implements store.TopicStore.Delete
// Revisions referencing the topic are removed by the ON DELETE CASCADE
// constraint.
func (s *PostgresTopicStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM topics WHERE id = $1 AND user_id = $2`

	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		log.Error("failed to delete topic",
			slog.String("error", err.Error()),
			slog.String("topic_id", id.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("topic_id", id.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrTopicNotFound
	}

	log.Info("topic deleted successfully",
		slog.String("topic_id", id.String()))
	return nil
}

// closeRows closes a result set, logging any close error.
func closeRows(rows *sql.Rows, log *slog.Logger) {
	if err := rows.Close(); err != nil {
		log.Error("failed to close rows", slog.String("error", err.Error()))
	}
}
