package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/store"
)

// PostgresStudySessionStore implements the store.StudySessionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStudySessionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStudySessionStore creates a new PostgreSQL implementation of the
// StudySessionStore interface. If logger is nil, the default logger is used.
func NewPostgresStudySessionStore(db store.DBTX, logger *slog.Logger) *PostgresStudySessionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStudySessionStore{
		db:     db,
		logger: logger.With(slog.String("component", "study_session_store")),
	}
}

var _ store.StudySessionStore = (*PostgresStudySessionStore)(nil)

// WithTx implements store.StudySessionStore.WithTx
func (s *PostgresStudySessionStore) WithTx(tx *sql.Tx) store.StudySessionStore {
	return &PostgresStudySessionStore{db: tx, logger: s.logger}
}

// Create implements store.StudySessionStore.Create
func (s *PostgresStudySessionStore) Create(ctx context.Context, session *domain.StudySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("study session validation failed during create",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	query := `
		INSERT INTO study_sessions (id, user_id, topic_id, start_time, end_time,
			duration_minutes, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
		session.TopicID,
		session.StartedAt,
		session.EndedAt,
		session.DurationMinutes,
		session.Description,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during study session creation",
				slog.String("session_id", session.ID.String()))
			return store.ErrInvalidEntity
		}

		log.Error("failed to create study session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	log.Info("study session created successfully",
		slog.String("session_id", session.ID.String()),
		slog.String("user_id", session.UserID.String()))
	return nil
}

const sessionColumns = `id, user_id, topic_id, start_time, end_time,
	duration_minutes, description`

func scanSession(row interface{ Scan(dest ...any) error }) (*domain.StudySession, error) {
	var session domain.StudySession
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.TopicID,
		&session.StartedAt,
		&session.EndedAt,
		&session.DurationMinutes,
		&session.Description,
	)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// GetForUser implements store.StudySessionStore.GetForUser
func (s *PostgresStudySessionStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE id = $1 AND user_id = $2
	`

	session, err := scanSession(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSessionNotFound
		}
		log.Error("failed to get study session",
			slog.String("error", err.Error()),
			slog.String("session_id", id.String()))
		return nil, err
	}

	return session, nil
}

// ListByUser implements store.StudySessionStore.ListByUser
func (s *PostgresStudySessionStore) ListByUser(ctx context.Context, userID uuid.UUID, filter store.SessionFilter) ([]*domain.StudySession, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + sessionColumns + `
		FROM study_sessions
		WHERE user_id = $1
	`
	args := []any{userID}

	if filter.TopicID != nil {
		args = append(args, *filter.TopicID)
		query += ` AND topic_id = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND start_time >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND start_time <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY start_time DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list study sessions",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	sessions := []*domain.StudySession{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			log.Error("failed to scan study session row",
				slog.String("error", err.Error()))
			return nil, err
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning study session rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return sessions, nil
}

// Update implements store.StudySessionStore.Update
func (s *PostgresStudySessionStore) Update(ctx context.Context, session *domain.StudySession) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := session.Validate(); err != nil {
		log.Warn("study session validation failed during update",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	query := `
		UPDATE study_sessions
		SET topic_id = $1, start_time = $2, end_time = $3,
			duration_minutes = $4, description = $5
		WHERE id = $6 AND user_id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		session.TopicID,
		session.StartedAt,
		session.EndedAt,
		session.DurationMinutes,
		session.Description,
		session.ID,
		session.UserID,
	)

	if err != nil {
		log.Error("failed to update study session",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("session_id", session.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrSessionNotFound
	}

	log.Info("study session updated successfully",
		slog.String("session_id", session.ID.String()))
	return nil
}
