package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/store"
)

// PostgresRevisionStore implements the store.RevisionStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRevisionStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRevisionStore creates a new PostgreSQL implementation of the
// RevisionStore interface. If logger is nil, the default logger is used.
func NewPostgresRevisionStore(db store.DBTX, logger *slog.Logger) *PostgresRevisionStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRevisionStore{
		db:     db,
		logger: logger.With(slog.String("component", "revision_store")),
	}
}

var _ store.RevisionStore = (*PostgresRevisionStore)(nil)

// WithTx implements store.RevisionStore.WithTx
func (s *PostgresRevisionStore) WithTx(tx *sql.Tx) store.RevisionStore {
	return &PostgresRevisionStore{db: tx, logger: s.logger}
}

// CreateMultiple implements store.RevisionStore.CreateMultiple
// Atomicity is the caller's responsibility: run inside a transaction via
// WithTx when partial inserts must not survive.
func (s *PostgresRevisionStore) CreateMultiple(ctx context.Context, revisions []*domain.Revision) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(revisions) == 0 {
		return nil
	}

	for _, rev := range revisions {
		if err := rev.Validate(); err != nil {
			log.Warn("revision validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("revision_id", rev.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO revisions (id, topic_id, scheduled_date, revision_number,
			is_completed, completed_at, notes, notify, color)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	for _, rev := range revisions {
		_, err := s.db.ExecContext(
			ctx,
			query,
			rev.ID,
			rev.TopicID,
			rev.ScheduledAt,
			rev.Sequence,
			rev.Completed,
			rev.CompletedAt,
			rev.Notes,
			rev.Notify,
			rev.Color,
		)
		if err != nil {
			if isUniqueViolation(err, "revisions_topic_id_revision_number_key") {
				log.Warn("duplicate revision sequence for topic",
					slog.String("topic_id", rev.TopicID.String()),
					slog.Int("sequence", rev.Sequence))
				return store.ErrScheduleExists
			}
			if isForeignKeyViolation(err) {
				log.Warn("foreign key violation during revision creation",
					slog.String("topic_id", rev.TopicID.String()))
				return store.ErrInvalidEntity
			}

			log.Error("failed to create revision",
				slog.String("error", err.Error()),
				slog.String("revision_id", rev.ID.String()))
			return err
		}
	}

	log.Info("revisions created successfully",
		slog.String("topic_id", revisions[0].TopicID.String()),
		slog.Int("count", len(revisions)))
	return nil
}

const revisionColumns = `r.id, r.topic_id, r.scheduled_date, r.revision_number,
	r.is_completed, r.completed_at, r.notes, r.notify, r.color`

func scanRevision(row interface{ Scan(dest ...any) error }) (*domain.Revision, error) {
	var rev domain.Revision
	err := row.Scan(
		&rev.ID,
		&rev.TopicID,
		&rev.ScheduledAt,
		&rev.Sequence,
		&rev.Completed,
		&rev.CompletedAt,
		&rev.Notes,
		&rev.Notify,
		&rev.Color,
	)
	if err != nil {
		return nil, err
	}
	return &rev, nil
}

// GetForUser implements store.RevisionStore.GetForUser
func (s *PostgresRevisionStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.Revision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + revisionColumns + `
		FROM revisions r
		JOIN topics t ON t.id = r.topic_id
		WHERE r.id = $1 AND t.user_id = $2
	`

	rev, err := scanRevision(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRevisionNotFound
		}
		log.Error("failed to get revision",
			slog.String("error", err.Error()),
			slog.String("revision_id", id.String()))
		return nil, err
	}

	return rev, nil
}

// CountByTopic implements store.RevisionStore.CountByTopic
func (s *PostgresRevisionStore) CountByTopic(ctx context.Context, topicID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `SELECT COUNT(*) FROM revisions WHERE topic_id = $1`

	var count int
	if err := s.db.QueryRowContext(ctx, query, topicID).Scan(&count); err != nil {
		log.Error("failed to count revisions",
			slog.String("error", err.Error()),
			slog.String("topic_id", topicID.String()))
		return 0, err
	}

	return count, nil
}

// ListByTopic implements store.RevisionStore.ListByTopic
func (s *PostgresRevisionStore) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*domain.Revision, error) {
	query := `
		SELECT ` + revisionColumns + `
		FROM revisions r
		WHERE r.topic_id = $1
		ORDER BY r.revision_number ASC
	`
	return s.queryRevisions(ctx, query, topicID)
}

// ListByUser implements store.RevisionStore.ListByUser
func (s *PostgresRevisionStore) ListByUser(ctx context.Context, userID uuid.UUID, filter store.RevisionFilter) ([]*domain.Revision, error) {
	query := `
		SELECT ` + revisionColumns + `
		FROM revisions r
		JOIN topics t ON t.id = r.topic_id
		WHERE t.user_id = $1
	`
	args := []any{userID}

	if filter.TopicID != nil {
		args = append(args, *filter.TopicID)
		query += ` AND r.topic_id = $2`
	}
	if filter.Completed != nil {
		args = append(args, *filter.Completed)
		query += ` AND r.is_completed = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY r.scheduled_date ASC, r.revision_number ASC`

	return s.queryRevisions(ctx, query, args...)
}

func (s *PostgresRevisionStore) queryRevisions(ctx context.Context, query string, args ...any) ([]*domain.Revision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query revisions",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer closeRows(rows, log)

	revisions := []*domain.Revision{}
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			log.Error("failed to scan revision row",
				slog.String("error", err.Error()))
			return nil, err
		}
		revisions = append(revisions, rev)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning revision rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return revisions, nil
}

const upcomingColumns = revisionColumns + `,
	t.name, t.group_name, t.description`

// ListUpcoming implements store.RevisionStore.ListUpcoming
func (s *PostgresRevisionStore) ListUpcoming(ctx context.Context, userID uuid.UUID, cutoff *time.Time, includeCompleted bool) ([]*store.UpcomingRevision, error) {
	query := `
		SELECT ` + upcomingColumns + `
		FROM revisions r
		JOIN topics t ON t.id = r.topic_id
		WHERE t.user_id = $1
	`
	args := []any{userID}

	if !includeCompleted {
		query += ` AND r.is_completed = FALSE`
	}
	if cutoff != nil {
		args = append(args, *cutoff)
		query += ` AND r.scheduled_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY r.scheduled_date ASC, r.revision_number ASC`

	return s.queryUpcoming(ctx, query, args...)
}

// ListWindow implements store.RevisionStore.ListWindow
func (s *PostgresRevisionStore) ListWindow(ctx context.Context, userID uuid.UUID, from, to *time.Time) ([]*store.UpcomingRevision, error) {
	query := `
		SELECT ` + upcomingColumns + `
		FROM revisions r
		JOIN topics t ON t.id = r.topic_id
		WHERE t.user_id = $1
	`
	args := []any{userID}

	if from != nil {
		args = append(args, *from)
		query += ` AND r.scheduled_date >= $` + strconv.Itoa(len(args))
	}
	if to != nil {
		args = append(args, *to)
		query += ` AND r.scheduled_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY r.scheduled_date ASC, r.revision_number ASC`

	return s.queryUpcoming(ctx, query, args...)
}

func (s *PostgresRevisionStore) queryUpcoming(ctx context.Context, query string, args ...any) ([]*store.UpcomingRevision, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query upcoming revisions",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer closeRows(rows, log)

	revisions := []*store.UpcomingRevision{}
	for rows.Next() {
		var rev store.UpcomingRevision
		err := rows.Scan(
			&rev.ID,
			&rev.TopicID,
			&rev.ScheduledAt,
			&rev.Sequence,
			&rev.Completed,
			&rev.CompletedAt,
			&rev.Notes,
			&rev.Notify,
			&rev.Color,
			&rev.TopicName,
			&rev.TopicGroup,
			&rev.TopicDescription,
		)
		if err != nil {
			log.Error("failed to scan upcoming revision row",
				slog.String("error", err.Error()))
			return nil, err
		}
		revisions = append(revisions, &rev)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning upcoming revision rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return revisions, nil
}

// Update implements store.RevisionStore.Update
func (s *PostgresRevisionStore) Update(ctx context.Context, revision *domain.Revision) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := revision.Validate(); err != nil {
		log.Warn("revision validation failed during update",
			slog.String("error", err.Error()),
			slog.String("revision_id", revision.ID.String()))
		return err
	}

	query := `
		UPDATE revisions
		SET scheduled_date = $1, is_completed = $2, completed_at = $3,
			notes = $4, notify = $5, color = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		revision.ScheduledAt,
		revision.Completed,
		revision.CompletedAt,
		revision.Notes,
		revision.Notify,
		revision.Color,
		revision.ID,
	)

	if err != nil {
		log.Error("failed to update revision",
			slog.String("error", err.Error()),
			slog.String("revision_id", revision.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("revision_id", revision.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrRevisionNotFound
	}

	log.Info("revision updated successfully",
		slog.String("revision_id", revision.ID.String()))
	return nil
}
