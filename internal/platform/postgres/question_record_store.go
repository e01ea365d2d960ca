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

// PostgresQuestionRecordStore implements the store.QuestionRecordStore
// interface using a PostgreSQL database as the storage backend.
type PostgresQuestionRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresQuestionRecordStore creates a new PostgreSQL implementation of
// the QuestionRecordStore interface. If logger is nil, the default logger is
// used.
func NewPostgresQuestionRecordStore(db store.DBTX, logger *slog.Logger) *PostgresQuestionRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresQuestionRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "question_record_store")),
	}
}

var _ store.QuestionRecordStore = (*PostgresQuestionRecordStore)(nil)

// WithTx implements store.QuestionRecordStore.WithTx
func (s *PostgresQuestionRecordStore) WithTx(tx *sql.Tx) store.QuestionRecordStore {
	return &PostgresQuestionRecordStore{db: tx, logger: s.logger}
}

// Create implements store.QuestionRecordStore.Create
func (s *PostgresQuestionRecordStore) Create(ctx context.Context, record *domain.QuestionRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("question record validation failed during create",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	query := `
		INSERT INTO question_records (id, user_id, topic_id, record_date, source,
			specific_topic, difficulty_level, total_questions, correct_answers,
			wrong_answers, accuracy_percentage, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		record.TopicID,
		record.RecordedAt,
		record.Source,
		record.SpecificTopic,
		record.Difficulty,
		record.Total,
		record.Correct,
		record.Wrong,
		record.Accuracy,
		record.Notes,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during question record creation",
				slog.String("record_id", record.ID.String()))
			return store.ErrInvalidEntity
		}

		log.Error("failed to create question record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	log.Info("question record created successfully",
		slog.String("record_id", record.ID.String()),
		slog.String("user_id", record.UserID.String()))
	return nil
}

const questionColumns = `id, user_id, topic_id, record_date, source,
	specific_topic, difficulty_level, total_questions, correct_answers,
	wrong_answers, accuracy_percentage, notes`

func scanQuestionRecord(row interface{ Scan(dest ...any) error }) (*domain.QuestionRecord, error) {
	var record domain.QuestionRecord
	var difficulty string
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.TopicID,
		&record.RecordedAt,
		&record.Source,
		&record.SpecificTopic,
		&difficulty,
		&record.Total,
		&record.Correct,
		&record.Wrong,
		&record.Accuracy,
		&record.Notes,
	)
	if err != nil {
		return nil, err
	}
	record.Difficulty = domain.Difficulty(difficulty)
	return &record, nil
}

// GetForUser implements store.QuestionRecordStore.GetForUser
func (s *PostgresQuestionRecordStore) GetForUser(ctx context.Context, id, userID uuid.UUID) (*domain.QuestionRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + questionColumns + `
		FROM question_records
		WHERE id = $1 AND user_id = $2
	`

	record, err := scanQuestionRecord(s.db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrQuestionRecordNotFound
		}
		log.Error("failed to get question record",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return nil, err
	}

	return record, nil
}

// ListByUser implements store.QuestionRecordStore.ListByUser
func (s *PostgresQuestionRecordStore) ListByUser(ctx context.Context, userID uuid.UUID, filter store.QuestionFilter) ([]*domain.QuestionRecord, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + questionColumns + `
		FROM question_records
		WHERE user_id = $1
	`
	args := []any{userID}

	if filter.TopicID != nil {
		args = append(args, *filter.TopicID)
		query += ` AND topic_id = $` + strconv.Itoa(len(args))
	}
	if filter.Difficulty != nil {
		args = append(args, *filter.Difficulty)
		query += ` AND difficulty_level = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND record_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND record_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY record_date DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list question records",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	records := []*domain.QuestionRecord{}
	for rows.Next() {
		record, err := scanQuestionRecord(rows)
		if err != nil {
			log.Error("failed to scan question record row",
				slog.String("error", err.Error()))
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning question record rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return records, nil
}

// Update implements store.QuestionRecordStore.Update
func (s *PostgresQuestionRecordStore) Update(ctx context.Context, record *domain.QuestionRecord) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("question record validation failed during update",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	query := `
		UPDATE question_records
		SET topic_id = $1, record_date = $2, source = $3, specific_topic = $4,
			difficulty_level = $5, total_questions = $6, correct_answers = $7,
			wrong_answers = $8, accuracy_percentage = $9, notes = $10
		WHERE id = $11 AND user_id = $12
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		record.TopicID,
		record.RecordedAt,
		record.Source,
		record.SpecificTopic,
		record.Difficulty,
		record.Total,
		record.Correct,
		record.Wrong,
		record.Accuracy,
		record.Notes,
		record.ID,
		record.UserID,
	)

	if err != nil {
		log.Error("failed to update question record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return err
	}

	if rowsAffected == 0 {
		return store.ErrQuestionRecordNotFound
	}

	log.Info("question record updated successfully",
		slog.String("record_id", record.ID.String()))
	return nil
}
