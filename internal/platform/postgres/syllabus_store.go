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

// PostgresSyllabusStore implements the store.SyllabusStore interface
// using a PostgreSQL database as the storage backend.
type PostgresSyllabusStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresSyllabusStore creates a new PostgreSQL implementation of the
// SyllabusStore interface. If logger is nil, the default logger is used.
func NewPostgresSyllabusStore(db store.DBTX, logger *slog.Logger) *PostgresSyllabusStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresSyllabusStore{
		db:     db,
		logger: logger.With(slog.String("component", "syllabus_store")),
	}
}

var _ store.SyllabusStore = (*PostgresSyllabusStore)(nil)

// WithTx implements store.SyllabusStore.WithTx
func (s *PostgresSyllabusStore) WithTx(tx *sql.Tx) store.SyllabusStore {
	return &PostgresSyllabusStore{db: tx, logger: s.logger}
}

// CreateItems implements store.SyllabusStore.CreateItems
// Run inside a transaction via WithTx when the batch must be all-or-nothing.
func (s *PostgresSyllabusStore) CreateItems(ctx context.Context, items []*domain.SyllabusItem) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(items) == 0 {
		return nil
	}

	for _, item := range items {
		if err := item.Validate(); err != nil {
			log.Warn("syllabus item validation failed during batch create",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()))
			return err
		}
	}

	query := `
		INSERT INTO syllabus_items (id, section, subsection, content, order_index)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, item := range items {
		_, err := s.db.ExecContext(
			ctx,
			query,
			item.ID,
			item.Section,
			item.Subsection,
			item.Content,
			item.OrderIndex,
		)
		if err != nil {
			log.Error("failed to create syllabus item",
				slog.String("error", err.Error()),
				slog.String("item_id", item.ID.String()))
			return err
		}
	}

	log.Info("syllabus items created successfully",
		slog.Int("count", len(items)))
	return nil
}

// CountItems implements store.SyllabusStore.CountItems
func (s *PostgresSyllabusStore) CountItems(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM syllabus_items`).Scan(&count); err != nil {
		log.Error("failed to count syllabus items",
			slog.String("error", err.Error()))
		return 0, err
	}

	return count, nil
}

const syllabusItemColumns = `id, section, subsection, content, order_index`

func scanSyllabusItem(row interface{ Scan(dest ...any) error }) (*domain.SyllabusItem, error) {
	var item domain.SyllabusItem
	err := row.Scan(
		&item.ID,
		&item.Section,
		&item.Subsection,
		&item.Content,
		&item.OrderIndex,
	)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ListItems implements store.SyllabusStore.ListItems
func (s *PostgresSyllabusStore) ListItems(ctx context.Context, section string) ([]*domain.SyllabusItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + syllabusItemColumns + `
		FROM syllabus_items
	`
	args := []any{}

	if section != "" {
		args = append(args, section)
		query += ` WHERE section = $1`
	}
	query += ` ORDER BY order_index ASC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list syllabus items",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer closeRows(rows, log)

	items := []*domain.SyllabusItem{}
	for rows.Next() {
		item, err := scanSyllabusItem(rows)
		if err != nil {
			log.Error("failed to scan syllabus item row",
				slog.String("error", err.Error()))
			return nil, err
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning syllabus item rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return items, nil
}

// ListSections implements store.SyllabusStore.ListSections
func (s *PostgresSyllabusStore) ListSections(ctx context.Context) ([]string, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT section
		FROM syllabus_items
		GROUP BY section
		ORDER BY MIN(order_index) ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		log.Error("failed to list syllabus sections",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer closeRows(rows, log)

	sections := []string{}
	for rows.Next() {
		var section string
		if err := rows.Scan(&section); err != nil {
			log.Error("failed to scan syllabus section row",
				slog.String("error", err.Error()))
			return nil, err
		}
		sections = append(sections, section)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning syllabus section rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return sections, nil
}

// GetItem implements store.SyllabusStore.GetItem
func (s *PostgresSyllabusStore) GetItem(ctx context.Context, id uuid.UUID) (*domain.SyllabusItem, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + syllabusItemColumns + `
		FROM syllabus_items
		WHERE id = $1
	`

	item, err := scanSyllabusItem(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrSyllabusItemNotFound
		}
		log.Error("failed to get syllabus item",
			slog.String("error", err.Error()),
			slog.String("item_id", id.String()))
		return nil, err
	}

	return item, nil
}

const progressColumns = `id, user_id, item_id, is_studied, study_date,
	confidence_level, notes`

func scanProgress(row interface{ Scan(dest ...any) error }) (*domain.SyllabusProgress, error) {
	var progress domain.SyllabusProgress
	var confidence string
	err := row.Scan(
		&progress.ID,
		&progress.UserID,
		&progress.ItemID,
		&progress.Studied,
		&progress.StudiedAt,
		&confidence,
		&progress.Notes,
	)
	if err != nil {
		return nil, err
	}
	progress.Confidence = domain.Confidence(confidence)
	return &progress, nil
}

// GetProgress implements store.SyllabusStore.GetProgress
func (s *PostgresSyllabusStore) GetProgress(ctx context.Context, userID, itemID uuid.UUID) (*domain.SyllabusProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM syllabus_progress
		WHERE user_id = $1 AND item_id = $2
	`

	progress, err := scanProgress(s.db.QueryRowContext(ctx, query, userID, itemID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrProgressNotFound
		}
		log.Error("failed to get syllabus progress",
			slog.String("error", err.Error()),
			slog.String("item_id", itemID.String()))
		return nil, err
	}

	return progress, nil
}

// ListProgressByUser implements store.SyllabusStore.ListProgressByUser
func (s *PostgresSyllabusStore) ListProgressByUser(ctx context.Context, userID uuid.UUID) ([]*domain.SyllabusProgress, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + progressColumns + `
		FROM syllabus_progress
		WHERE user_id = $1
	`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		log.Error("failed to list syllabus progress",
			slog.String("error", err.Error()),
			slog.String("user_id", userID.String()))
		return nil, err
	}
	defer closeRows(rows, log)

	marks := []*domain.SyllabusProgress{}
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			log.Error("failed to scan syllabus progress row",
				slog.String("error", err.Error()))
			return nil, err
		}
		marks = append(marks, progress)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning syllabus progress rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return marks, nil
}

// SaveProgress implements store.SyllabusStore.SaveProgress
// Upserts on the (user_id, item_id) uniqueness constraint so repeated marks
// against the same item update in place.
func (s *PostgresSyllabusStore) SaveProgress(ctx context.Context, progress *domain.SyllabusProgress) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := progress.Validate(); err != nil {
		log.Warn("syllabus progress validation failed during save",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	query := `
		INSERT INTO syllabus_progress (id, user_id, item_id, is_studied,
			study_date, confidence_level, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, item_id) DO UPDATE
		SET is_studied = EXCLUDED.is_studied,
			study_date = EXCLUDED.study_date,
			confidence_level = EXCLUDED.confidence_level,
			notes = EXCLUDED.notes
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		progress.ID,
		progress.UserID,
		progress.ItemID,
		progress.Studied,
		progress.StudiedAt,
		progress.Confidence,
		progress.Notes,
	)

	if err != nil {
		if isForeignKeyViolation(err) {
			log.Warn("foreign key violation during syllabus progress save",
				slog.String("item_id", progress.ItemID.String()))
			return store.ErrInvalidEntity
		}

		log.Error("failed to save syllabus progress",
			slog.String("error", err.Error()),
			slog.String("progress_id", progress.ID.String()))
		return err
	}

	log.Info("syllabus progress saved successfully",
		slog.String("user_id", progress.UserID.String()),
		slog.String("item_id", progress.ItemID.String()))
	return nil
}
