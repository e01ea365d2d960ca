package syllabus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/pilotprep/pilotprep/internal/domain"
	"github.com/pilotprep/pilotprep/internal/platform/logger"
	"github.com/pilotprep/pilotprep/internal/store"
)

// ErrAlreadyImported is returned when an import is requested but syllabus
// items already exist. The curriculum is loaded once; re-imports would
// duplicate every item.
var ErrAlreadyImported = errors.New("syllabus has already been imported")

// ErrNoItems is returned when the source file parses to zero items.
var ErrNoItems = errors.New("syllabus source file contains no items")

// Importer loads the official curriculum file into the syllabus store.
type Importer interface {
	// Import parses the configured source file and saves its items in one
	// transaction. Returns ErrAlreadyImported if items already exist and
	// the number of items created otherwise.
	Import(ctx context.Context) (int, error)
}

// importerImpl implements the Importer interface.
type importerImpl struct {
	db         *sql.DB
	syllabus   store.SyllabusStore
	sourcePath string
	logger     *slog.Logger
}

// NewImporter creates a new syllabus Importer reading from the given file.
// It returns an error if any of the required dependencies are missing.
func NewImporter(
	db *sql.DB,
	syllabus store.SyllabusStore,
	sourcePath string,
	logger *slog.Logger,
) (Importer, error) {
	if db == nil {
		return nil, fmt.Errorf("%w: db cannot be nil", domain.ErrValidation)
	}
	if syllabus == nil {
		return nil, fmt.Errorf("%w: syllabus store cannot be nil", domain.ErrValidation)
	}
	if sourcePath == "" {
		return nil, fmt.Errorf("%w: source path cannot be empty", domain.ErrValidation)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &importerImpl{
		db:         db,
		syllabus:   syllabus,
		sourcePath: sourcePath,
		logger:     logger.With(slog.String("component", "syllabus_importer")),
	}, nil
}

// Import implements Importer.Import
func (i *importerImpl) Import(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, i.logger)

	f, err := os.Open(i.sourcePath)
	if err != nil {
		log.Error("failed to open syllabus source file",
			slog.String("error", err.Error()),
			slog.String("path", i.sourcePath))
		return 0, fmt.Errorf("failed to open syllabus source file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			log.Warn("failed to close syllabus source file",
				slog.String("error", closeErr.Error()))
		}
	}()

	parsed, err := Parse(f)
	if err != nil {
		log.Error("failed to parse syllabus source file",
			slog.String("error", err.Error()),
			slog.String("path", i.sourcePath))
		return 0, fmt.Errorf("failed to parse syllabus source file: %w", err)
	}
	if len(parsed) == 0 {
		return 0, ErrNoItems
	}

	items := make([]*domain.SyllabusItem, 0, len(parsed))
	for _, p := range parsed {
		item, err := domain.NewSyllabusItem(p.Section, p.Subsection, p.Content, p.OrderIndex)
		if err != nil {
			return 0, err
		}
		items = append(items, item)
	}

	err = store.RunInTransaction(ctx, i.db, func(ctx context.Context, tx *sql.Tx) error {
		txSyllabus := i.syllabus.WithTx(tx)

		count, err := txSyllabus.CountItems(ctx)
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyImported
		}

		return txSyllabus.CreateItems(ctx, items)
	})
	if err != nil {
		return 0, err
	}

	log.Info("syllabus imported",
		slog.String("path", i.sourcePath),
		slog.Int("item_count", len(items)))
	return len(items), nil
}
