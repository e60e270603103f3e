package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/repository"
)

type importRepository struct {
	db *sql.DB
}

// NewImportRepository creates a new ImportRepository implementation
func NewImportRepository(db *sql.DB) repository.ImportRepository {
	return &importRepository{db: db}
}

const importColumns = "id, player_id, source, status, games_fetched, games_inserted, error, started_at, finished_at"

func scanImport(row interface{ Scan(...any) error }) (models.ImportRun, error) {
	var run models.ImportRun
	err := row.Scan(&run.ID, &run.PlayerID, &run.Source, &run.Status, &run.GamesFetched,
		&run.GamesInserted, &run.Error, &run.StartedAt, &run.FinishedAt)
	return run, err
}

// Create stores a new run. A missing id, status or start time is filled in.
func (r *importRepository) Create(ctx context.Context, run models.ImportRun) (*models.ImportRun, error) {
	log := logger.FromContext(ctx).WithPrefix("import_repo")

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.Status == "" {
		run.Status = models.ImportRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	log.Debug("creating import run: id=%s, player_id=%d, source=%s", run.ID, run.PlayerID, run.Source)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO imports (id, player_id, source, status, games_fetched, games_inserted, error, started_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, run.ID, run.PlayerID, run.Source, run.Status, run.GamesFetched, run.GamesInserted, run.Error, run.StartedAt)
	if err != nil {
		log.Error("failed to create import run: %v", err)
		return nil, err
	}
	return &run, nil
}

// Finish records the final state of a run. FinishedAt defaults to now.
func (r *importRepository) Finish(ctx context.Context, run models.ImportRun) error {
	log := logger.FromContext(ctx).WithPrefix("import_repo")
	log.Debug("finishing import run: id=%s, status=%s", run.ID, run.Status)

	finished := time.Now().UTC()
	if run.FinishedAt != nil {
		finished = run.FinishedAt.UTC()
	}

	stmt, args, err := sqlBuilder.Update("imports").
		Set("status", run.Status).
		Set("games_fetched", run.GamesFetched).
		Set("games_inserted", run.GamesInserted).
		Set("error", run.Error).
		Set("finished_at", finished).
		Where("id = ?", run.ID).
		ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return err
	}

	res, err := r.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to finish import run: %v", err)
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return errors.Newf("import run %s not found", run.ID)
	}
	return nil
}

func (r *importRepository) Get(ctx context.Context, id string) (*models.ImportRun, error) {
	log := logger.FromContext(ctx).WithPrefix("import_repo")
	log.Debug("getting import run: id=%s", id)

	run, err := scanImport(r.db.QueryRowContext(ctx, `SELECT `+importColumns+` FROM imports WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("import run not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get import run: %v", err)
		return nil, err
	}
	return &run, nil
}

// ListByPlayer returns the most recent runs first. A non-positive limit returns all.
func (r *importRepository) ListByPlayer(ctx context.Context, playerID int64, limit int) ([]models.ImportRun, error) {
	log := logger.FromContext(ctx).WithPrefix("import_repo")
	log.Debug("listing import runs: player_id=%d, limit=%d", playerID, limit)

	query := sqlBuilder.Select(importColumns).From("imports").
		Where("player_id = ?", playerID).
		OrderBy("started_at DESC", "rowid DESC")
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list import runs: %v", err)
		return nil, err
	}
	defer rows.Close()

	runs := []models.ImportRun{}
	for rows.Next() {
		run, err := scanImport(rows)
		if err != nil {
			log.Error("failed to scan import row: %v", err)
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
