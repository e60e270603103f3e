package repository

import (
	"context"
	"time"

	"github.com/vytor/openingstats/internal/models"
)

// PlayerRepository handles player data access
type PlayerRepository interface {
	Get(ctx context.Context, id int64) (*models.Player, error)
	GetByUsername(ctx context.Context, username string) (*models.Player, error)
	List(ctx context.Context) ([]models.Player, error)
	Upsert(ctx context.Context, username string) (*models.Player, error)
	UpdateSync(ctx context.Context, id int64, t time.Time) error
	Delete(ctx context.Context, id int64) error
}

// GameRepository stores raw game records per player. Records are deduplicated on
// (player, source, external id).
type GameRepository interface {
	InsertBatch(ctx context.Context, playerID int64, games []models.Game) (int, error)
	List(ctx context.Context, filter models.GameFilter) ([]models.Game, error)
	Count(ctx context.Context, filter models.GameFilter) (int, error)
	ExistingIDs(ctx context.Context, playerID int64, source string) (map[string]bool, error)
}

// ImportRepository records import runs
type ImportRepository interface {
	Create(ctx context.Context, run models.ImportRun) (*models.ImportRun, error)
	Finish(ctx context.Context, run models.ImportRun) error
	Get(ctx context.Context, id string) (*models.ImportRun, error)
	ListByPlayer(ctx context.Context, playerID int64, limit int) ([]models.ImportRun, error)
}
