package worker

import (
	"context"

	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
)

// ImportGamesJob pulls one player's games from one source into the store.
type ImportGamesJob struct {
	Importer Importer
	Request  models.ImportRequest
}

func (j *ImportGamesJob) Name() string { return "import_games" }

func (j *ImportGamesJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"username": j.Request.Username,
		"source":   j.Request.Source,
	})
	log.Info("starting background import")

	run, err := j.Importer.Import(ctx, j.Request)
	if err != nil {
		return err
	}
	log.Info("background import %s finished: %d fetched, %d new", run.ID, run.GamesFetched, run.GamesInserted)
	return nil
}
