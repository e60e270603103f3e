package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/openingstats/internal/errors"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/repository"
)

// ImportService pulls a player's games from a source into the store
type ImportService interface {
	Import(ctx context.Context, req models.ImportRequest) (*models.ImportRun, error)
}

type importService struct {
	playerRepo repository.PlayerRepository
	gameRepo   repository.GameRepository
	importRepo repository.ImportRepository
	sources    Sources
	now        func() time.Time
}

// NewImportService creates a new ImportService
func NewImportService(
	playerRepo repository.PlayerRepository,
	gameRepo repository.GameRepository,
	importRepo repository.ImportRepository,
	sources Sources,
) ImportService {
	return &importService{
		playerRepo: playerRepo,
		gameRepo:   gameRepo,
		importRepo: importRepo,
		sources:    sources,
		now:        time.Now,
	}
}

func (s *importService) Import(ctx context.Context, req models.ImportRequest) (*models.ImportRun, error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"username": req.Username,
		"source":   req.Source,
	})

	if strings.TrimSpace(req.Username) == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}
	if req.Source == "" {
		req.Source = models.SourceLichess
	}
	src, ok := s.sources[req.Source]
	if !ok {
		return nil, errors.NewBadRequestError(fmt.Sprintf("unknown source %q (available: %s)",
			req.Source, strings.Join(s.sources.Names(), ", ")))
	}

	player, err := s.playerRepo.Upsert(ctx, req.Username)
	if err != nil {
		log.Error("failed to upsert player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log = log.WithField("player_id", player.ID)

	run, err := s.importRepo.Create(ctx, models.ImportRun{
		PlayerID:  player.ID,
		Source:    src.Name(),
		Status:    models.ImportRunning,
		StartedAt: s.now().UTC(),
	})
	if err != nil {
		log.Error("failed to create import run: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log = log.WithField("import_id", run.ID)

	var since *time.Time
	if !req.Full && player.LastSyncAt != nil {
		since = player.LastSyncAt
		log.Info("incremental import since %s", since.Format(time.RFC3339))
	} else {
		log.Info("full import")
	}

	syncedAt := s.now()
	if err := s.fetchAndStore(ctx, log, src, player, since, run); err != nil {
		run.Status = models.ImportFailed
		run.Error = err.Error()
		if ferr := s.importRepo.Finish(ctx, *run); ferr != nil {
			log.Warn("failed to record failed import: %v", ferr)
		}
		if _, ok := errors.As(err); ok {
			return run, err
		}
		return run, errors.NewInternalError(err)
	}

	if err := s.playerRepo.UpdateSync(ctx, player.ID, syncedAt); err != nil {
		log.Warn("failed to update player sync time: %v", err)
	}

	run.Status = models.ImportCompleted
	if err := s.importRepo.Finish(ctx, *run); err != nil {
		log.Error("failed to finish import run: %v", err)
		return run, errors.NewInternalError(err)
	}
	log.Info("import completed: fetched=%d inserted=%d", run.GamesFetched, run.GamesInserted)
	return run, nil
}

func (s *importService) fetchAndStore(ctx context.Context, log *logger.Logger, src GameSource, player *models.Player, since *time.Time, run *models.ImportRun) error {
	games, err := src.FetchGames(ctx, player.Username, since)
	if err != nil {
		log.Error("failed to fetch games: %v", err)
		return err
	}
	run.GamesFetched = len(games)

	existing, err := s.gameRepo.ExistingIDs(ctx, player.ID, src.Name())
	if err != nil {
		log.Warn("failed to load existing game ids: %v", err)
		existing = map[string]bool{}
	}

	fresh := make([]models.Game, 0, len(games))
	for _, g := range games {
		if g.Source == "" {
			g.Source = src.Name()
		}
		if g.ID != "" {
			if existing[g.ID] {
				continue
			}
			existing[g.ID] = true
		}
		fresh = append(fresh, g)
	}
	log.Debug("%d of %d fetched games are new", len(fresh), len(games))

	inserted, err := s.gameRepo.InsertBatch(ctx, player.ID, fresh)
	if err != nil {
		log.Error("failed to insert games: %v", err)
		return err
	}
	run.GamesInserted = inserted
	return nil
}
