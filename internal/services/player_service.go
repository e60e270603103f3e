package services

import (
	"context"

	"github.com/vytor/openingstats/internal/errors"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/repository"
)

// PlayerService handles player-related business logic
type PlayerService interface {
	ListPlayers(ctx context.Context) ([]models.Player, error)
	GetPlayer(ctx context.Context, username string) (*models.Player, error)
	DeletePlayer(ctx context.Context, username string) error
	ListImports(ctx context.Context, username string, limit int) ([]models.ImportRun, error)
}

type playerService struct {
	playerRepo repository.PlayerRepository
	importRepo repository.ImportRepository
}

// NewPlayerService creates a new PlayerService
func NewPlayerService(playerRepo repository.PlayerRepository, importRepo repository.ImportRepository) PlayerService {
	return &playerService{playerRepo: playerRepo, importRepo: importRepo}
}

func (s *playerService) ListPlayers(ctx context.Context) ([]models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing players")

	players, err := s.playerRepo.List(ctx)
	if err != nil {
		log.Error("failed to list players: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if players == nil {
		players = []models.Player{}
	}
	return players, nil
}

func (s *playerService) GetPlayer(ctx context.Context, username string) (*models.Player, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting player: username=%s", username)

	if username == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}

	player, err := s.playerRepo.GetByUsername(ctx, username)
	if err != nil {
		log.Error("failed to get player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if player == nil {
		return nil, errors.NewNotFoundError("player", username)
	}
	return player, nil
}

func (s *playerService) DeletePlayer(ctx context.Context, username string) error {
	log := logger.FromContext(ctx)

	player, err := s.GetPlayer(ctx, username)
	if err != nil {
		return err
	}

	log.Debug("deleting player: id=%d", player.ID)
	if err := s.playerRepo.Delete(ctx, player.ID); err != nil {
		log.Error("failed to delete player: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *playerService) ListImports(ctx context.Context, username string, limit int) ([]models.ImportRun, error) {
	log := logger.FromContext(ctx)

	player, err := s.GetPlayer(ctx, username)
	if err != nil {
		return nil, err
	}

	runs, err := s.importRepo.ListByPlayer(ctx, player.ID, limit)
	if err != nil {
		log.Error("failed to list imports: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return runs, nil
}
