package services

import (
	"context"

	"github.com/vytor/openingstats/internal/errors"
	"github.com/vytor/openingstats/internal/gamefile"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/repository"
)

// GameLoader supplies the records an analysis runs over.
type GameLoader interface {
	Load(ctx context.Context, q StatsQuery) ([]models.Game, error)
}

// RepositoryLoader reads a player's stored games.
type RepositoryLoader struct {
	Players repository.PlayerRepository
	Games   repository.GameRepository
}

func (l RepositoryLoader) Load(ctx context.Context, q StatsQuery) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("loader")

	player, err := l.Players.GetByUsername(ctx, q.Player)
	if err != nil {
		log.Error("failed to look up player: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if player == nil {
		return nil, errors.NewNotFoundError("player", q.Player)
	}

	games, err := l.Games.List(ctx, models.GameFilter{PlayerID: player.ID, Source: q.Source})
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("loaded %d stored games for %s", len(games), q.Player)
	return games, nil
}

// FileLoader reads a game file. The query's Source narrows the records when set.
type FileLoader struct {
	Path string
}

func (l FileLoader) Load(ctx context.Context, q StatsQuery) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("loader")

	games, err := gamefile.Read(l.Path)
	if err != nil {
		log.Error("failed to read %s: %v", l.Path, err)
		return nil, errors.NewBadRequestError(err.Error())
	}
	if q.Source == "" {
		return games, nil
	}
	kept := games[:0:0]
	for _, g := range games {
		if g.Source == q.Source {
			kept = append(kept, g)
		}
	}
	return kept, nil
}

// StaticLoader serves a fixed slice; used by pipelines that already hold the games.
type StaticLoader []models.Game

func (l StaticLoader) Load(context.Context, StatsQuery) ([]models.Game, error) {
	return l, nil
}
