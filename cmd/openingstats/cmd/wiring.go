package cmd

import (
	"github.com/vytor/openingstats/internal/chesscom"
	"github.com/vytor/openingstats/internal/db"
	"github.com/vytor/openingstats/internal/lichess"
	"github.com/vytor/openingstats/internal/repository/sqlite"
	"github.com/vytor/openingstats/internal/services"
)

func (a *app) sources() services.Sources {
	return services.NewSources(
		lichess.New(lichess.Options{
			BaseURL:    a.cfg.LichessBaseURL,
			Token:      a.cfg.LichessToken,
			RetryCount: a.cfg.HTTPRetryCount,
		}),
		lichess.NewCannedSource(a.cfg.CannedGamesURL, a.cfg.HTTPTimeout(), a.cfg.HTTPRetryCount),
		chesscom.New(chesscom.Options{
			BaseURL:        a.cfg.ChessComBaseURL,
			Timeout:        a.cfg.HTTPTimeout(),
			RetryCount:     a.cfg.HTTPRetryCount,
			ArchiveLimit:   a.cfg.ArchiveLimit,
			MaxConcurrent:  a.cfg.MaxConcurrentArchive,
			DetectOpenings: a.cfg.DetectOpenings,
		}),
	)
}

// store bundles the database and the services built on it.
type store struct {
	db      *db.DB
	players services.PlayerService
	imports services.ImportService
	loader  services.RepositoryLoader
}

func (a *app) openStore() (*store, error) {
	database, err := db.Open(a.cfg.DBPath)
	if err != nil {
		return nil, err
	}
	playerRepo := sqlite.NewPlayerRepository(database.DB)
	gameRepo := sqlite.NewGameRepository(database.DB)
	importRepo := sqlite.NewImportRepository(database.DB)

	return &store{
		db:      database,
		players: services.NewPlayerService(playerRepo, importRepo),
		imports: services.NewImportService(playerRepo, gameRepo, importRepo, a.sources()),
		loader:  services.RepositoryLoader{Players: playerRepo, Games: gameRepo},
	}, nil
}

func (s *store) Close() error { return s.db.Close() }

func (a *app) statsService(loader services.GameLoader) services.StatsService {
	return services.NewStatsService(loader, services.StatsOptions{Shards: a.cfg.ShardCount})
}
