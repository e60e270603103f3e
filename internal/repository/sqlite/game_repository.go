package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/repository"
)

// gameNamespace derives stable ids for records exported without one.
var gameNamespace = uuid.MustParse("6f1c2d0e-5b1a-4c8e-9f3d-2a7b8c9d0e1f")

type gameRepository struct {
	db *sql.DB
}

// NewGameRepository creates a new GameRepository implementation
func NewGameRepository(db *sql.DB) repository.GameRepository {
	return &gameRepository{db: db}
}

// ExternalID returns the id a record is stored under: its own id, or a name-based
// UUID of its payload when it has none.
func ExternalID(g models.Game, payload []byte) string {
	if g.ID != "" {
		return g.ID
	}
	return uuid.NewSHA1(gameNamespace, payload).String()
}

func (r *gameRepository) InsertBatch(ctx context.Context, playerID int64, games []models.Game) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("batch inserting %d games for player_id=%d", len(games), playerID)

	if len(games) == 0 {
		return 0, nil
	}

	inserted := 0
	err := tx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
INSERT INTO games (
    player_id, source, external_id, payload, opening_name, has_analysis, status, played_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(player_id, source, external_id) DO NOTHING
`)
		if err != nil {
			log.Error("failed to prepare batch insert: %v", err)
			return err
		}
		defer stmt.Close()

		for _, g := range games {
			payload, err := sonic.Marshal(g)
			if err != nil {
				return errors.Wrapf(err, "encode game %q", g.ID)
			}
			opening := ""
			if g.Opening != nil {
				opening = g.Opening.Name
			}
			res, err := stmt.ExecContext(ctx, playerID, g.Source, ExternalID(g, payload), string(payload),
				opening, g.HasAnalysis(), g.Status, nullTime(g.PlayedAt()))
			if err != nil {
				log.Error("failed to insert game id=%s: %v", g.ID, err)
				return err
			}
			if n, err := res.RowsAffected(); err == nil {
				inserted += int(n)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug("batch insert completed, %d new games inserted", inserted)
	return inserted, nil
}

func applyGameFilter(q squirrel.SelectBuilder, filter models.GameFilter) squirrel.SelectBuilder {
	if filter.PlayerID != 0 {
		q = q.Where(squirrel.Eq{"player_id": filter.PlayerID})
	}
	if filter.Source != "" {
		q = q.Where(squirrel.Eq{"source": filter.Source})
	}
	if filter.OpeningName != "" {
		q = q.Where(squirrel.Eq{"opening_name": filter.OpeningName})
	}
	if filter.HasAnalysis != nil {
		q = q.Where(squirrel.Eq{"has_analysis": *filter.HasAnalysis})
	}
	return q
}

// List returns stored records in play order. A non-positive Limit returns every
// matching record.
func (r *gameRepository) List(ctx context.Context, filter models.GameFilter) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("listing games with filter: player_id=%d, source=%s, opening=%s",
		filter.PlayerID, filter.Source, filter.OpeningName)

	query := applyGameFilter(sqlBuilder.Select("payload").From("games"), filter).
		OrderBy("played_at ASC", "id ASC")
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query = query.Limit(uint64(1<<63 - 1))
		}
		query = query.Offset(uint64(filter.Offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		log.Error("failed to list games: %v", err)
		return nil, err
	}
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			log.Error("failed to scan game row: %v", err)
			return nil, err
		}
		var g models.Game
		if err := sonic.UnmarshalString(payload, &g); err != nil {
			log.Error("failed to decode stored game: %v", err)
			return nil, errors.Wrap(err, "decode stored game")
		}
		games = append(games, g)
	}

	log.Debug("found %d games", len(games))
	return games, rows.Err()
}

func (r *gameRepository) Count(ctx context.Context, filter models.GameFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")

	stmt, args, err := applyGameFilter(sqlBuilder.Select("COUNT(*)").From("games"), filter).ToSql()
	if err != nil {
		log.Error("failed to build count query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&count); err != nil {
		log.Error("failed to count games: %v", err)
		return 0, err
	}
	log.Debug("game count: %d", count)
	return count, nil
}

func (r *gameRepository) ExistingIDs(ctx context.Context, playerID int64, source string) (map[string]bool, error) {
	log := logger.FromContext(ctx).WithPrefix("game_repo")
	log.Debug("loading existing ids for player_id=%d source=%s", playerID, source)

	rows, err := r.db.QueryContext(ctx, `SELECT external_id FROM games WHERE player_id = ? AND source = ?`, playerID, source)
	if err != nil {
		log.Error("failed to list external ids: %v", err)
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			log.Error("failed to scan external id: %v", err)
			return nil, err
		}
		out[id] = true
	}
	return out, rows.Err()
}
