package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/repository"
)

type playerRepository struct {
	db *sql.DB
}

// NewPlayerRepository creates a new PlayerRepository implementation
func NewPlayerRepository(db *sql.DB) repository.PlayerRepository {
	return &playerRepository{db: db}
}

func (r *playerRepository) Upsert(ctx context.Context, username string) (*models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("upserting player for username: %s", username)

	var p models.Player
	err := r.db.QueryRowContext(ctx, `
INSERT INTO players (username)
VALUES (?)
ON CONFLICT(username) DO UPDATE SET username = excluded.username
RETURNING id, username, created_at, last_sync_at
`, username).Scan(&p.ID, &p.Username, &p.CreatedAt, &p.LastSyncAt)
	if err != nil {
		log.Error("failed to upsert player: %v", err)
		return nil, err
	}
	log.Debug("player upserted: id=%d", p.ID)
	return &p, nil
}

func (r *playerRepository) UpdateSync(ctx context.Context, id int64, t time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("updating player sync time: player_id=%d", id)

	_, err := r.db.ExecContext(ctx, `UPDATE players SET last_sync_at = ? WHERE id = ?`, t.UTC(), id)
	if err != nil {
		log.Error("failed to update player sync: %v", err)
	}
	return err
}

func (r *playerRepository) List(ctx context.Context) ([]models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("listing players")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, username, created_at, last_sync_at
FROM players
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		log.Error("failed to list players: %v", err)
		return nil, err
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Username, &p.CreatedAt, &p.LastSyncAt); err != nil {
			log.Error("failed to scan player row: %v", err)
			return nil, err
		}
		players = append(players, p)
	}

	log.Debug("found %d players", len(players))
	return players, rows.Err()
}

func (r *playerRepository) Get(ctx context.Context, id int64) (*models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("getting player: id=%d", id)

	return r.getOne(ctx, log, sqlBuilder.Select("id", "username", "created_at", "last_sync_at").
		From("players").Where("id = ?", id))
}

func (r *playerRepository) GetByUsername(ctx context.Context, username string) (*models.Player, error) {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("getting player: username=%s", username)

	return r.getOne(ctx, log, sqlBuilder.Select("id", "username", "created_at", "last_sync_at").
		From("players").Where("username = ?", username))
}

// getOne returns (nil, nil) when nothing matches.
func (r *playerRepository) getOne(ctx context.Context, log *logger.Logger, q squirrel.Sqlizer) (*models.Player, error) {
	query, args, err := q.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	var p models.Player
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.Username, &p.CreatedAt, &p.LastSyncAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("player not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get player: %v", err)
		return nil, err
	}
	return &p, nil
}

func (r *playerRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("player_repo")
	log.Debug("deleting player and related data: id=%d", id)

	return tx(ctx, r.db, func(tx *sql.Tx) error {
		// games and imports also cascade from players.
		res, err := tx.ExecContext(ctx, `DELETE FROM games WHERE player_id = ?`, id)
		if err != nil {
			log.Error("failed to delete games for player %d: %v", id, err)
			return err
		}
		games, _ := res.RowsAffected()

		if _, err := tx.ExecContext(ctx, `DELETE FROM imports WHERE player_id = ?`, id); err != nil {
			log.Error("failed to delete imports for player %d: %v", id, err)
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM players WHERE id = ?`, id); err != nil {
			log.Error("failed to delete player %d: %v", id, err)
			return err
		}

		log.Debug("player %d deleted with %d games", id, games)
		return nil
	})
}
