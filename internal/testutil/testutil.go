package testutil

import (
	"database/sql"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/vytor/openingstats/internal/db"
	"github.com/vytor/openingstats/internal/models"
)

// NewTestDB opens a private in-memory SQLite database with all migrations applied.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()
	d, err := db.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	return d.DB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// MustPlayer inserts a player row and returns its id.
func MustPlayer(t *testing.T, db *sql.DB, username string) int64 {
	t.Helper()
	var id int64
	err := db.QueryRow(`INSERT INTO players (username) VALUES (?) RETURNING id`, username).Scan(&id)
	require.NoError(t, err)
	return id
}

// Game builds a finished record between white and black.
func Game(id, white, black, status string, winner models.Color, opening string) models.Game {
	g := models.Game{
		ID:     id,
		Source: models.SourceLichess,
		Status: status,
		Winner: winner,
		Players: &models.Players{
			White: &models.PlayerSlot{User: &models.User{Name: white}},
			Black: &models.PlayerSlot{User: &models.User{Name: black}},
		},
	}
	if opening != "" {
		g.Opening = &models.Opening{Name: opening}
	}
	return g
}
