package models

import "time"

// Import run states.
const (
	ImportRunning   = "running"
	ImportCompleted = "completed"
	ImportFailed    = "failed"
)

// ImportRequest asks for a player's games to be pulled from a source.
type ImportRequest struct {
	Username string `json:"username"`
	Source   string `json:"source"`
	// Full ignores the last sync time and refetches everything.
	Full bool `json:"full"`
}

// ImportRun records one execution of an import.
type ImportRun struct {
	ID            string     `json:"id"`
	PlayerID      int64      `json:"player_id"`
	Source        string     `json:"source"`
	Status        string     `json:"status"`
	GamesFetched  int        `json:"games_fetched"`
	GamesInserted int        `json:"games_inserted"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}
