package models

import "time"

// Player is a tracked account whose games have been imported.
type Player struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	CreatedAt  time.Time  `json:"created_at"`
	LastSyncAt *time.Time `json:"last_sync_at"`
}

// GameFilter narrows stored games for a player.
type GameFilter struct {
	PlayerID    int64
	Source      string
	OpeningName string
	HasAnalysis *bool
	Limit       int
	Offset      int
}
