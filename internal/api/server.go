package api

import (
	"context"

	"github.com/vytor/openingstats/internal/jobs"
	"github.com/vytor/openingstats/internal/services"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	Players services.PlayerService
	Stats   services.StatsService
	Queue   jobs.JobQueue
	DB      Pinger
	// Sources lists the import sources the queue accepts.
	Sources []string
}
