package services

import (
	"context"
	"sort"
	"time"

	"github.com/vytor/openingstats/internal/models"
)

// GameSource fetches a player's finished games from one provider.
type GameSource interface {
	Name() string
	// FetchGames returns games played at or after since; a nil since means all.
	FetchGames(ctx context.Context, username string, since *time.Time) ([]models.Game, error)
}

// Sources indexes game sources by name.
type Sources map[string]GameSource

func NewSources(srcs ...GameSource) Sources {
	out := make(Sources, len(srcs))
	for _, s := range srcs {
		out[s.Name()] = s
	}
	return out
}

// Names lists the registered source names in order.
func (s Sources) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
