package chesscom

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"golang.org/x/sync/errgroup"
)

func (c *Client) Name() string { return models.SourceChessCom }

// FetchGames downloads the player's monthly archives from the month of since
// onwards (all when since is nil) and converts them to game records, oldest
// archive first.
func (c *Client) FetchGames(ctx context.Context, username string, since *time.Time) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)

	archives, err := c.FetchArchives(ctx, username)
	if err != nil {
		return nil, err
	}

	if since != nil {
		archives = filterArchivesByDate(archives, *since)
		log.Info("filtered archives to %d based on last sync", len(archives))
	}

	// ArchiveLimit of 0 means fetch all archives
	if c.opts.ArchiveLimit > 0 && len(archives) > c.opts.ArchiveLimit {
		archives = archives[len(archives)-c.opts.ArchiveLimit:]
		log.Debug("limiting to last %d archives", c.opts.ArchiveLimit)
	}
	log.Info("fetching %d archives with up to %d in parallel", len(archives), c.opts.MaxConcurrent)

	monthly := make([][]MonthlyGame, len(archives))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.MaxConcurrent)
	for i, archiveURL := range archives {
		g.Go(func() error {
			games, err := c.FetchMonthly(gctx, archiveURL)
			if err != nil {
				return err
			}
			monthly[i] = games
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []models.Game
	for _, month := range monthly {
		for _, mg := range month {
			if since != nil && mg.EndTime > 0 && time.Unix(mg.EndTime, 0).Before(*since) {
				continue
			}
			out = append(out, ToGame(mg, c.opts.DetectOpenings))
		}
	}
	log.Info("converted %d games", len(out))
	return out, nil
}

// filterArchivesByDate keeps archives from the given month/year onwards.
// Archive URLs look like: https://api.chess.com/pub/player/{username}/games/YYYY/MM
func filterArchivesByDate(archives []string, since time.Time) []string {
	if since.IsZero() {
		return archives
	}
	since = since.UTC()
	sinceMonth := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)

	var filtered []string
	for _, url := range archives {
		parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
		if len(parts) < 2 {
			continue
		}
		year, err1 := strconv.Atoi(parts[len(parts)-2])
		month, err2 := strconv.Atoi(parts[len(parts)-1])
		if err1 != nil || err2 != nil {
			continue
		}
		if time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Before(sinceMonth) {
			continue
		}
		filtered = append(filtered, url)
	}
	return filtered
}
