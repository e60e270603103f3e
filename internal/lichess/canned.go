package lichess

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/vytor/openingstats/internal/gamefile"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
)

const DefaultCannedURL = "https://sayles-lichess-games.s3.amazonaws.com/games.zip"

// CannedSource downloads a fixed, previously exported game archive. The archive
// belongs to one player, so the username and since arguments are ignored.
type CannedSource struct {
	http *resty.Client
	url  string
}

func NewCannedSource(archiveURL string, timeout time.Duration, retries int) *CannedSource {
	if archiveURL == "" {
		archiveURL = DefaultCannedURL
	}
	rc := resty.New().
		SetHeader("User-Agent", "openingstats").
		SetRetryCount(retries)
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &CannedSource{http: rc, url: archiveURL}
}

func (s *CannedSource) Name() string { return models.SourceCanned }

func (s *CannedSource) FetchGames(ctx context.Context, username string, _ *time.Time) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("canned").WithField("url", s.url)
	log.Debug("downloading canned archive")
	start := time.Now()

	resp, err := s.http.R().SetContext(ctx).Get(s.url)
	if err != nil {
		log.Error("failed to download archive: %v", err)
		return nil, errors.Wrap(err, "download canned archive")
	}
	if resp.StatusCode() != http.StatusOK {
		log.Error("archive download failed: status=%d", resp.StatusCode())
		return nil, errors.Newf("canned archive status %d", resp.StatusCode())
	}

	games, err := gamefile.DecodeArchive(resp.Body())
	if err != nil {
		log.Error("failed to decode archive: %v", err)
		return nil, errors.Wrap(err, "decode canned archive")
	}
	for i := range games {
		if games[i].Source == "" {
			games[i].Source = models.SourceCanned
		}
	}

	log.Info("downloaded %d games (%d bytes) in %v for %s", len(games), len(resp.Body()), time.Since(start), username)
	return games, nil
}
