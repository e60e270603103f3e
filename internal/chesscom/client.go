package chesscom

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/vytor/openingstats/internal/logger"
)

const DefaultBaseURL = "https://api.chess.com"

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	// ArchiveLimit keeps only the most recent N monthly archives; 0 keeps all.
	ArchiveLimit int
	// MaxConcurrent bounds parallel monthly archive downloads.
	MaxConcurrent int
	// DetectOpenings falls back to the ECO book when a game carries no opening.
	DetectOpenings bool
}

type Client struct {
	http *resty.Client
	opts Options
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 10
	}

	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "openingstats").
		SetRetryCount(opts.RetryCount).
		AddRetryCondition(retryable)

	return &Client{http: rc, opts: opts}
}

func retryable(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= http.StatusInternalServerError
}

type archivesResp struct {
	Archives []string `json:"archives"`
}

type MonthlyGame struct {
	URL       string `json:"url"`
	PGN       string `json:"pgn"`
	TimeClass string `json:"time_class"`
	EndTime   int64  `json:"end_time"`
	Rated     bool   `json:"rated"`
	ECO       string `json:"eco"`
	White     Player `json:"white"`
	Black     Player `json:"black"`
}

type Player struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
	Result   string `json:"result"`
}

func (c *Client) FetchArchives(ctx context.Context, username string) ([]string, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("username", username)
	path := fmt.Sprintf("/pub/player/%s/games/archives", url.PathEscape(username))

	log.Debug("fetching archives from: %s", path)
	start := time.Now()

	resp, err := c.http.R().SetContext(ctx).Get(path)
	if err != nil {
		log.Error("failed to fetch archives: %v", err)
		return nil, errors.Wrap(err, "fetch archives")
	}

	log.Debug("archives response received in %v, status=%d", time.Since(start), resp.StatusCode())

	if resp.StatusCode() != http.StatusOK {
		body := truncate(resp.Body(), 1024)
		log.Error("archives request failed: status=%d, body=%s", resp.StatusCode(), body)
		return nil, errors.Newf("archives status %d: %s", resp.StatusCode(), body)
	}

	var out archivesResp
	if err := sonic.Unmarshal(resp.Body(), &out); err != nil {
		log.Error("failed to decode archives response: %v", err)
		return nil, errors.Wrap(err, "decode archives")
	}

	log.Info("fetched %d archives for user %s", len(out.Archives), username)
	return out.Archives, nil
}

func (c *Client) FetchMonthly(ctx context.Context, archiveURL string) ([]MonthlyGame, error) {
	log := logger.FromContext(ctx).WithPrefix("chesscom").WithField("archive_url", archiveURL)

	log.Debug("fetching monthly games")
	start := time.Now()

	resp, err := c.http.R().SetContext(ctx).Get(archiveURL)
	if err != nil {
		log.Error("failed to fetch monthly games: %v", err)
		return nil, errors.Wrap(err, "fetch monthly archive")
	}

	log.Debug("monthly response received in %v, status=%d", time.Since(start), resp.StatusCode())

	if resp.StatusCode() != http.StatusOK {
		body := truncate(resp.Body(), 1024)
		log.Error("monthly request failed: status=%d, body=%s", resp.StatusCode(), body)
		return nil, errors.Newf("monthly status %d: %s", resp.StatusCode(), body)
	}

	var payload struct {
		Games []MonthlyGame `json:"games"`
	}
	if err := sonic.Unmarshal(resp.Body(), &payload); err != nil {
		log.Error("failed to decode monthly response: %v", err)
		return nil, errors.Wrap(err, "decode monthly archive")
	}

	log.Info("fetched %d games from archive", len(payload.Games))
	return payload.Games, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
