// Package lichess fetches game exports from lichess.org and from the canned game
// archive.
package lichess

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
)

const DefaultBaseURL = "https://lichess.org"

// maxLineSize bounds a single NDJSON record; annotated games with full
// evaluations can run to several hundred kilobytes.
const maxLineSize = 8 << 20

// Options configures a Client.
type Options struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
	// Max caps the number of games per export; 0 means no cap.
	Max int
}

// Client exports a player's games through the lichess API.
type Client struct {
	http *resty.Client
	opts Options
}

func New(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetHeader("Accept", "application/x-ndjson").
		SetHeader("User-Agent", "openingstats").
		SetRetryCount(opts.RetryCount)
	// Exports stream for a long time; only bound them when asked to.
	if opts.Timeout > 0 {
		rc.SetTimeout(opts.Timeout)
	}
	if opts.Token != "" {
		rc.SetAuthToken(opts.Token)
	}
	return &Client{http: rc, opts: opts}
}

func (c *Client) Name() string { return models.SourceLichess }

// FetchGames exports every game of username, with opening and evaluation data,
// played at or after since when it is set.
func (c *Client) FetchGames(ctx context.Context, username string, since *time.Time) ([]models.Game, error) {
	log := logger.FromContext(ctx).WithPrefix("lichess").WithField("username", username)

	params := map[string]string{
		"opening": "true",
		"evals":   "true",
		"moves":   "false",
	}
	if since != nil && !since.IsZero() {
		params["since"] = strconv.FormatInt(since.UnixMilli(), 10)
	}
	if c.opts.Max > 0 {
		params["max"] = strconv.Itoa(c.opts.Max)
	}

	path := fmt.Sprintf("/api/games/user/%s", url.PathEscape(username))
	log.Debug("exporting games from: %s", path)
	start := time.Now()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetDoNotParseResponse(true).
		Get(path)
	if err != nil {
		log.Error("failed to export games: %v", err)
		return nil, errors.Wrap(err, "export games")
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(body, 1024))
		log.Error("export request failed: status=%d, body=%s", resp.StatusCode(), string(msg))
		return nil, errors.Newf("export status %d: %s", resp.StatusCode(), string(msg))
	}

	games, err := DecodeNDJSON(body)
	if err != nil {
		log.Error("failed to decode export: %v", err)
		return nil, err
	}
	for i := range games {
		games[i].Source = models.SourceLichess
	}

	log.Info("exported %d games in %v", len(games), time.Since(start))
	return games, nil
}

// DecodeNDJSON reads one game record per line. Blank lines are skipped.
func DecodeNDJSON(r io.Reader) ([]models.Game, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	games := []models.Game{}
	line := 0
	for sc.Scan() {
		line++
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var g models.Game
		if err := sonic.Unmarshal(raw, &g); err != nil {
			return nil, errors.Wrapf(err, "decode export line %d", line)
		}
		games = append(games, g)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read export")
	}
	return games, nil
}
