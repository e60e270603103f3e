package models

import (
	"bytes"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Color is a side of the board as it appears in game exports.
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
	// ColorUnknown marks a subject that matched neither player slot.
	ColorUnknown Color = ""
)

// Opposite returns the other side. ColorUnknown stays unknown.
func (c Color) Opposite() Color {
	switch c {
	case ColorWhite:
		return ColorBlack
	case ColorBlack:
		return ColorWhite
	default:
		return ColorUnknown
	}
}

// Game status codes that matter to the analyses. Any other code is a regular
// finished game.
const (
	StatusDraw      = "draw"
	StatusTimeout   = "timeout"
	StatusOutOfTime = "outoftime"
	StatusMate      = "mate"
	StatusResign    = "resign"
)

// Game sources.
const (
	SourceLichess  = "lichess"
	SourceCanned   = "canned"
	SourceChessCom = "chesscom"
)

// Game is one exported game record. Optional sub-records are pointers so that an
// absent field can be told apart from an empty one.
type Game struct {
	ID        string       `json:"id,omitempty"`
	Source    string       `json:"source,omitempty"`
	Speed     string       `json:"speed,omitempty"`
	CreatedAt Timestamp    `json:"createdAt,omitempty"`
	Status    string       `json:"status"`
	Players   *Players     `json:"players,omitempty"`
	Winner    Color        `json:"winner,omitempty"`
	Opening   *Opening     `json:"opening,omitempty"`
	Analysis  []Evaluation `json:"analysis"`
}

type Players struct {
	White *PlayerSlot `json:"white,omitempty"`
	Black *PlayerSlot `json:"black,omitempty"`
}

type PlayerSlot struct {
	User    *User `json:"user,omitempty"`
	Rating  int   `json:"rating,omitempty"`
	AILevel int   `json:"aiLevel,omitempty"`
}

type User struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Opening struct {
	ECO  string `json:"eco,omitempty"`
	Name string `json:"name"`
	Ply  int    `json:"ply,omitempty"`
}

// Evaluation is one per-ply engine evaluation in centipawns, positive favoring
// white. Forced mates carry Mate instead of Eval.
type Evaluation struct {
	Eval *int `json:"eval,omitempty"`
	Mate *int `json:"mate,omitempty"`
}

// HasOpening reports whether the record carries opening data.
func (g *Game) HasOpening() bool {
	return g.Opening != nil
}

// HasAnalysis reports whether the record carries an evaluation sequence. A present
// but empty sequence still counts as present.
func (g *Game) HasAnalysis() bool {
	return g.Analysis != nil
}

// PlayedAt converts the export timestamp. Zero when unknown.
func (g *Game) PlayedAt() time.Time {
	return g.CreatedAt.Time()
}

// Timestamp is a point in time in Unix milliseconds. It decodes from a JSON
// number or from an ISO 8601 string, which is how older archives stored it, and
// always encodes as a number.
type Timestamp int64

var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07:00",
	"2006-01-02 15:04:05.999999",
}

// NewTimestamp converts t; the zero time maps to zero.
func NewTimestamp(t time.Time) Timestamp {
	if t.IsZero() {
		return 0
	}
	return Timestamp(t.UnixMilli())
}

// Time returns the UTC time, or the zero time for a zero timestamp.
func (ts Timestamp) Time() time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(ts)).UTC()
}

func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*ts = 0
		return nil
	}
	if data[0] != '"' {
		n, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return errors.Wrapf(err, "timestamp %s", data)
		}
		*ts = Timestamp(int64(n))
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return errors.Wrapf(err, "timestamp %s", data)
	}
	if s == "" {
		*ts = 0
		return nil
	}
	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*ts = NewTimestamp(t)
			return nil
		}
	}
	return errors.Newf("timestamp %q: unrecognized format", s)
}

func (ts Timestamp) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, int64(ts), 10), nil
}

// ErrMissingField is wrapped by every accessor failure below.
var ErrMissingField = errors.New("missing field")

// OpeningName returns opening.name. It fails when the opening is absent or unnamed.
func (g *Game) OpeningName() (string, error) {
	if g.Opening == nil {
		return "", errors.Wrap(ErrMissingField, "opening")
	}
	if g.Opening.Name == "" {
		return "", errors.Wrap(ErrMissingField, "opening.name")
	}
	return g.Opening.Name, nil
}

// PlayerName returns players.<color>.user.name. A slot without a user (anonymous
// or computer opponent) yields an empty name, not an error.
func (g *Game) PlayerName(c Color) (string, error) {
	if g.Players == nil {
		return "", errors.Wrap(ErrMissingField, "players")
	}
	var slot *PlayerSlot
	switch c {
	case ColorWhite:
		slot = g.Players.White
	case ColorBlack:
		slot = g.Players.Black
	default:
		return "", errors.Wrapf(ErrMissingField, "players.%q", string(c))
	}
	if slot == nil {
		return "", errors.Wrapf(ErrMissingField, "players.%s", c)
	}
	if slot.User == nil {
		return "", nil
	}
	return slot.User.Name, nil
}

// NewEval is a small helper for building evaluation sequences.
func NewEval(cp int) Evaluation {
	return Evaluation{Eval: &cp}
}

// NewMate builds a forced-mate entry; positive distances favor white.
func NewMate(n int) Evaluation {
	return Evaluation{Mate: &n}
}
