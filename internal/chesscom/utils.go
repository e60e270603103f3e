package chesscom

import (
	"strings"

	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/models"
	"github.com/vytor/openingstats/internal/pgn"
)

// StatusVariantEnd is used for chess.com variant losses that have no lichess
// equivalent among the standard statuses.
const StatusVariantEnd = "variantEnd"

// NormalizeResult converts chess.com result strings to win, draw or loss.
func NormalizeResult(res string) string {
	switch strings.ToLower(res) {
	case "win":
		return "win"
	case "stalemate", "agreed", "repetition", "timevsinsufficient", "insufficient", "50move", "fiftymove", "draw":
		return "draw"
	default:
		return "loss"
	}
}

// lossStatus maps the loser's result code to the lichess status vocabulary.
func lossStatus(res string) string {
	switch strings.ToLower(res) {
	case "checkmated":
		return models.StatusMate
	case "resigned":
		return models.StatusResign
	case "timeout":
		return models.StatusOutOfTime
	case "abandoned":
		return models.StatusTimeout
	default:
		return StatusVariantEnd
	}
}

// DeriveResult turns the per-player result codes into a lichess status and
// winner color. Draws have no winner.
func DeriveResult(mg MonthlyGame) (status string, winner models.Color) {
	switch {
	case NormalizeResult(mg.White.Result) == "win":
		return lossStatus(mg.Black.Result), models.ColorWhite
	case NormalizeResult(mg.Black.Result) == "win":
		return lossStatus(mg.White.Result), models.ColorBlack
	default:
		return models.StatusDraw, models.ColorUnknown
	}
}

// ToGame converts a chess.com archive entry to a game record. The opening comes
// from the PGN Opening header, then the ECOUrl slug, then (when detect is set) the
// ECO book.
func ToGame(mg MonthlyGame, detect bool) models.Game {
	headers := pgn.ParseHeaders(mg.PGN)
	status, winner := DeriveResult(mg)

	g := models.Game{
		ID:        pgn.ExtractGameID(mg.URL),
		Source:    models.SourceChessCom,
		Speed:     mg.TimeClass,
		CreatedAt: models.Timestamp(mg.EndTime * 1000),
		Status:    status,
		Winner:    winner,
		Players: &models.Players{
			White: slot(mg.White),
			Black: slot(mg.Black),
		},
	}

	eco := headers["ECO"]
	name := headers["Opening"]
	if name == "" {
		ecoURL := headers["ECOUrl"]
		if ecoURL == "" {
			ecoURL = mg.ECO
		}
		name = pgn.OpeningFromURL(ecoURL)
	}
	if name == "" && detect && mg.PGN != "" {
		found, ok, err := pgn.DetectOpening(mg.PGN)
		if err != nil {
			logger.Default().WithPrefix("chesscom").Warn("opening detection failed for %s: %v", g.ID, err)
		} else if ok {
			name = found.Name
			if eco == "" {
				eco = found.ECO
			}
		}
	}
	if name != "" {
		g.Opening = &models.Opening{ECO: eco, Name: name}
	}
	return g
}

func slot(p Player) *models.PlayerSlot {
	s := &models.PlayerSlot{Rating: p.Rating}
	if p.Username != "" {
		s.User = &models.User{ID: strings.ToLower(p.Username), Name: p.Username}
	}
	return s
}
