package analysis

import (
	"github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/models"
)

// ResultClassifier counts wins, losses and draws per opening from the declared
// game result.
type ResultClassifier struct{}

func NewResultClassifier() ResultClassifier { return ResultClassifier{} }

func (ResultClassifier) Name() string { return "openings-win-loss-rate" }

func (ResultClassifier) Eligible(g *models.Game) bool { return EligibleForResults(g) }

// Classify maps a draw to ResultDraw and otherwise compares the winner's name to
// the subject. A subject who played neither color ends up as a loss.
func (ResultClassifier) Classify(g *models.Game, subject string) (Classification[ResultOutcome], error) {
	var out Classification[ResultOutcome]

	opening, err := g.OpeningName()
	if err != nil {
		return out, malformed(g, err)
	}
	out.Opening = opening
	out.SubjectColor = subjectColor(g, subject)

	if g.Status == models.StatusDraw {
		out.Outcome = ResultDraw
		return out, nil
	}

	if g.Winner != models.ColorWhite && g.Winner != models.ColorBlack {
		return out, malformed(g, errors.Newf("status %q has no winner (got %q)", g.Status, string(g.Winner)))
	}
	winner, err := g.PlayerName(g.Winner)
	if err != nil {
		return out, malformed(g, err)
	}

	if winner != "" && winner == subject {
		out.Outcome = ResultWin
	} else {
		out.Outcome = ResultLoss
	}
	return out, nil
}
