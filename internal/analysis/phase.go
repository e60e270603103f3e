package analysis

import (
	"github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/models"
)

const (
	// OpeningCutoffPly is the evaluation entry (1-based) taken as the end of the
	// opening: both sides have made eight moves.
	OpeningCutoffPly = 16
	// EqualThreshold bounds the neutral band in centipawns, inclusive.
	EqualThreshold = 100
	// MateScore stands in for a forced mate found by the engine.
	MateScore = 100000
)

// PhaseConfig carries the opening-phase constants into the classifier.
type PhaseConfig struct {
	CutoffPly int
	Threshold int
}

func DefaultPhaseConfig() PhaseConfig {
	return PhaseConfig{CutoffPly: OpeningCutoffPly, Threshold: EqualThreshold}
}

// PhaseClassifier decides whether the subject came out of the opening ahead,
// behind or level, based on the engine evaluation at the cutoff.
type PhaseClassifier struct {
	config PhaseConfig
}

// NewPhaseClassifier falls back to the defaults for a non-positive cutoff or a
// negative threshold.
func NewPhaseClassifier(cfg PhaseConfig) PhaseClassifier {
	def := DefaultPhaseConfig()
	if cfg.CutoffPly <= 0 {
		cfg.CutoffPly = def.CutoffPly
	}
	if cfg.Threshold < 0 {
		cfg.Threshold = def.Threshold
	}
	return PhaseClassifier{config: cfg}
}

func (c PhaseClassifier) Config() PhaseConfig { return c.config }

func (PhaseClassifier) Name() string { return "opening-equalized" }

func (PhaseClassifier) Eligible(g *models.Game) bool { return EligibleForPhase(g) }

// OpeningEval returns the evaluation at the cutoff entry, or the last entry when
// the game ended earlier.
func OpeningEval(analysis []models.Evaluation, cutoffPly int) (int, error) {
	if len(analysis) == 0 {
		return 0, errors.Wrap(models.ErrMissingField, "analysis is empty")
	}
	idx := cutoffPly - 1
	if len(analysis) < cutoffPly {
		idx = len(analysis) - 1
	}
	return evalScore(analysis[idx], idx)
}

func evalScore(e models.Evaluation, idx int) (int, error) {
	if e.Eval != nil {
		return *e.Eval, nil
	}
	if e.Mate != nil {
		switch {
		case *e.Mate > 0:
			return MateScore, nil
		case *e.Mate < 0:
			return -MateScore, nil
		}
		return 0, errors.Newf("analysis[%d] has a zero mate distance", idx)
	}
	return 0, errors.Wrapf(models.ErrMissingField, "analysis[%d].eval", idx)
}

// Classify compares the cutoff evaluation with the neutral band. The subject is
// taken as black whenever they are not the white player.
func (c PhaseClassifier) Classify(g *models.Game, subject string) (Classification[PhaseOutcome], error) {
	var out Classification[PhaseOutcome]

	opening, err := g.OpeningName()
	if err != nil {
		return out, malformed(g, err)
	}
	out.Opening = opening

	eval, err := OpeningEval(g.Analysis, c.config.CutoffPly)
	if err != nil {
		return out, malformed(g, err)
	}

	white, err := g.PlayerName(models.ColorWhite)
	if err != nil {
		return out, malformed(g, err)
	}
	color := models.ColorBlack
	if subject != "" && white == subject {
		color = models.ColorWhite
	}
	out.SubjectColor = subjectColor(g, subject)

	var edge models.Color
	switch {
	case eval > c.config.Threshold:
		edge = models.ColorWhite
	case eval < -c.config.Threshold:
		edge = models.ColorBlack
	default:
		out.Outcome = PhaseEqual
		return out, nil
	}

	if edge == color {
		out.Outcome = PhaseWin
	} else {
		out.Outcome = PhaseLoss
	}
	return out, nil
}
