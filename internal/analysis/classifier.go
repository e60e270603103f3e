package analysis

import (
	"github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/models"
)

var (
	// ErrMalformedRecord marks a game that lacks a field its analysis needs.
	ErrMalformedRecord = errors.New("malformed game record")
	// ErrUnknownSubject marks a game in which the subject played neither color.
	ErrUnknownSubject = errors.New("subject player not found in game")
)

// Classification is the outcome of one game from the subject's point of view.
type Classification[O Outcome] struct {
	Opening string
	Outcome O
	// SubjectColor is ColorUnknown when the subject matched neither player. The
	// outcome then follows the compatibility fallback of the classifier.
	SubjectColor models.Color
}

// SubjectFound reports whether the subject was one of the two players.
func (c Classification[O]) SubjectFound() bool {
	return c.SubjectColor != models.ColorUnknown
}

// Classifier turns eligible games into categorized outcomes.
type Classifier[O Outcome] interface {
	Name() string
	Eligible(g *models.Game) bool
	Classify(g *models.Game, subject string) (Classification[O], error)
}

func malformed(g *models.Game, err error) error {
	id := g.ID
	if id == "" {
		id = "<no id>"
	}
	return errors.Mark(errors.Wrapf(err, "game %s", id), ErrMalformedRecord)
}

// subjectColor finds the subject among the players without failing on missing
// slots. An empty subject never matches.
func subjectColor(g *models.Game, subject string) models.Color {
	if subject == "" {
		return models.ColorUnknown
	}
	if name, err := g.PlayerName(models.ColorWhite); err == nil && name == subject {
		return models.ColorWhite
	}
	if name, err := g.PlayerName(models.ColorBlack); err == nil && name == subject {
		return models.ColorBlack
	}
	return models.ColorUnknown
}
