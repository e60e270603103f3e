package analysis_test

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/openingstats/internal/analysis"
	"github.com/vytor/openingstats/internal/models"
)

func TestEligibility(t *testing.T) {
	tests := []struct {
		name    string
		game    models.Game
		results bool
		phase   bool
	}{
		{
			name:    "decisive game with opening, no analysis",
			game:    decisive("a", "Sicilian Defense", "dgs3", "x", models.ColorWhite),
			results: true,
			phase:   false,
		},
		{
			name:    "no opening data is excluded from both",
			game:    models.Game{Status: models.StatusResign, Players: players("dgs3", "x"), Winner: models.ColorWhite, Analysis: evals(20, 0, 0)},
			results: false,
			phase:   false,
		},
		{
			name:    "timeout is excluded from results only",
			game:    models.Game{Status: models.StatusTimeout, Opening: &models.Opening{Name: "X"}, Analysis: evals(3, 0, 0)},
			results: false,
			phase:   true,
		},
		{
			name:    "outoftime is excluded from results",
			game:    models.Game{Status: models.StatusOutOfTime, Opening: &models.Opening{Name: "X"}},
			results: false,
			phase:   false,
		},
		{
			name:    "present but empty analysis still counts as present",
			game:    models.Game{Status: models.StatusDraw, Opening: &models.Opening{Name: "X"}, Analysis: []models.Evaluation{}},
			results: true,
			phase:   true,
		},
		{
			name:    "unrecognized status is a regular result",
			game:    models.Game{Status: "variantEnd", Opening: &models.Opening{Name: "X"}},
			results: true,
			phase:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.game
			assert.Equal(t, tt.results, analysis.EligibleForResults(&g))
			assert.Equal(t, tt.phase, analysis.EligibleForPhase(&g))
		})
	}

	assert.False(t, analysis.EligibleForResults(nil))
	assert.False(t, analysis.EligibleForPhase(nil))
}

func TestResultClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		game     models.Game
		subject  string
		expected analysis.ResultOutcome
		color    models.Color
	}{
		{
			name:     "subject wins as white",
			game:     decisive("a", "Sicilian Defense", "dgs3", "x", models.ColorWhite),
			subject:  "dgs3",
			expected: analysis.ResultWin,
			color:    models.ColorWhite,
		},
		{
			name:     "subject wins as black",
			game:     decisive("a", "Sicilian Defense", "x", "dgs3", models.ColorBlack),
			subject:  "dgs3",
			expected: analysis.ResultWin,
			color:    models.ColorBlack,
		},
		{
			name:     "subject loses as black",
			game:     decisive("a", "Sicilian Defense", "x", "dgs3", models.ColorWhite),
			subject:  "dgs3",
			expected: analysis.ResultLoss,
			color:    models.ColorBlack,
		},
		{
			name:     "draw ignores the winner field",
			game:     drawn("a", "French Defense", "dgs3", "x"),
			subject:  "dgs3",
			expected: analysis.ResultDraw,
			color:    models.ColorWhite,
		},
		{
			name:     "subject absent falls back to loss",
			game:     decisive("a", "Sicilian Defense", "x", "y", models.ColorWhite),
			subject:  "dgs3",
			expected: analysis.ResultLoss,
			color:    models.ColorUnknown,
		},
		{
			name: "anonymous winner never matches an empty subject",
			game: models.Game{
				Status:  models.StatusMate,
				Players: &models.Players{White: &models.PlayerSlot{AILevel: 3}, Black: slot("x")},
				Winner:  models.ColorWhite,
				Opening: &models.Opening{Name: "Bird Opening"},
			},
			subject:  "",
			expected: analysis.ResultLoss,
			color:    models.ColorUnknown,
		},
	}

	c := analysis.NewResultClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.game
			got, err := c.Classify(&g, tt.subject)
			require.NoError(t, err)
			assert.Equal(t, g.Opening.Name, got.Opening)
			assert.Equal(t, tt.expected, got.Outcome)
			assert.Equal(t, tt.color, got.SubjectColor)
			assert.Equal(t, tt.color != models.ColorUnknown, got.SubjectFound())
		})
	}
}

func TestResultClassifier_Malformed(t *testing.T) {
	tests := []struct {
		name string
		game models.Game
	}{
		{
			name: "players missing entirely",
			game: models.Game{ID: "m1", Status: models.StatusResign, Winner: models.ColorWhite, Opening: &models.Opening{Name: "X"}},
		},
		{
			name: "decisive game without a winner",
			game: models.Game{ID: "m2", Status: "stalemate", Players: players("a", "b"), Opening: &models.Opening{Name: "X"}},
		},
		{
			name: "winner slot missing",
			game: models.Game{ID: "m3", Status: models.StatusMate, Players: &models.Players{White: slot("a")}, Winner: models.ColorBlack, Opening: &models.Opening{Name: "X"}},
		},
		{
			name: "opening without a name",
			game: models.Game{ID: "m4", Status: models.StatusDraw, Players: players("a", "b"), Opening: &models.Opening{ECO: "B20"}},
		},
	}

	c := analysis.NewResultClassifier()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.game
			_, err := c.Classify(&g, "a")
			require.Error(t, err)
			assert.True(t, errors.Is(err, analysis.ErrMalformedRecord))
			assert.Contains(t, err.Error(), g.ID)
		})
	}
}

func TestPhaseClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		analysis []models.Evaluation
		white    string
		black    string
		expected analysis.PhaseOutcome
	}{
		{
			name:     "cutoff entry favors white, subject black",
			analysis: evals(20, 15, 150),
			white:    "x",
			black:    "dgs3",
			expected: analysis.PhaseLoss,
		},
		{
			name:     "cutoff entry favors white, subject white",
			analysis: evals(20, 15, 150),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseWin,
		},
		{
			name:     "cutoff entry favors black, subject black",
			analysis: evals(16, 15, -101),
			white:    "x",
			black:    "dgs3",
			expected: analysis.PhaseWin,
		},
		{
			name:     "cutoff entry favors black, subject white",
			analysis: evals(16, 15, -101),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseLoss,
		},
		{
			name:     "short game uses the last entry",
			analysis: evals(5, 4, -50),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseEqual,
		},
		{
			name:     "short game last entry decisive",
			analysis: evals(5, 4, 400),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseWin,
		},
		{
			name:     "entries after the cutoff are ignored",
			analysis: evals(40, 30, 900),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseEqual,
		},
		{
			name:     "exactly 100 is equal",
			analysis: evals(16, 15, 100),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseEqual,
		},
		{
			name:     "exactly -100 is equal",
			analysis: evals(16, 15, -100),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseEqual,
		},
		{
			name:     "101 is a white edge",
			analysis: evals(16, 15, 101),
			white:    "x",
			black:    "dgs3",
			expected: analysis.PhaseLoss,
		},
		{
			name:     "unknown subject is treated as black",
			analysis: evals(16, 15, -500),
			white:    "x",
			black:    "y",
			expected: analysis.PhaseWin,
		},
		{
			name:     "mate for white counts as a white edge",
			analysis: append(evals(15, 0, 0), models.NewMate(3)),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseWin,
		},
		{
			name:     "mate for black counts as a black edge",
			analysis: append(evals(15, 0, 0), models.NewMate(-2)),
			white:    "dgs3",
			black:    "x",
			expected: analysis.PhaseLoss,
		},
	}

	c := analysis.NewPhaseClassifier(analysis.DefaultPhaseConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := analyzed("p", "Italian Game", tt.white, tt.black, tt.analysis)
			got, err := c.Classify(&g, "dgs3")
			require.NoError(t, err)
			assert.Equal(t, "Italian Game", got.Opening)
			assert.Equal(t, tt.expected, got.Outcome)
		})
	}
}

func TestPhaseClassifier_SubjectColor(t *testing.T) {
	c := analysis.NewPhaseClassifier(analysis.DefaultPhaseConfig())

	g := analyzed("p", "Italian Game", "x", "y", evals(16, 15, 0))
	got, err := c.Classify(&g, "dgs3")
	require.NoError(t, err)
	assert.False(t, got.SubjectFound())

	g = analyzed("p", "Italian Game", "x", "dgs3", evals(16, 15, 0))
	got, err = c.Classify(&g, "dgs3")
	require.NoError(t, err)
	assert.Equal(t, models.ColorBlack, got.SubjectColor)
}

func TestPhaseClassifier_CustomConfig(t *testing.T) {
	c := analysis.NewPhaseClassifier(analysis.PhaseConfig{CutoffPly: 2, Threshold: 10})
	g := analyzed("p", "Italian Game", "dgs3", "x", []models.Evaluation{
		models.NewEval(0), models.NewEval(11), models.NewEval(-500),
	})
	got, err := c.Classify(&g, "dgs3")
	require.NoError(t, err)
	assert.Equal(t, analysis.PhaseWin, got.Outcome)

	def := analysis.NewPhaseClassifier(analysis.PhaseConfig{CutoffPly: 0, Threshold: -1})
	assert.Equal(t, analysis.DefaultPhaseConfig(), def.Config())
}

func TestPhaseClassifier_Malformed(t *testing.T) {
	tests := []struct {
		name string
		game models.Game
	}{
		{
			name: "empty analysis",
			game: analyzed("e1", "X", "a", "b", []models.Evaluation{}),
		},
		{
			name: "cutoff entry without eval or mate",
			game: analyzed("e2", "X", "a", "b", append(evals(15, 0, 0), models.Evaluation{})),
		},
		{
			name: "players missing",
			game: models.Game{ID: "e3", Opening: &models.Opening{Name: "X"}, Analysis: evals(3, 0, 0)},
		},
		{
			name: "zero mate distance",
			game: analyzed("e4", "X", "a", "b", []models.Evaluation{models.NewMate(0)}),
		},
	}

	c := analysis.NewPhaseClassifier(analysis.DefaultPhaseConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.game
			_, err := c.Classify(&g, "a")
			require.Error(t, err)
			assert.True(t, errors.Is(err, analysis.ErrMalformedRecord))
		})
	}
}

func TestOpeningEval(t *testing.T) {
	v, err := analysis.OpeningEval(evals(20, 15, 42), analysis.OpeningCutoffPly)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = analysis.OpeningEval(evals(16, 15, -7), analysis.OpeningCutoffPly)
	require.NoError(t, err)
	assert.Equal(t, -7, v)

	v, err = analysis.OpeningEval(evals(15, 14, 33), analysis.OpeningCutoffPly)
	require.NoError(t, err)
	assert.Equal(t, 33, v)

	_, err = analysis.OpeningEval(nil, analysis.OpeningCutoffPly)
	assert.True(t, errors.Is(err, models.ErrMissingField))
}
