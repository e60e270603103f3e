package analysis_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/openingstats/internal/analysis"
	"github.com/vytor/openingstats/internal/models"
	"go.uber.org/goleak"
)

const subject = "dgs3"

func TestAggregate_ResultScenario(t *testing.T) {
	games := []models.Game{decisive("g1", "Sicilian Defense", "dgs3", "opp", models.ColorWhite)}

	tbl, sum, err := analysis.Aggregate(games, subject, analysis.NewResultClassifier(), analysis.Options{})
	require.NoError(t, err)

	want := map[string]map[analysis.ResultOutcome]int{
		"Sicilian Defense": {analysis.ResultWin: 1, analysis.ResultLoss: 0, analysis.ResultDraw: 0},
	}
	if diff := cmp.Diff(want, tbl.Map()); diff != "" {
		t.Fatalf("unexpected table (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1, sum.Counted)
}

func TestAggregate_TimeoutOnlyInputIsEmpty(t *testing.T) {
	games := []models.Game{{
		ID:      "t1",
		Status:  models.StatusOutOfTime,
		Players: players("dgs3", "opp"),
		Opening: &models.Opening{Name: "Sicilian Defense"},
	}}

	tbl, sum, err := analysis.Aggregate(games, subject, analysis.NewResultClassifier(), analysis.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, 1, sum.Excluded)
}

func TestAggregate_PhaseScenarios(t *testing.T) {
	games := []models.Game{
		analyzed("long", "Italian Game", "opp", "dgs3", evals(20, 15, 150)),
		analyzed("short", "Caro-Kann Defense", "dgs3", "opp", evals(5, 4, -50)),
	}

	tbl, _, err := analysis.Aggregate(games, subject, analysis.NewPhaseClassifier(analysis.DefaultPhaseConfig()), analysis.Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Count("Italian Game", analysis.PhaseLoss))
	assert.Equal(t, 1, tbl.Count("Caro-Kann Defense", analysis.PhaseEqual))
}

func TestAggregate_NoOpeningExcludedFromBoth(t *testing.T) {
	g := analyzed("x", "ignored", "dgs3", "opp", evals(20, 15, 500))
	g.Opening = nil
	games := []models.Game{g}

	rt, rs, err := analysis.Aggregate(games, subject, analysis.NewResultClassifier(), analysis.Options{})
	require.NoError(t, err)
	pt, ps, err := analysis.Aggregate(games, subject, analysis.NewPhaseClassifier(analysis.DefaultPhaseConfig()), analysis.Options{})
	require.NoError(t, err)

	assert.Equal(t, 0, rt.Len())
	assert.Equal(t, 0, pt.Len())
	assert.Equal(t, 1, rs.Excluded)
	assert.Equal(t, 1, ps.Excluded)
}

func TestAggregate_EmptyInput(t *testing.T) {
	tbl, sum, err := analysis.Aggregate(nil, subject, analysis.NewResultClassifier(), analysis.Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
	assert.Equal(t, analysis.Summary{}, sum)
}

func TestAggregate_SampleTables(t *testing.T) {
	games := sampleGames()

	results, rsum, err := analysis.Aggregate(games, subject, analysis.NewResultClassifier(), analysis.Options{})
	require.NoError(t, err)
	wantResults := []analysis.Row[analysis.ResultOutcome]{
		{Opening: "Sicilian Defense", Counts: analysis.Counts{1, 2, 0}},
		{Opening: "French Defense", Counts: analysis.Counts{0, 0, 1}},
		{Opening: "Italian Game", Counts: analysis.Counts{1, 1, 0}},
		{Opening: "Caro-Kann Defense", Counts: analysis.Counts{0, 1, 0}},
	}
	if diff := cmp.Diff(wantResults, results.Rows()); diff != "" {
		t.Fatalf("results table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 7, rsum.Counted)
	assert.Equal(t, 3, rsum.Excluded)

	phase, psum, err := analysis.Aggregate(games, subject, analysis.NewPhaseClassifier(analysis.DefaultPhaseConfig()), analysis.Options{})
	require.NoError(t, err)
	wantPhase := []analysis.Row[analysis.PhaseOutcome]{
		{Opening: "Italian Game", Counts: analysis.Counts{1, 1, 0}},
		{Opening: "Caro-Kann Defense", Counts: analysis.Counts{0, 0, 1}},
		{Opening: "Sicilian Defense", Counts: analysis.Counts{1, 0, 1}},
	}
	if diff := cmp.Diff(wantPhase, phase.Rows()); diff != "" {
		t.Fatalf("phase table mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 5, psum.Counted)
	assert.Equal(t, 5, psum.Excluded)
}

func TestAggregate_Properties(t *testing.T) {
	games := append(sampleGames(), sampleGames()...)
	c := analysis.NewResultClassifier()

	base, sum, err := analysis.Aggregate(games, subject, c, analysis.Options{})
	require.NoError(t, err)

	t.Run("every row has every category", func(t *testing.T) {
		for opening, row := range base.Map() {
			assert.Len(t, row, len(analysis.ResultOutcomes()), opening)
		}
	})

	t.Run("total equals eligible records", func(t *testing.T) {
		eligible := 0
		for i := range games {
			if analysis.EligibleForResults(&games[i]) {
				eligible++
			}
		}
		assert.Equal(t, eligible, base.Total())
		assert.Equal(t, eligible, sum.Counted)
		assert.Equal(t, len(games), sum.Records)
	})

	t.Run("order independent", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for i := 0; i < 10; i++ {
			shuffled := make([]models.Game, len(games))
			copy(shuffled, games)
			rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })

			got, _, err := analysis.Aggregate(shuffled, subject, c, analysis.Options{})
			require.NoError(t, err)
			if diff := cmp.Diff(base.Map(), got.Map()); diff != "" {
				t.Fatalf("shuffle changed the table (-want +got):\n%s", diff)
			}
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		again, _, err := analysis.Aggregate(games, subject, c, analysis.Options{})
		require.NoError(t, err)
		assert.Equal(t, base.Rows(), again.Rows())
	})

	t.Run("input not mutated", func(t *testing.T) {
		before := sampleGames()
		_, _, err := analysis.Aggregate(before, subject, c, analysis.Options{})
		require.NoError(t, err)
		if diff := cmp.Diff(sampleGames(), before); diff != "" {
			t.Fatalf("input changed (-want +got):\n%s", diff)
		}
	})
}

func TestAggregate_RejectedRecords(t *testing.T) {
	games := []models.Game{
		decisive("ok", "Sicilian Defense", "dgs3", "opp", models.ColorWhite),
		{ID: "bad", Status: models.StatusResign, Winner: models.ColorWhite, Opening: &models.Opening{Name: "X"}},
		decisive("stranger", "Sicilian Defense", "a", "b", models.ColorWhite),
	}
	c := analysis.NewResultClassifier()

	t.Run("lenient pass reports and skips", func(t *testing.T) {
		tbl, sum, err := analysis.Aggregate(games, subject, c, analysis.Options{})
		require.NoError(t, err)
		assert.Equal(t, 2, tbl.Total())
		assert.Equal(t, 1, sum.UnknownSubject)
		require.Len(t, sum.Rejected, 1)
		assert.Equal(t, 1, sum.Rejected[0].Index)
		assert.Equal(t, "bad", sum.Rejected[0].GameID)
		assert.True(t, errors.Is(&sum.Rejected[0], analysis.ErrMalformedRecord))
		assert.Equal(t, sum.Records, sum.Counted+sum.Excluded+len(sum.Rejected))
	})

	t.Run("strict pass fails", func(t *testing.T) {
		tbl, _, err := analysis.Aggregate(games, subject, c, analysis.Options{Strict: true})
		require.Error(t, err)
		assert.Nil(t, tbl)
		var rerr *analysis.RecordError
		require.True(t, errors.As(err, &rerr))
		assert.Equal(t, "bad", rerr.GameID)
	})

	t.Run("unknown subject rejected on request", func(t *testing.T) {
		tbl, sum, err := analysis.Aggregate(games, subject, c, analysis.Options{RejectUnknownSubject: true})
		require.NoError(t, err)
		assert.Equal(t, 1, tbl.Total())
		require.Len(t, sum.Rejected, 2)
		assert.True(t, errors.Is(&sum.Rejected[1], analysis.ErrUnknownSubject))
	})
}

func TestAggregateSharded_MatchesSinglePass(t *testing.T) {
	defer goleak.VerifyNone(t)

	var games []models.Game
	for i := 0; i < 5; i++ {
		games = append(games, sampleGames()...)
	}
	phase := analysis.NewPhaseClassifier(analysis.DefaultPhaseConfig())
	want, wantSum, err := analysis.Aggregate(games, subject, phase, analysis.Options{})
	require.NoError(t, err)

	for _, shards := range []int{0, 1, 2, 3, 7, len(games), len(games) + 5} {
		got, gotSum, err := analysis.AggregateSharded(context.Background(), games, subject, phase, shards, analysis.Options{})
		require.NoError(t, err, "shards=%d", shards)
		assert.Equal(t, want.Rows(), got.Rows(), "shards=%d", shards)
		assert.Equal(t, wantSum, gotSum, "shards=%d", shards)
	}
}

func TestAggregateSharded_StrictReportsLowestIndex(t *testing.T) {
	defer goleak.VerifyNone(t)

	games := make([]models.Game, 0, 40)
	for i := 0; i < 40; i++ {
		games = append(games, decisive("ok", "X", "dgs3", "opp", models.ColorWhite))
	}
	games[13] = models.Game{ID: "first", Status: models.StatusMate, Opening: &models.Opening{Name: "X"}}
	games[37] = models.Game{ID: "second", Status: models.StatusMate, Opening: &models.Opening{Name: "X"}}

	_, _, err := analysis.AggregateSharded(context.Background(), games, subject, analysis.NewResultClassifier(), 4, analysis.Options{Strict: true})
	var rerr *analysis.RecordError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "first", rerr.GameID)
	assert.Equal(t, 13, rerr.Index)
}

func TestAggregateSharded_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := analysis.AggregateSharded(ctx, sampleGames(), subject, analysis.NewResultClassifier(), 2, analysis.Options{})
	assert.ErrorIs(t, err, context.Canceled)
}
