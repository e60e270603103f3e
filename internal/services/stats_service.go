package services

import (
	"context"
	"strings"

	cerrors "github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/analysis"
	"github.com/vytor/openingstats/internal/errors"
	"github.com/vytor/openingstats/internal/logger"
	"github.com/vytor/openingstats/internal/report"
)

// StatsQuery selects the games and the policy of one analysis run.
type StatsQuery struct {
	Player string
	// Source keeps only games from one source; empty keeps all.
	Source               string
	Strict               bool
	RejectUnknownSubject bool
}

func (q StatsQuery) options() analysis.Options {
	return analysis.Options{Strict: q.Strict, RejectUnknownSubject: q.RejectUnknownSubject}
}

// StatsService runs the per-opening analyses
type StatsService interface {
	OpeningResults(ctx context.Context, q StatsQuery) (*report.Report[analysis.ResultOutcome], error)
	OpeningEqualized(ctx context.Context, q StatsQuery) (*report.Report[analysis.PhaseOutcome], error)
}

// StatsOptions tunes aggregation.
type StatsOptions struct {
	// Shards splits a pass across goroutines; 0 or 1 runs a single pass.
	Shards int
	Phase  analysis.PhaseConfig
}

type statsService struct {
	loader  GameLoader
	results analysis.ResultClassifier
	phase   analysis.PhaseClassifier
	shards  int
}

// NewStatsService creates a new StatsService
func NewStatsService(loader GameLoader, opts StatsOptions) StatsService {
	if opts.Phase == (analysis.PhaseConfig{}) {
		opts.Phase = analysis.DefaultPhaseConfig()
	}
	return &statsService{
		loader:  loader,
		results: analysis.NewResultClassifier(),
		phase:   analysis.NewPhaseClassifier(opts.Phase),
		shards:  opts.Shards,
	}
}

func (s *statsService) OpeningResults(ctx context.Context, q StatsQuery) (*report.Report[analysis.ResultOutcome], error) {
	return run[analysis.ResultOutcome](ctx, s, q, s.results)
}

func (s *statsService) OpeningEqualized(ctx context.Context, q StatsQuery) (*report.Report[analysis.PhaseOutcome], error) {
	return run[analysis.PhaseOutcome](ctx, s, q, s.phase)
}

func run[O analysis.Outcome](ctx context.Context, s *statsService, q StatsQuery, c analysis.Classifier[O]) (*report.Report[O], error) {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"analysis": c.Name(),
		"player":   q.Player,
	})

	if strings.TrimSpace(q.Player) == "" {
		return nil, errors.NewValidationError("player", "cannot be empty")
	}

	games, err := s.loader.Load(ctx, q)
	if err != nil {
		return nil, err
	}
	log.Debug("aggregating %d games in %d shard(s)", len(games), max(s.shards, 1))

	var (
		table *analysis.Table[O]
		sum   analysis.Summary
	)
	if s.shards > 1 {
		table, sum, err = analysis.AggregateSharded(ctx, games, q.Player, c, s.shards, q.options())
	} else {
		table, sum, err = analysis.Aggregate(games, q.Player, c, q.options())
	}
	if err != nil {
		var rerr *analysis.RecordError
		if cerrors.As(err, &rerr) {
			log.Warn("strict aggregation stopped: %v", rerr)
			return nil, errors.NewMalformedRecordError(rerr)
		}
		log.Error("aggregation failed: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if len(sum.Rejected) > 0 {
		log.Warn("%d records rejected", len(sum.Rejected))
	}
	if sum.UnknownSubject > 0 {
		log.Warn("%d counted games did not involve %s", sum.UnknownSubject, q.Player)
	}
	log.Info("aggregated %d openings from %d records (%d counted, %d excluded)",
		table.Len(), sum.Records, sum.Counted, sum.Excluded)

	r := report.New(c.Name(), q.Player, table, sum)
	return &r, nil
}
