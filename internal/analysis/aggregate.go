package analysis

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/models"
	"golang.org/x/sync/errgroup"
)

// Options controls how an aggregation pass treats problem records.
type Options struct {
	// Strict aborts the pass at the first record that cannot be classified.
	Strict bool
	// RejectUnknownSubject turns games the subject did not play into record
	// errors instead of counting them with the fallback outcome.
	RejectUnknownSubject bool
}

// RecordError identifies a game that was rejected during aggregation.
type RecordError struct {
	Index  int
	GameID string
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d (id=%q): %v", e.Index, e.GameID, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Summary accounts for every input record of a pass:
// Records == Counted + Excluded + len(Rejected).
type Summary struct {
	Records        int           `json:"records"`
	Counted        int           `json:"counted"`
	Excluded       int           `json:"excluded"`
	UnknownSubject int           `json:"unknown_subject"`
	Rejected       []RecordError `json:"-"`
}

// Merge adds another summary's counters and rejections.
func (s *Summary) Merge(o Summary) {
	s.Records += o.Records
	s.Counted += o.Counted
	s.Excluded += o.Excluded
	s.UnknownSubject += o.UnknownSubject
	s.Rejected = append(s.Rejected, o.Rejected...)
}

// Aggregate folds games into a fresh table. Ineligible games are skipped
// silently; games that cannot be classified are reported in the summary, or
// returned as the error in strict mode.
func Aggregate[O Outcome](games []models.Game, subject string, c Classifier[O], opts Options) (*Table[O], Summary, error) {
	return aggregateFrom(games, 0, subject, c, opts)
}

func aggregateFrom[O Outcome](games []models.Game, offset int, subject string, c Classifier[O], opts Options) (*Table[O], Summary, error) {
	table := NewTable[O]()
	var sum Summary

	reject := func(i int, g *models.Game, err error) error {
		rerr := RecordError{Index: offset + i, GameID: g.ID, Err: err}
		if opts.Strict {
			return &rerr
		}
		sum.Rejected = append(sum.Rejected, rerr)
		return nil
	}

	for i := range games {
		g := &games[i]
		sum.Records++

		if !c.Eligible(g) {
			sum.Excluded++
			continue
		}

		cl, err := c.Classify(g, subject)
		if err == nil && opts.RejectUnknownSubject && !cl.SubjectFound() {
			err = errors.Wrapf(ErrUnknownSubject, "subject %q", subject)
		}
		if err == nil {
			err = table.Add(cl.Opening, cl.Outcome)
		}
		if err != nil {
			if ferr := reject(i, g, err); ferr != nil {
				return nil, sum, ferr
			}
			continue
		}

		if !cl.SubjectFound() {
			sum.UnknownSubject++
		}
		sum.Counted++
	}
	return table, sum, nil
}

// AggregateSharded splits games into contiguous shards, aggregates them
// concurrently and merges the shard tables in order. The result matches
// Aggregate over the whole input, key order included. In strict mode the error
// reported is the one with the lowest record index.
func AggregateSharded[O Outcome](ctx context.Context, games []models.Game, subject string, c Classifier[O], shards int, opts Options) (*Table[O], Summary, error) {
	if err := ctx.Err(); err != nil {
		return nil, Summary{}, err
	}
	if shards > len(games) {
		shards = len(games)
	}
	if shards <= 1 {
		return Aggregate(games, subject, c, opts)
	}

	size := (len(games) + shards - 1) / shards
	tables := make([]*Table[O], shards)
	sums := make([]Summary, shards)
	errs := make([]error, shards)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < shards; i++ {
		lo := i * size
		if lo >= len(games) {
			break
		}
		hi := min(lo+size, len(games))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			tables[i], sums[i], errs[i] = aggregateFrom(games[lo:hi], lo, subject, c, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Summary{}, err
	}

	merged := NewTable[O]()
	var sum Summary
	for i := range tables {
		if errs[i] != nil {
			return nil, sum, errs[i]
		}
		merged.Merge(tables[i])
		sum.Merge(sums[i])
	}
	return merged, sum, nil
}
