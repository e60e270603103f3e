package pipeline

import (
	"context"
	"path"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/vytor/openingstats/internal/logger"
	"golang.org/x/sync/errgroup"
)

// StepFunc executes one step kind with the node's arguments.
type StepFunc func(ctx context.Context, args map[string]string) error

// Result records one executed step.
type Result struct {
	Path     string
	Step     string
	Duration time.Duration
	Err      error
}

// Runner executes definitions against a set of step kinds.
type Runner struct {
	steps map[string]StepFunc
	// MaxParallel bounds concurrently running steps in a parallel group; 0 means no bound.
	MaxParallel int
}

// execution collects the results of one Run.
type execution struct {
	*Runner
	mu      sync.Mutex
	results []Result
}

func NewRunner(steps map[string]StepFunc) *Runner {
	return &Runner{steps: steps}
}

// Check reports step kinds the definition uses that the runner cannot execute.
func (r *Runner) Check(def *Definition) error {
	for _, s := range def.Steps() {
		if _, ok := r.steps[s]; !ok {
			return errors.Wrapf(ErrInvalidDefinition, "unknown step %q", s)
		}
	}
	return nil
}

// Run executes def. Serial groups stop at their first failing child; parallel
// groups run every child and report the first failure. The returned results
// cover every step that ran.
func (r *Runner) Run(ctx context.Context, def *Definition) ([]Result, error) {
	if err := r.Check(def); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx).WithPrefix("pipeline").WithField("pipeline", def.Name)
	log.Info("running pipeline")
	start := time.Now()

	x := &execution{Runner: r}
	err := x.run(logger.NewContext(ctx, log), &def.Root, "")

	x.mu.Lock()
	results := x.results
	x.mu.Unlock()

	if err != nil {
		log.Error("pipeline failed after %v: %v", time.Since(start), err)
		return results, err
	}
	log.Info("pipeline finished in %v (%d steps)", time.Since(start), len(results))
	return results, nil
}

func (x *execution) run(ctx context.Context, n *Node, parent string) error {
	p := path.Join(parent, n.Name)
	if err := ctx.Err(); err != nil {
		return err
	}

	switch {
	case n.Step != "":
		return x.runStep(ctx, n, p)
	case n.Serial != nil:
		for i := range n.Serial {
			if err := x.run(ctx, &n.Serial[i], p); err != nil {
				return err
			}
		}
		return nil
	default:
		var g errgroup.Group
		if x.MaxParallel > 0 {
			g.SetLimit(x.MaxParallel)
		}
		for i := range n.Parallel {
			child := &n.Parallel[i]
			g.Go(func() error { return x.run(ctx, child, p) })
		}
		return g.Wait()
	}
}

func (x *execution) runStep(ctx context.Context, n *Node, p string) error {
	log := logger.FromContext(ctx).WithField("step", p)
	log.Info("step started")
	start := time.Now()

	err := x.steps[n.Step](logger.NewContext(ctx, log), n.Args)
	res := Result{Path: p, Step: n.Step, Duration: time.Since(start), Err: err}

	x.mu.Lock()
	x.results = append(x.results, res)
	x.mu.Unlock()

	if err != nil {
		log.Error("step failed after %v: %v", res.Duration, err)
		return errors.Wrapf(err, "step %s", p)
	}
	log.Info("step done in %v", res.Duration)
	return nil
}
