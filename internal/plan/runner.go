package plan

import (
	"context"
	"sync/atomic"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// Outcome is the evaluation of one plan item. Exactly one of Result, Rows or
// Err is meaningful: Result for scenarios, Base and Rows for sweeps.
type Outcome struct {
	Name   string                `json:"name"`
	Result *samplesize.Result    `json:"result,omitempty"`
	Base   *samplesize.Scenario  `json:"base,omitempty"`
	Rows   []samplesize.SweepRow `json:"rows,omitempty"`
	Err    error                 `json:"-"`
	Error  string                `json:"error,omitempty"`
}

// Run evaluates every item with at most concurrency items in flight.
// Outcomes are returned in plan order. A failing scenario is recorded on its
// outcome and does not stop the batch; only cancellation aborts.
func Run(ctx context.Context, p *Plan, concurrency int) ([]Outcome, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	outcomes := make([]Outcome, len(p.Items))
	var failed atomic.Int64

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, item := range p.Items {
		i, item := i, item
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return eris.Wrap(err, "plan: run cancelled")
			}

			out := evaluate(item)
			if out.Err != nil {
				failed.Add(1)
				zap.L().Warn("plan: scenario failed",
					zap.String("scenario", item.Name),
					zap.Error(out.Err),
				)
			}
			outcomes[i] = out
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	zap.L().Info("plan: batch complete",
		zap.String("source", p.Source),
		zap.Int("items", len(p.Items)),
		zap.Int64("failed", failed.Load()),
	)
	return outcomes, nil
}

func evaluate(item Item) Outcome {
	out := Outcome{Name: item.Name}
	if item.Sweep {
		base := item.Scenario
		out.Base = &base
		out.Rows = samplesize.Sweep(item.Scenario, item.Alphas, item.Effects)
		return out
	}

	res, err := samplesize.Evaluate(item.Scenario)
	if err != nil {
		out.Err = err
		out.Error = err.Error()
		return out
	}
	out.Result = &res
	return out
}
