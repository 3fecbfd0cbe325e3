package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/abtest-planner/internal/plan"
	"github.com/sells-group/abtest-planner/internal/report"
)

var (
	batchPlan        string
	batchSheet       string
	batchSheetIndex  int
	batchLimit       int
	batchConcurrency int
	batchStrict      bool
	batchOutput      outputFlags
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Evaluate every scenario in a YAML, CSV or XLSX plan file",
	Example: `  abplan batch --plan plans.yaml
  abplan batch --plan plans.xlsx --sheet Q3 --format json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := batchOutput.validate(); err != nil {
			return err
		}
		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		p, err := plan.Load(batchPlan, cfg.Plan.Scenario(), plan.Options{
			SheetIndex: batchSheetIndex,
			SheetName:  batchSheet,
		})
		if err != nil {
			return err
		}

		concurrency := batchConcurrency
		if concurrency == 0 {
			concurrency = cfg.Batch.MaxConcurrent
		}

		return processBatch(ctx, cmd.OutOrStdout(), p, batchLimit, concurrency)
	},
}

func init() {
	f := batchCmd.Flags()
	f.StringVar(&batchPlan, "plan", "", "plan file (.yaml, .yml, .csv or .xlsx)")
	f.StringVar(&batchSheet, "sheet", "", "XLSX sheet name (overrides --sheet-index)")
	f.IntVar(&batchSheetIndex, "sheet-index", 0, "XLSX sheet index")
	f.IntVar(&batchLimit, "limit", 0, "max number of scenarios to evaluate (0 = all)")
	f.IntVar(&batchConcurrency, "concurrency", 0, "scenarios evaluated in parallel (default from config)")
	f.BoolVar(&batchStrict, "strict", false, "exit non-zero if any scenario fails")
	batchOutput.register(f)
	_ = batchCmd.MarkFlagRequired("plan")
	rootCmd.AddCommand(batchCmd)
}

// processBatch applies limit, evaluates the plan and writes the outcomes.
func processBatch(ctx context.Context, w io.Writer, p *plan.Plan, limit, concurrency int) error {
	if len(p.Items) == 0 {
		zap.L().Info("plan has no scenarios", zap.String("source", p.Source))
		return nil
	}

	if limit > 0 && len(p.Items) > limit {
		p.Items = p.Items[:limit]
	}

	zap.L().Info("processing plan",
		zap.String("source", p.Source),
		zap.Int("scenarios", len(p.Items)),
		zap.Int("concurrency", concurrency),
	)

	outcomes, err := plan.Run(ctx, p, concurrency)
	if err != nil {
		return eris.Wrap(err, "batch processing")
	}

	if err := writeOutcomes(w, outcomes); err != nil {
		return err
	}

	if batchStrict {
		for _, o := range outcomes {
			if o.Err != nil {
				return eris.Wrapf(o.Err, "batch: scenario %s", o.Name)
			}
		}
	}
	return nil
}

func writeOutcomes(w io.Writer, outcomes []plan.Outcome) error {
	if batchOutput.json() {
		return report.JSON(w, outcomes)
	}

	r := batchOutput.renderer(w)
	for i, o := range outcomes {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}

		var err error
		switch {
		case o.Err != nil:
			_, err = fmt.Fprintf(w, "%s: error: %s\n", o.Name, o.Error)
		case o.Result != nil:
			err = r.Scenario(w, *o.Result)
		default:
			err = r.Sweep(w, o.Name, *o.Base, o.Rows)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
