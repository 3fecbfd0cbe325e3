package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/abtest-planner/internal/report"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

var (
	calcScenario scenarioFlags
	calcOutput   outputFlags
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Compute sample size and duration for one scenario",
	Example: `  abplan calc --baseline 0.05 --effect 0.1 --variations 1
  abplan calc --metric mean --mean-a 100 --mean-b 105 --sd-a 15 --sd-b 15`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := calcOutput.validate(); err != nil {
			return err
		}
		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		s := calcScenario.scenario(cmd.Flags())
		res, err := samplesize.Evaluate(s)
		if err != nil {
			return err
		}

		zap.L().Debug("scenario evaluated",
			zap.String("metric", string(s.Metric)),
			zap.Float64("alpha_used", res.AlphaUsed),
			zap.Int64("total", res.Total),
		)

		w := cmd.OutOrStdout()
		if calcOutput.json() {
			return report.JSON(w, res)
		}
		return calcOutput.renderer(w).Scenario(w, res)
	},
}

func init() {
	calcScenario.register(calcCmd.Flags())
	calcOutput.register(calcCmd.Flags())
	rootCmd.AddCommand(calcCmd)
}
