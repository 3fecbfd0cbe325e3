package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/abtest-planner/internal/report"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

var (
	sweepScenario scenarioFlags
	sweepOutput   outputFlags
	sweepAlphas   string
	sweepEffects  string
)

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Compare sample sizes across significance levels and effect sizes",
	Long: `Evaluates every combination of the --alphas and --effects lists around the
base scenario. Both lists are comma-separated percentages ("1, 5, 10").
For absolute mean effects the effect list is in metric units instead.`,
	Example: `  abplan sweep --alphas "1, 5, 10" --effects "1, 3, 5, 8"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := sweepOutput.validate(); err != nil {
			return err
		}
		if err := cfg.Validate("plan"); err != nil {
			return err
		}

		base := sweepScenario.scenario(cmd.Flags())

		alphaList := sweepAlphas
		if !cmd.Flags().Changed("alphas") {
			alphaList = cfg.Plan.SweepAlphas
		}
		effectList := sweepEffects
		if !cmd.Flags().Changed("effects") {
			effectList = cfg.Plan.SweepEffects
		}

		alphas := samplesize.ParseAlphaList(alphaList)
		effects := samplesize.ParseEffectList(effectList, samplesize.EffectsArePercent(base))
		rows := samplesize.Sweep(base, alphas, effects)

		zap.L().Debug("sweep evaluated",
			zap.Int("alphas", len(alphas)),
			zap.Int("effects", len(effects)),
			zap.Int("rows", len(rows)),
		)

		w := cmd.OutOrStdout()
		if sweepOutput.json() {
			return report.JSON(w, rows)
		}
		title := fmt.Sprintf("Scenario comparison (%d variation(s))", base.Variations)
		return sweepOutput.renderer(w).Sweep(w, title, base, rows)
	},
}

func init() {
	sweepScenario.register(sweepCmd.Flags())
	sweepOutput.register(sweepCmd.Flags())
	sweepCmd.Flags().StringVar(&sweepAlphas, "alphas", "", "significance levels in percent (default from config)")
	sweepCmd.Flags().StringVar(&sweepEffects, "effects", "", "effect sizes in percent (default from config)")
	rootCmd.AddCommand(sweepCmd)
}
