package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sells-group/abtest-planner/internal/normal"
	"github.com/sells-group/abtest-planner/internal/report"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

// criticalValues is the output of the z command.
type criticalValues struct {
	Alpha  float64 `json:"alpha"`
	Tails  int     `json:"tails"`
	Power  float64 `json:"power"`
	ZAlpha float64 `json:"z_alpha"`
	ZBeta  float64 `json:"z_beta"`
}

var (
	zAlpha  float64
	zTails  int
	zPower  float64
	zOutput outputFlags
)

var zCmd = &cobra.Command{
	Use:   "z",
	Short: "Print the critical z values for a significance level and power",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := zOutput.validate(); err != nil {
			return err
		}

		alpha, power, tails := cfg.Plan.Alpha, cfg.Plan.Power, cfg.Plan.Tails
		if cmd.Flags().Changed("alpha") {
			alpha = zAlpha
		}
		if cmd.Flags().Changed("power") {
			power = zPower
		}
		if cmd.Flags().Changed("tails") {
			tails = zTails
		}
		zA, zB, err := samplesize.CriticalValues(alpha, power, normal.Tails(tails))
		if err != nil {
			return err
		}

		v := criticalValues{
			Alpha:  alpha,
			Tails:  tails,
			Power:  power,
			ZAlpha: zA,
			ZBeta:  zB,
		}

		w := cmd.OutOrStdout()
		if zOutput.json() {
			return report.JSON(w, v)
		}
		_, err = fmt.Fprintf(w, "z_alpha (%s, alpha=%s): %s\nz_beta  (power=%s): %s\n",
			normal.Tails(tails), report.Percent(alpha, 2), report.Number(v.ZAlpha, 6),
			report.Percent(power, 0), report.Number(v.ZBeta, 6))
		return err
	},
}

func init() {
	zCmd.Flags().Float64Var(&zAlpha, "alpha", 0, "significance level (default from config)")
	zCmd.Flags().IntVar(&zTails, "tails", 0, "1 or 2 tailed (default from config)")
	zCmd.Flags().Float64Var(&zPower, "power", 0, "statistical power (default from config)")
	zOutput.register(zCmd.Flags())
	rootCmd.AddCommand(zCmd)
}
