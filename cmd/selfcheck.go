package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/abtest-planner/internal/report"
	"github.com/sells-group/abtest-planner/internal/samplesize"
)

var selfcheckOutput outputFlags

var selfcheckCmd = &cobra.Command{
	Use:   "selfcheck",
	Short: "Run the built-in sanity checks on the sample size formula",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := selfcheckOutput.validate(); err != nil {
			return err
		}

		checks := samplesize.SelfCheck()
		w := cmd.OutOrStdout()
		var err error
		if selfcheckOutput.json() {
			err = report.JSON(w, checks)
		} else {
			err = selfcheckOutput.renderer(w).Checks(w, checks)
		}
		if err != nil {
			return err
		}

		for _, c := range checks {
			if !c.Pass {
				return eris.Errorf("self-check failed: %s", c.Name)
			}
		}
		return nil
	},
}

func init() {
	selfcheckOutput.register(selfcheckCmd.Flags())
	rootCmd.AddCommand(selfcheckCmd)
}
