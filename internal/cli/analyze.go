package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(a *app) *cobra.Command {
	var (
		city   string
		window int
		sigma  float64
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Profile a CSV of historical temperatures and report anomalies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validFormat(format) {
				return fmt.Errorf("unsupported --format: %s (use table|json|yaml)", format)
			}
			f := cmd.Flags()
			if f.Changed("window") {
				a.cfg.WindowSize = window
			}
			if f.Changed("sigma") {
				a.cfg.SigmaThreshold = sigma
			}

			// Analysis never fetches.
			svc, err := a.newMonitor(nil)
			if err != nil {
				return err
			}
			if err := a.loadDataset(cmd.Context(), svc, args[0], city); err != nil {
				return err
			}
			return renderSummaries(cmd.OutOrStdout(), svc.Summaries(), svc.Params(), format)
		},
	}

	cmd.Flags().StringVar(&city, "city", "", "only analyze this city")
	cmd.Flags().IntVar(&window, "window", 0, "rolling window size in observations (overrides WINDOW_SIZE)")
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "anomaly threshold in standard deviations (overrides SIGMA_THRESHOLD)")
	cmd.Flags().StringVar(&format, "format", formatTable, "output format: table|json|yaml")
	return cmd
}
