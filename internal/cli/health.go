package cli

import (
	"github.com/spf13/cobra"
)

func newHealthCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check server and storage health",
		Long: `Check server and storage health.

Exits non-zero when the server is unreachable or its store does not answer.
With --quiet nothing is printed, for use as a container health check.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if quiet {
				cmd.SilenceErrors = true
			}

			var result HealthResult
			if err := client.Get("/health", &result); err != nil {
				return err
			}

			if !quiet {
				NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Print nothing; report health through the exit code")

	return cmd
}
