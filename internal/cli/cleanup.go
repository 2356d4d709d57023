package cli

import (
	"github.com/spf13/cobra"
)

// NewCleanupCmd re-validates persisted questions and deletes the failures.
func NewCleanupCmd(configPath *string) *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete persisted questions that fail validation",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			result, err := env.cleanupService().RemoveInvalid(cmd.Context(), country)
			if err != nil {
				return err
			}
			env.log.Info("cleanup finished",
				"runId", result.RunID,
				"removed", len(result.Removed),
				"failedBatches", len(result.FailedBatches))
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "restrict to one country id")
	return cmd
}
