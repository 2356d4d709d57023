package cli

import (
	"github.com/spf13/cobra"
)

// NewDedupeCmd removes duplicate questions, keeping the oldest in each
// fingerprint cluster. An empty --country runs over the whole store.
func NewDedupeCmd(configPath *string) *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "dedupe",
		Short: "Remove duplicate questions from the store",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			result, err := env.cleanupService().Deduplicate(cmd.Context(), country)
			if err != nil {
				return err
			}
			env.log.Info("dedup finished",
				"runId", result.RunID,
				"kept", len(result.Kept),
				"removed", len(result.Removed),
				"failedBatches", len(result.FailedBatches))
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "restrict to one country id")
	return cmd
}
