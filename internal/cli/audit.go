package cli

import (
	"github.com/spf13/cobra"
)

// NewAuditCmd prints a quality report without mutating the store.
func NewAuditCmd(configPath *string) *cobra.Command {
	var country string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Report question quality for a country or the whole catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			report, err := env.auditService().Audit(cmd.Context(), country)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), report)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "restrict to one country id")
	return cmd
}
