package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"geoquiz-pipeline/internal/domain"
)

// NewSeedCmd loads country facts from a YAML file into the fact table.
func NewSeedCmd(configPath *string) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load country facts into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			var facts []domain.CountryFact
			if err := yaml.Unmarshal(data, &facts); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			if len(facts) == 0 {
				return fmt.Errorf("%s contains no country facts", file)
			}

			env, err := newEnvironment(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()
			if env.facts == nil {
				return fmt.Errorf("postgres url not configured")
			}

			if err := env.facts.Seed(cmd.Context(), facts); err != nil {
				return err
			}
			env.log.Info("country facts seeded", "count", len(facts), "file", file)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "config/countries.yaml", "YAML file with country facts")
	return cmd
}
