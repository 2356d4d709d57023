package cli

import (
	"github.com/spf13/cobra"

	"geoquiz-pipeline/internal/domain"
)

// NewGenerateCmd runs the write path of the pipeline for one country scope.
func NewGenerateCmd(configPath *string) *cobra.Command {
	var (
		country    string
		category   string
		difficulty string
		count      int
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate, validate, and persist questions for a country",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := newEnvironment(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			result, err := env.generationService().GenerateAndPersist(
				cmd.Context(), country, domain.Category(category), domain.Difficulty(difficulty), count)
			if err != nil {
				return err
			}
			env.log.Info("generation finished",
				"country", country,
				"persisted", len(result.Persisted),
				"rejected", len(result.Rejected),
				"duplicatesSkipped", result.DuplicatesSkipped)
			return printJSON(cmd.OutOrStdout(), result)
		},
	}
	cmd.Flags().StringVar(&country, "country", "", "country id to generate for")
	cmd.Flags().StringVar(&category, "category", string(domain.CategoryGeography), "question category")
	cmd.Flags().StringVar(&difficulty, "difficulty", string(domain.DifficultyEasy), "difficulty bucket")
	cmd.Flags().IntVar(&count, "count", 5, "number of questions to request")
	_ = cmd.MarkFlagRequired("country")
	return cmd
}
