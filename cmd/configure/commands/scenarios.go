package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/onboarding"
)

// NewScenariosCmd creates the scenarios command
func NewScenariosCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Validate and print the onboarding scenario bank",
		Long:  "Load the embedded situational judgment scenarios, validate them, and print them in the chosen language",
		RunE: func(cmd *cobra.Command, args []string) error {
			language := i18n.Normalize(lang)

			scenarios, err := onboarding.Scenarios()
			if err != nil {
				return fmt.Errorf("scenario bank is invalid: %w", err)
			}

			fmt.Printf("Scenario bank: %d scenarios\n\n", len(scenarios))
			for _, s := range scenarios {
				fmt.Printf("[%d] trait=%s\n", s.ID, s.Trait)
				fmt.Printf("    %s\n", s.TextIn(language))
				for i, opt := range s.OptionsIn(language) {
					fmt.Printf("    %d. %s\n", i+1, opt)
				}
				fmt.Println()
			}

			prompts := onboarding.EssayPrompts()
			fmt.Printf("Essay prompts: %d\n\n", len(prompts))
			for _, p := range prompts {
				fmt.Printf("[%s] %s\n", p.Key, p.TitleIn(language))
				fmt.Printf("    %s\n\n", p.TextIn(language))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "en", "Language to print (en or ar)")

	return cmd
}
