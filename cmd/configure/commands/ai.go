package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/syntra-learn/syntra-api/internal/config"
	"github.com/syntra-learn/syntra-api/internal/i18n"
	"github.com/syntra-learn/syntra-api/internal/services/ai"
)

// NewAICmd creates the ai command
func NewAICmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Test AI provider connectivity",
		Long:  "Run a small model request against the configured AI provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if cfg.AIKey == "" {
				return fmt.Errorf("AI_API_KEY is not configured")
			}

			provider := ai.NewOpenAIProviderWithLogger(cfg.AIKey, cfg.AIBaseURL, cfg.AIModel, zap.NewNop(), false)

			fmt.Printf("Testing AI provider (model: %s)\n", cfg.AIModel)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			steps, err := provider.MagicBreakdown(ctx, "Learn to ride a bicycle", i18n.LanguageEnglish)
			if err != nil {
				return fmt.Errorf("model request failed: %w", err)
			}

			fmt.Printf("✓ Provider responded with %d steps\n", len(steps))
			for i, step := range steps {
				fmt.Printf("  %d. %s\n", i+1, step)
			}

			return nil
		},
	}

	return cmd
}
