package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/syntra-learn/syntra-api/internal/config"
	"github.com/syntra-learn/syntra-api/internal/database"
)

// NewSchemaCmd creates the schema command
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Ensure the database schema",
		Long:  "Connect to the configured database and create missing tables and change triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			db, err := database.New(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer func() {
				if err := db.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
				}
			}()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if err := db.EnsureSchema(ctx); err != nil {
				return fmt.Errorf("failed to ensure schema: %w", err)
			}
			fmt.Println("✓ Schema is up to date")

			if err := db.EnsureChangeTriggers(ctx); err != nil {
				return fmt.Errorf("failed to ensure change triggers: %w", err)
			}
			fmt.Println("✓ Change triggers are in place")

			return nil
		},
	}

	return cmd
}
