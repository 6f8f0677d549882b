package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/syntra-learn/syntra-api/cmd/configure/commands"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "syntra-configure",
		Short: "Configuration tool for the Syntra API",
		Long:  "CLI tool for validating Syntra deployment configuration and content",
	}

	rootCmd.AddCommand(commands.NewScenariosCmd())
	rootCmd.AddCommand(commands.NewAICmd())
	rootCmd.AddCommand(commands.NewOIDCCmd())
	rootCmd.AddCommand(commands.NewSchemaCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
