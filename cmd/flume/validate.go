package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/flume/internal/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the pipeline configuration for consistency",
	Long:  `Loads the pipeline configuration and reports unknown modes, duplicate stage names, missing conditions and malformed ability entries.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		if len(args) > 0 {
			configPath = args[0]
		}

		pipeline, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}

		fmt.Printf("Configuration is valid: %d stages.\n", len(pipeline.Stages))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
