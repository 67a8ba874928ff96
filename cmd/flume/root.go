package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flume/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "flume",
	Short: "Flume is a configuration-driven support pipeline engine",
	Long:  `Flume executes customer support pipelines declared in YAML: staged ability execution, knowledge base retrieval and score-driven escalation.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().StringP("config", "c", "config/stages.yaml", "Path to the pipeline configuration file")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")
}

func newLogger(cmd *cobra.Command) *slog.Logger {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	return logging.New(level)
}
