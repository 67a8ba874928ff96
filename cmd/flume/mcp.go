package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/flume"
	mcpadapter "github.com/aretw0/flume/internal/adapters/mcp"
	"github.com/aretw0/flume/internal/connector"
	"github.com/aretw0/flume/internal/ticket"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the pipeline as an MCP server over stdio.
This allows AI agents to resolve tickets and search the FAQ corpus as tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		faqPath, _ := cmd.Flags().GetString("faq")
		ticketsPath, _ := cmd.Flags().GetString("tickets")

		logger := newLogger(cmd)

		var entries []connector.Entry
		if faqPath != "" {
			var err error
			entries, err = connector.LoadCorpus(faqPath)
			if err != nil {
				return fmt.Errorf("failed to load faq corpus: %w", err)
			}
		}
		conn := connector.NewMemory(entries)

		eng, err := flume.New(configPath,
			flume.WithLogger(logger),
			flume.WithConnector(conn),
		)
		if err != nil {
			return err
		}

		store := ticket.NewFileStore(ticketsPath)
		srv := mcpadapter.NewServer(eng, conn, store, logger, flume.Version)

		// Ensure logs don't corrupt JSON-RPC on Stdout.
		log.SetOutput(os.Stderr)
		logger.Info("starting mcp server (stdio)")
		return srv.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().String("faq", "", "Path to a YAML FAQ corpus")
	mcpCmd.Flags().String("tickets", "tickets.json", "Path to the JSON ticket store")
}
