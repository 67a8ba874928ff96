package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/aretw0/flume"
	"github.com/aretw0/flume/internal/connector"
	"github.com/aretw0/flume/pkg/domain"
)

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the pipeline once against a payload",
	Long: `Runs the configured pipeline against a single input payload and prints
the outcome. The payload is read from a JSON file (or stdin with
--input -), or assembled from the --name, --email and --query flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		inputPath, _ := cmd.Flags().GetString("input")
		faqPath, _ := cmd.Flags().GetString("faq")
		jsonMode, _ := cmd.Flags().GetBool("json")
		pretty, _ := cmd.Flags().GetBool("pretty")
		topK, _ := cmd.Flags().GetInt("top-k")

		payload, err := loadPayload(cmd, inputPath)
		if err != nil {
			return err
		}

		opts := []flume.Option{flume.WithLogger(newLogger(cmd))}
		if topK > 0 {
			opts = append(opts, flume.WithTopK(topK))
		}
		if faqPath != "" {
			entries, err := connector.LoadCorpus(faqPath)
			if err != nil {
				return fmt.Errorf("failed to load faq corpus: %w", err)
			}
			opts = append(opts, flume.WithConnector(connector.NewMemory(entries)))
		}

		eng, err := flume.New(configPath, opts...)
		if err != nil {
			return err
		}

		state, err := eng.Run(cmd.Context(), payload)
		if err != nil {
			return err
		}

		if jsonMode {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		}
		return printOutcome(os.Stdout, state, pretty)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("input", "i", "", "Path to a JSON payload file ('-' for stdin)")
	runCmd.Flags().String("faq", "", "Path to a YAML FAQ corpus for the in-memory connector")
	runCmd.Flags().Bool("json", false, "Print the full final state as JSON")
	runCmd.Flags().Bool("pretty", false, "Force styled markdown output even when stdout is not a terminal")
	runCmd.Flags().Int("top-k", 0, "Number of knowledge base candidates to request")
	runCmd.Flags().String("name", "", "Customer name (when no --input is given)")
	runCmd.Flags().String("email", "", "Customer email (when no --input is given)")
	runCmd.Flags().String("query", "", "Customer query (when no --input is given)")
	runCmd.Flags().String("priority", "", "Priority hint (when no --input is given)")
}

func loadPayload(cmd *cobra.Command, inputPath string) (map[string]any, error) {
	if inputPath == "" {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		query, _ := cmd.Flags().GetString("query")
		priority, _ := cmd.Flags().GetString("priority")
		return map[string]any{
			"customer_name": name,
			"email":         email,
			"query":         query,
			"priority":      priority,
			"ticket_id":     "",
		}, nil
	}

	var data []byte
	var err error
	if inputPath == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(inputPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}

	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid payload JSON: %w", err)
	}
	return payload, nil
}

// printOutcome renders a human summary of the run. On a terminal (or
// with --pretty) the markdown goes through glamour; on a pipe it stays
// plain.
func printOutcome(w io.Writer, state domain.State, pretty bool) error {
	md := outcomeMarkdown(state)

	if pretty || term.IsTerminal(int(os.Stdout.Fd())) {
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
		if err == nil {
			if pretty, rerr := r.Render(md); rerr == nil {
				_, werr := fmt.Fprint(w, pretty)
				return werr
			}
		}
	}
	_, err := fmt.Fprint(w, md)
	return err
}

func outcomeMarkdown(state domain.State) string {
	var b strings.Builder

	b.WriteString("# Run outcome\n\n")
	fmt.Fprintf(&b, "**Status:** %s\n\n", orDash(state.GetString(domain.KeyTicketStatus)))
	if score, ok := state.GetInt(domain.KeySolutionScore); ok {
		fmt.Fprintf(&b, "**Solution score:** %d\n\n", score)
	}
	fmt.Fprintf(&b, "**Response:** %s\n", orDash(state.GetString(domain.KeyResponse)))

	if answers, ok := state.Get(domain.KeyKBResults).([]domain.Answer); ok && len(answers) > 0 {
		b.WriteString("\n## Knowledge base candidates\n\n")
		for _, a := range answers {
			fmt.Fprintf(&b, "- %s (%.2f)\n", a.Answer, a.Score)
		}
	}

	if state.HasErrorMarkers() {
		b.WriteString("\n## Degraded\n\nSome abilities failed; see the state errors field.\n")
	}

	fmt.Fprintf(&b, "\n%d events recorded.\n", len(state.Events()))
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
