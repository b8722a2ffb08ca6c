package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/finvet/internal/pipeline"
	"github.com/ppiankov/finvet/internal/route"
)

var (
	outJSON    string
	outMD      string
	askTimeout time.Duration
)

// askCmd represents the ask command
var askCmd = &cobra.Command{
	Use:   "ask <question> [question...]",
	Short: "Answer a financial question and verify every number in the answer",
	Long: `Ask answers one or more financial questions:
- Parse the question into companies, metrics, period, and intent
- Generate an answer from the ground-truth facts store
- Re-extract every numeric claim from the answer and verify it
- Correct incorrect values and report a confidence score

Several questions in one invocation share conversation context, so
follow-ups may refer to earlier companies by pronoun.

Example:
  finvet ask "What was Apple's revenue in fiscal 2023?"
  finvet ask "What was Apple's revenue in 2023?" "And their net income?"
  finvet ask "Compare Apple and Microsoft gross margin" --json report.json
  finvet ask "What was Tesla's revenue?" --llm-provider openai --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	rootCmd.AddCommand(askCmd)

	askCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	askCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	askCmd.Flags().DurationVar(&askTimeout, "timeout", 2*time.Minute, "overall timeout")
	addSharedFlags(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	conv := &route.Context{}

	for i, question := range args {
		if verbose {
			fmt.Fprintf(os.Stderr, "Asking: %s\n", question)
		}

		report, err := p.Answer(ctx, question, conv)
		if err != nil {
			return fmt.Errorf("answer failed: %w", err)
		}
		conv.Remember(report.Query.TickerSymbols())

		if i > 0 {
			fmt.Println()
		}
		jsonPath := numberedPath(outJSON, i, len(args))
		mdPath := numberedPath(outMD, i, len(args))
		if err := p.RenderReport(report, jsonPath, mdPath, verbose); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
	}

	return nil
}

// numberedPath disambiguates output paths when one invocation answers
// several questions ("report.json" becomes "report-2.json").
func numberedPath(path string, index, total int) string {
	if path == "" || total == 1 {
		return path
	}
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(path, ext), index+1, ext)
}
