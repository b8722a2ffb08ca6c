package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/finvet/internal/pipeline"
	"github.com/ppiankov/finvet/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	requestsPS   float64
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Answer multiple questions from a file in parallel",
	Long: `Batch answers many independent questions concurrently:
- Read questions from the input file (one per line, # for comments)
- Answer them in parallel with a configurable worker count
- Rate-limit answer generation per provider
- Write an individual report per question

Example:
  finvet batch questions.txt
  finvet batch questions.txt --concurrency 8 --output-dir ./reports
  finvet batch questions.txt --llm-provider openai --rps 2`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./finvet-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for the batch")
	batchCmd.Flags().Float64Var(&requestsPS, "rps", 0, "answer-generation requests per second (0 = config default)")
	addSharedFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	cfg.Concurrency.Workers = concurrency
	if requestsPS > 0 {
		cfg.RateLimiting.RequestsPerSecond = requestsPS
	}

	fmt.Fprintf(os.Stderr, "Input file:  %s\n", file)
	fmt.Fprintf(os.Stderr, "Workers:     %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "Output dir:  %s\n", outputDir)
	fmt.Fprintln(os.Stderr)

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	providerKey := cfg.LLM.Provider
	if providerKey == "" {
		providerKey = "template"
	}
	processor := worker.NewBatchProcessor(p, providerKey, cfg.Concurrency.Workers,
		cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Question, result.Error)
			continue
		}

		slug := fmt.Sprintf("%03d-%s", result.Index+1, slugify(result.Question))
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write JSON: %v\n", result.Question, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: write Markdown: %v\n", result.Question, err)
			continue
		}

		successCount++
		fmt.Fprintf(os.Stderr, "✓ %s (confidence %.2f)\n", result.Question, result.Report.Confidence.Score)
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "Total:     %d questions\n", len(results))
	fmt.Fprintf(os.Stderr, "Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "Output:    %s\n", outputDir)

	return nil
}

// slugify turns a question into a safe filename fragment
func slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.TrimSuffix(b.String(), "-")
	if len(slug) > 60 {
		slug = strings.TrimSuffix(slug[:60], "-")
	}
	return slug
}
