package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/finvet/internal/universe"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "Inspect the company universe",
}

var universeCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the universe file and report alias collisions",
	Long: `Check loads the company universe, builds the alias index, and reports
what the resolver will actually see: company count, alias count, and any
normalized aliases that map to more than one ticker. Collisions are not
errors; ambiguous mentions surface as warnings at query time.

Example:
  finvet universe check --universe companies.yaml`,
	RunE: runUniverseCheck,
}

func init() {
	rootCmd.AddCommand(universeCmd)
	universeCmd.AddCommand(universeCheckCmd)

	universeCheckCmd.Flags().StringVar(&universePath, "universe", "", "company universe YAML (overrides config)")
}

func runUniverseCheck(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig()
	if err != nil {
		return err
	}
	if cfg.Universe.Path == "" {
		return fmt.Errorf("universe file is required (set universe.path or --universe)")
	}

	repo, err := universe.LoadRepository(cfg.Universe.Path)
	if err != nil {
		return err
	}
	idx := repo.Current()

	fmt.Printf("✓ %s is valid\n", cfg.Universe.Path)
	fmt.Printf("  Companies: %d\n", idx.Size())
	fmt.Printf("  Aliases:   %d\n", len(idx.Phrases()))

	if collisions := idx.Collisions(); len(collisions) > 0 {
		fmt.Printf("  Ambiguous aliases (%d):\n", len(collisions))
		for _, phrase := range collisions {
			tickers := idx.LookupAlias(phrase)
			fmt.Printf("    %q -> %s\n", phrase, strings.Join(tickers, ", "))
		}
	} else {
		fmt.Println("  No ambiguous aliases")
	}

	return nil
}
