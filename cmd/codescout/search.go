package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codescout/codescout/pkg/types"
)

var (
	flagK       int
	flagFilter  string
	flagContext bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the indexed codebase",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cfg, logger, err := buildEngine()
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close() }()
		defer func() { _ = logger.Sync() }()

		if err := eng.LoadSnapshot(); err != nil {
			return fmt.Errorf("no usable index at %s (run `codescout index` first): %w", cfg.SnapshotDir, err)
		}

		filter := types.DocumentKind(flagFilter)
		if filter != "" {
			probe := types.Document{Kind: filter}
			if err := probe.ValidateKind(); err != nil {
				return fmt.Errorf("invalid --filter %q: must be file, function, or class", flagFilter)
			}
		}

		result, err := eng.Search(cmd.Context(), args[0], flagK, filter)
		if err != nil {
			return err
		}

		if flagContext {
			fmt.Print(eng.FormatContext(result.Hits, 0))
			return nil
		}

		if len(result.Hits) == 0 {
			fmt.Println("No results.")
			return nil
		}
		for i, hit := range result.Hits {
			doc := hit.Document
			location := doc.Path
			if doc.Line > 0 {
				location = fmt.Sprintf("%s:%d", doc.Path, doc.Line)
			}
			fmt.Printf("%2d. [%s] %-30s %s (relevance %.3f)\n",
				i+1, doc.Kind, doc.DisplayName(), location, hit.Relevance)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVarP(&flagK, "limit", "k", 0, "maximum results (default from config)")
	searchCmd.Flags().StringVar(&flagFilter, "filter", "", "restrict to a document kind: file, function, class")
	searchCmd.Flags().BoolVar(&flagContext, "context", false, "print an LLM-ready context blob instead of a result list")
	rootCmd.AddCommand(searchCmd)
}
