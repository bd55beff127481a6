package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var flagForce bool

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index a codebase for semantic search",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := "."
		if len(args) == 1 {
			root = args[0]
		}

		eng, _, logger, err := buildEngine()
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close() }()
		defer func() { _ = logger.Sync() }()

		var bar *progressbar.ProgressBar
		eng.Progress = func(done, total int) {
			if bar == nil {
				bar = progressbar.NewOptions(total,
					progressbar.OptionSetDescription("Embedding"),
					progressbar.OptionSetWidth(40),
					progressbar.OptionShowCount(),
					progressbar.OptionClearOnFinish(),
				)
			}
			_ = bar.Set(done)
		}

		report, err := eng.IndexCodebase(cmd.Context(), root, flagForce)
		if err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Finish()
		}

		if report.Skipped {
			fmt.Println("Already indexed; use --force to rebuild.")
			return nil
		}

		fmt.Printf("Indexed %d files (%d functions, %d classes, %d documents total) in %s\n",
			report.FilesScanned, report.Functions, report.Classes, report.Documents, report.Duration.Round(time.Millisecond))
		if report.FailedFiles > 0 {
			fmt.Printf("Skipped %d unreadable or unparsable files\n", report.FailedFiles)
		}
		return nil
	},
}

func init() {
	indexCmd.Flags().BoolVarP(&flagForce, "force", "f", false, "rebuild even when an index exists")
	rootCmd.AddCommand(indexCmd)
}
