package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and search performance metrics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, logger, err := buildEngine()
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close() }()
		defer func() { _ = logger.Sync() }()

		// Metrics are per-process; what stats can report offline is the
		// snapshot shape.
		if err := eng.LoadSnapshot(); err != nil {
			fmt.Println("No index snapshot found.")
			return nil
		}

		report := eng.Metrics()
		indexStats := eng.IndexStats()

		encoded, err := json.MarshalIndent(map[string]interface{}{
			"index": map[string]interface{}{
				"count":     indexStats.Count,
				"dimension": indexStats.Dimension,
			},
			"indexing":       report.Indexing,
			"search":         report.Search,
			"query_patterns": report.QueryPatterns,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(encoded))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
