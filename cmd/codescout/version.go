package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/codescout/codescout/internal/vecindex"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version and build information",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("codescout %s\n", version)
		fmt.Printf("Build Time: %s\n", buildTime)
		fmt.Printf("Build Mode: %s\n", vecindex.BuildMode)
		fmt.Printf("SQLite Driver: %s\n", vecindex.DriverName)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
