package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codescout/codescout/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an MCP server on stdio",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, _, logger, err := buildEngine()
		if err != nil {
			return err
		}
		defer func() { _ = eng.Close() }()
		defer func() { _ = logger.Sync() }()

		// A stale or absent snapshot is not fatal; the index_codebase
		// tool can build one on demand.
		if err := eng.LoadSnapshot(); err != nil {
			logger.Info("starting without a snapshot", zap.Error(err))
		}

		logger.Info("MCP server ready, listening on stdio")
		return mcp.NewServer(eng, logger).Serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
