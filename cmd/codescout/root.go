package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/codescout/codescout/internal/config"
	"github.com/codescout/codescout/internal/embedder"
	"github.com/codescout/codescout/internal/engine"
	"github.com/codescout/codescout/internal/scanner"
)

var (
	flagConfig string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "codescout",
	Short: "Embedding-based semantic code search",
	Long: `codescout indexes a source tree into an exact nearest-neighbor
vector index and answers semantic queries against it, either directly
or as an MCP server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "config file (default .codescout.yaml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "enable debug logging")
}

// newLogger returns a development logger under --debug, otherwise a
// production logger writing JSON to stderr.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	if flagDebug || cfg.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// buildEngine wires scanner, embedder, and engine from configuration.
// All construction is explicit: anything misconfigured fails here.
func buildEngine() (*engine.Engine, *config.Config, *zap.Logger, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, nil, nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}

	var emb embedder.Embedder
	if cfg.Embedding.Provider == "" {
		emb, err = embedder.NewFromEnv()
	} else {
		emb, err = embedder.New(embedder.Config{
			Provider:  cfg.Embedding.Provider,
			APIKey:    cfg.Embedding.APIKey,
			Dimension: cfg.Embedding.Dimension,
			CacheSize: cfg.Embedding.CacheSize,
		})
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating embedder: %w", err)
	}

	sc, err := scanner.New(scanner.Config{IgnoreFile: cfg.IgnoreFile}, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	eng, err := engine.New(engine.Config{
		SnapshotDir:     cfg.SnapshotDir,
		BatchSize:       cfg.Embedding.BatchSize,
		DefaultK:        cfg.Search.DefaultK,
		MaxContextChars: cfg.Search.MaxContextChars,
	}, sc, emb, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return eng, cfg, logger, nil
}
