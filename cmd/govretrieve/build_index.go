package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyperjump/govretrieve/internal/corpus"
	"github.com/hyperjump/govretrieve/internal/index"
	"github.com/hyperjump/govretrieve/pkg/utils"
)

func newBuildIndexCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "build-index",
		Short: "Parse the markdown corpus and build the on-disk retrieval index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := utils.NewLogger(cfg.Debug)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			defer logger.Sync()

			manifest, err := corpus.LoadManifest(cfg.Corpus.ManifestPath)
			if err != nil {
				return fmt.Errorf("load manifest: %w", err)
			}

			embedder := buildEmbedder(cfg, logger)
			defer embedder.Close()

			if err := index.Build(cmd.Context(), cfg.Index.IndexRoot, index.BuildOptions{
				Manifest:  manifest,
				CorpusDir: filepath.Dir(cfg.Corpus.ManifestPath),
				Embedder:  embedder,
				BM25K1:    cfg.Retrieval.BM25K1,
				BM25B:     cfg.Retrieval.BM25B,
			}); err != nil {
				return fmt.Errorf("build index: %w", err)
			}
			fmt.Printf("Index built at %s\n", cfg.Index.IndexRoot)
			return nil
		},
	}
}
