package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hyperjump/govretrieve/internal/audit"
	"github.com/hyperjump/govretrieve/internal/config"
	"github.com/hyperjump/govretrieve/internal/embedding"
	"github.com/hyperjump/govretrieve/internal/govserver"
	"github.com/hyperjump/govretrieve/internal/index"
	"github.com/hyperjump/govretrieve/internal/rerank"
)

const defaultConfigPath = "/usr/local/etc/govretrieve/config.yaml"

// loadConfig loads config from path. If path is the default and the file
// does not exist, it falls back to config.yaml in the current directory
// (for development), mirroring the teacher's CLI bootstrap.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if path == defaultConfigPath {
			if unwrap := errors.Unwrap(err); unwrap != nil && os.IsNotExist(unwrap) {
				if cwd, cwdErr := os.Getwd(); cwdErr == nil {
					fallback := filepath.Join(cwd, "config.yaml")
					if _, statErr := os.Stat(fallback); statErr == nil {
						return config.Load(fallback)
					}
				}
			}
		}
		return nil, err
	}
	return cfg, nil
}

// buildEmbedder constructs the bi-encoder embedder from config, degrading to
// a deterministic mock when ONNX is unavailable (non-CGO build) rather than
// failing the whole process: per spec.md §7, ModelUnavailable degrades.
func buildEmbedder(cfg *config.Config, logger *zap.Logger) embedding.Embedder {
	onnxEmbedder, err := embedding.NewONNXEmbedder(
		cfg.Embedding.ModelPath, cfg.Embedding.ModelName, cfg.Embedding.ModelVersion,
		cfg.Embedding.Dimensions, cfg.Embedding.MaxTokens, cfg.Embedding.CacheSize,
	)
	if err != nil {
		logger.Warn("ONNX embedder unavailable, falling back to mock embedder", zap.Error(err))
		return embedding.NewMockEmbedder(cfg.Embedding.Dimensions)
	}
	return onnxEmbedder
}

func buildReranker(cfg *config.Config, logger *zap.Logger) rerank.Reranker {
	onnxReranker, err := rerank.NewONNXReranker(cfg.Embedding.RerankModelPath, cfg.Embedding.MaxTokens)
	if err != nil {
		logger.Warn("ONNX reranker unavailable, falling back to mock reranker", zap.Error(err))
		return rerank.NewMockReranker()
	}
	return onnxReranker
}

// buildCore loads the index and wires a govserver.Core from config. Callers
// must call Close on the returned Core when done.
func buildCore(cfg *config.Config, logger *zap.Logger) (*govserver.Core, error) {
	loaded, err := index.Load(cfg.Index.IndexRoot)
	if err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}

	embedder := buildEmbedder(cfg, logger)
	reranker := buildReranker(cfg, logger)

	store, err := audit.Open(cfg.Audit.Capacity, cfg.Audit.PersistencePath)
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}

	core, err := govserver.New(cfg, loaded, embedder, reranker, store, logger)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("build core: %w", err)
	}
	return core, nil
}
