// Package config provides configuration loading and structs for the
// governance retrieval server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Index     IndexConfig     `yaml:"index"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Safety    SafetyConfig    `yaml:"safety"`
	Audit     AuditConfig     `yaml:"audit"`
}

// ServerConfig holds HTTP introspection server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// CorpusConfig points at the manifest describing the markdown corpora.
type CorpusConfig struct {
	ManifestPath string `yaml:"manifest_path"`
}

// IndexConfig holds paths and versioning for the on-disk index.
type IndexConfig struct {
	IndexRoot     string `yaml:"index_root"`
	FormatVersion int    `yaml:"format_version"`
}

// EmbeddingConfig holds bi-encoder / cross-encoder settings.
type EmbeddingConfig struct {
	ModelPath        string `yaml:"model_path"`
	RerankModelPath  string `yaml:"rerank_model_path"`
	ModelName        string `yaml:"model_name"`
	ModelVersion     string `yaml:"model_version"`
	Dimensions       int    `yaml:"dimensions"`
	MaxTokens        int    `yaml:"max_tokens"`
	CacheSize        int    `yaml:"cache_size"`
}

// RetrievalConfig holds thresholds and weights for the retrieval pipeline.
type RetrievalConfig struct {
	SemanticWeight       float64       `yaml:"semantic_weight"`        // alpha, default 0.60
	DomainThreshold      float64       `yaml:"domain_threshold"`       // tau_domain, default 0.30
	VerifyThreshold      float64       `yaml:"verify_threshold"`       // tau_verify, default 0.80
	VerifyPartialFloor   float64       `yaml:"verify_partial_floor"`   // default 0.50
	TopKCandidates       int           `yaml:"top_k_candidates"`       // K, default 20
	ConfidenceHigh       float64       `yaml:"confidence_high"`        // default 0.70
	ConfidenceMedium     float64       `yaml:"confidence_medium"`      // default 0.40
	ConfidenceLow        float64       `yaml:"confidence_low"`         // default 0.30
	BM25K1               float64       `yaml:"bm25_k1"`                // default 1.5
	BM25B                float64       `yaml:"bm25_b"`                 // default 0.75
	RetrievalDeadline    time.Duration `yaml:"retrieval_deadline"`     // default 100ms
	GovernanceDeadline   time.Duration `yaml:"governance_deadline"`    // default 2s
	MaxInFlightQueries   int           `yaml:"max_in_flight_queries"`  // default 64
	FeedbackEnabled      bool          `yaml:"feedback_enabled"`       // default false
	FeedbackMaxAdjustment float64      `yaml:"feedback_max_adjustment"`
}

// SafetyConfig holds the S-Series safety-keyword screening list.
type SafetyConfig struct {
	Keywords []string `yaml:"keywords"`
}

// AuditConfig holds Audit Store sizing and optional persistence.
type AuditConfig struct {
	Capacity        int    `yaml:"capacity"`
	PersistencePath string `yaml:"persistence_path"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Corpus.ManifestPath = expandPath(cfg.Corpus.ManifestPath, configDir)
	cfg.Index.IndexRoot = expandPath(cfg.Index.IndexRoot, configDir)
	cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	cfg.Embedding.RerankModelPath = expandPath(cfg.Embedding.RerankModelPath, configDir)
	if cfg.Audit.PersistencePath != "" {
		cfg.Audit.PersistencePath = expandPath(cfg.Audit.PersistencePath, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
