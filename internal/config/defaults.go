package config

import "time"

// defaultSafetyKeywords is a documented, externally overridable starting
// point for S-Series trigger detection. It is not canon (spec open
// question); operators are expected to tune it for their deployment.
var defaultSafetyKeywords = []string{
	"delete all",
	"drop table",
	"drop database",
	"rm -rf",
	"wipe",
	"destroy",
	"irreversible",
	"disclose credentials",
	"leak credentials",
	"exfiltrate",
	"bypass authentication",
	"disable logging",
	"delete user data",
	"purge",
	"format disk",
	"revoke all access",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Corpus.ManifestPath == "" {
		cfg.Corpus.ManifestPath = "./corpus/manifest.yaml"
	}
	if cfg.Index.IndexRoot == "" {
		cfg.Index.IndexRoot = "/usr/local/var/govretrieve/index"
	}
	if cfg.Index.FormatVersion == 0 {
		cfg.Index.FormatVersion = 1
	}
	if cfg.Embedding.ModelPath == "" {
		cfg.Embedding.ModelPath = "/usr/local/var/govretrieve/models/bi-encoder.onnx"
	}
	if cfg.Embedding.RerankModelPath == "" {
		cfg.Embedding.RerankModelPath = "/usr/local/var/govretrieve/models/cross-encoder.onnx"
	}
	if cfg.Embedding.ModelName == "" {
		cfg.Embedding.ModelName = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.ModelVersion == "" {
		cfg.Embedding.ModelVersion = "1"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 512
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Retrieval.SemanticWeight == 0 {
		cfg.Retrieval.SemanticWeight = 0.60
	}
	if cfg.Retrieval.DomainThreshold == 0 {
		cfg.Retrieval.DomainThreshold = 0.30
	}
	if cfg.Retrieval.VerifyThreshold == 0 {
		cfg.Retrieval.VerifyThreshold = 0.80
	}
	if cfg.Retrieval.VerifyPartialFloor == 0 {
		cfg.Retrieval.VerifyPartialFloor = 0.50
	}
	if cfg.Retrieval.TopKCandidates == 0 {
		cfg.Retrieval.TopKCandidates = 20
	}
	if cfg.Retrieval.ConfidenceHigh == 0 {
		cfg.Retrieval.ConfidenceHigh = 0.70
	}
	if cfg.Retrieval.ConfidenceMedium == 0 {
		cfg.Retrieval.ConfidenceMedium = 0.40
	}
	if cfg.Retrieval.ConfidenceLow == 0 {
		cfg.Retrieval.ConfidenceLow = 0.30
	}
	if cfg.Retrieval.BM25K1 == 0 {
		cfg.Retrieval.BM25K1 = 1.5
	}
	if cfg.Retrieval.BM25B == 0 {
		cfg.Retrieval.BM25B = 0.75
	}
	if cfg.Retrieval.RetrievalDeadline == 0 {
		cfg.Retrieval.RetrievalDeadline = 100 * time.Millisecond
	}
	if cfg.Retrieval.GovernanceDeadline == 0 {
		cfg.Retrieval.GovernanceDeadline = 2 * time.Second
	}
	if cfg.Retrieval.MaxInFlightQueries == 0 {
		cfg.Retrieval.MaxInFlightQueries = 64
	}
	if cfg.Retrieval.FeedbackMaxAdjustment == 0 {
		cfg.Retrieval.FeedbackMaxAdjustment = 0.05
	}
	if len(cfg.Safety.Keywords) == 0 {
		cfg.Safety.Keywords = defaultSafetyKeywords
	}
	if cfg.Audit.Capacity == 0 {
		cfg.Audit.Capacity = 1024
	}
}
