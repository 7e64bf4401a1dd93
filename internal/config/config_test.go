package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
corpus:
  manifest_path: "manifest.yaml"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Index.IndexRoot == "" {
		t.Error("index_root should be set")
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_debugTrue(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
debug: true
server:
  host: "localhost"
  port: 8080
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.Debug {
		t.Error("debug should be true when set in config")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "localhost"
  port: 8080
index:
  index_root: "./data/index"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	wantRoot := filepath.Join(dir, "data", "index")
	if cfg.Index.IndexRoot != wantRoot {
		t.Errorf("index_root = %s, want %s", cfg.Index.IndexRoot, wantRoot)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Retrieval.SemanticWeight != 0.60 {
		t.Errorf("default semantic_weight: got %f", cfg.Retrieval.SemanticWeight)
	}
	if cfg.Retrieval.DomainThreshold != 0.30 {
		t.Errorf("default domain_threshold: got %f", cfg.Retrieval.DomainThreshold)
	}
	if cfg.Retrieval.BM25K1 != 1.5 || cfg.Retrieval.BM25B != 0.75 {
		t.Errorf("default bm25 params: k1=%f b=%f", cfg.Retrieval.BM25K1, cfg.Retrieval.BM25B)
	}
	if len(cfg.Safety.Keywords) == 0 {
		t.Error("safety keywords should default to a non-empty list")
	}
	if cfg.Audit.Capacity != 1024 {
		t.Errorf("default audit capacity: got %d", cfg.Audit.Capacity)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server: ServerConfig{Host: "localhost", Port: 9090},
		Index:  IndexConfig{IndexRoot: "/tmp/index"},
	}
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}
