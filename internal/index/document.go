package index

import (
	"github.com/hyperjump/govretrieve/internal/bm25"
	"github.com/hyperjump/govretrieve/internal/models"
)

// FormatVersion is the on-disk global_index.json format version this
// package reads and writes. Any mismatch at load time is fatal.
const FormatVersion = 1

// Header is the stable, version-checked preamble of global_index.json.
type Header struct {
	FormatVersion int    `json:"format_version"`
	Dimensions    int    `json:"dimensions"`
	ItemCount     int    `json:"item_count"`
	DomainCount   int    `json:"domain_count"`
	CorpusHash    string `json:"corpus_hash"`
	ModelName     string `json:"model_name"`
	ModelVersion  string `json:"model_version"`
	BuiltAtUnix   int64  `json:"built_at_unix"`
}

// Document is the on-disk shape of global_index.json. The two sibling
// *.bin matrix files are referenced by embedding row, never embedded here.
type Document struct {
	Header       Header                  `json:"header"`
	Domains      []models.Domain         `json:"domains"`
	Principles   []models.Principle      `json:"principles"`
	Methods      []models.Method         `json:"methods"`
	BM25ByDomain map[string]bm25.State   `json:"bm25_by_domain"`
}
