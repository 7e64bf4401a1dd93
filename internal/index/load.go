package index

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperjump/govretrieve/internal/bm25"
	"github.com/hyperjump/govretrieve/internal/models"
)

// Loaded is the read-only, queryable form of an on-disk index. No operation
// requires mutable access; the server process owns this exclusively and
// retrieval takes read-only views.
type Loaded struct {
	Header Header

	domains    []models.Domain
	principles []models.Principle
	methods    []models.Method
	bm25       map[string]*bm25.Index

	itemVectors   [][]float32
	domainVectors [][]float32

	byID        map[string]interface{} // *models.Principle or *models.Method
	domainIndex map[string]int
}

// Load reads global_index.json plus the two matrix files from dir, validating
// header magic/version and row counts before returning. Any mismatch is a
// fatal FormatError: the server must not start with a corrupt or partial
// index.
func Load(dir string) (*Loaded, error) {
	jsonPath := filepath.Join(dir, "global_index.json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("read global_index.json: %w", err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse global_index.json: %w", err)
	}
	if doc.Header.FormatVersion != FormatVersion {
		return nil, fmt.Errorf("index format version %d unsupported, want %d", doc.Header.FormatVersion, FormatVersion)
	}

	itemVectors, dims, err := readMatrix(filepath.Join(dir, "content_embeddings.bin"))
	if err != nil {
		return nil, fmt.Errorf("load content_embeddings.bin: %w", err)
	}
	if dims != doc.Header.Dimensions {
		return nil, fmt.Errorf("content_embeddings.bin dims %d != header dims %d", dims, doc.Header.Dimensions)
	}
	itemCount := len(doc.Principles) + len(doc.Methods)
	if len(itemVectors) != itemCount {
		return nil, fmt.Errorf("content_embeddings.bin has %d rows, expected %d (principles+methods)", len(itemVectors), itemCount)
	}

	domainVectors, domainDims, err := readMatrix(filepath.Join(dir, "domain_embeddings.bin"))
	if err != nil {
		return nil, fmt.Errorf("load domain_embeddings.bin: %w", err)
	}
	if domainDims != doc.Header.Dimensions {
		return nil, fmt.Errorf("domain_embeddings.bin dims %d != header dims %d", domainDims, doc.Header.Dimensions)
	}
	if len(domainVectors) != len(doc.Domains) {
		return nil, fmt.Errorf("domain_embeddings.bin has %d rows, expected %d domains", len(domainVectors), len(doc.Domains))
	}

	bm25ByDomain := make(map[string]*bm25.Index, len(doc.BM25ByDomain))
	for domain, state := range doc.BM25ByDomain {
		bm25ByDomain[domain] = bm25.FromState(state)
	}

	byID := make(map[string]interface{}, itemCount)
	for i := range doc.Principles {
		byID[doc.Principles[i].ID] = &doc.Principles[i]
	}
	for i := range doc.Methods {
		byID[doc.Methods[i].ID] = &doc.Methods[i]
	}

	domainIndex := make(map[string]int, len(doc.Domains))
	for i, d := range doc.Domains {
		domainIndex[d.Name] = i
	}

	return &Loaded{
		Header:        doc.Header,
		domains:       doc.Domains,
		principles:    doc.Principles,
		methods:       doc.Methods,
		bm25:          bm25ByDomain,
		itemVectors:   itemVectors,
		domainVectors: domainVectors,
		byID:          byID,
		domainIndex:   domainIndex,
	}, nil
}

// Principle returns the principle with the given ID, if any.
func (l *Loaded) Principle(id string) (*models.Principle, bool) {
	v, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	p, ok := v.(*models.Principle)
	return p, ok
}

// Method returns the method with the given ID, if any.
func (l *Loaded) Method(id string) (*models.Method, bool) {
	v, ok := l.byID[id]
	if !ok {
		return nil, false
	}
	m, ok := v.(*models.Method)
	return m, ok
}

// Domains returns the full domain table.
func (l *Loaded) Domains() []models.Domain {
	return l.domains
}

// Domain returns the named domain, if present.
func (l *Loaded) Domain(name string) (*models.Domain, bool) {
	i, ok := l.domainIndex[name]
	if !ok {
		return nil, false
	}
	return &l.domains[i], true
}

// PrinciplesByDomain returns every principle in a domain.
func (l *Loaded) PrinciplesByDomain(domain string) []*models.Principle {
	var out []*models.Principle
	for i := range l.principles {
		if l.principles[i].Domain == domain {
			out = append(out, &l.principles[i])
		}
	}
	return out
}

// MethodsByDomain returns every method in a domain.
func (l *Loaded) MethodsByDomain(domain string) []*models.Method {
	var out []*models.Method
	for i := range l.methods {
		if l.methods[i].Domain == domain {
			out = append(out, &l.methods[i])
		}
	}
	return out
}

// AllPrinciples returns every principle in the index.
func (l *Loaded) AllPrinciples() []models.Principle {
	return l.principles
}

// AllMethods returns every method in the index.
func (l *Loaded) AllMethods() []models.Method {
	return l.methods
}

// EmbeddingRow returns the embedding vector at the given row.
func (l *Loaded) EmbeddingRow(row int) ([]float32, bool) {
	if row < 0 || row >= len(l.itemVectors) {
		return nil, false
	}
	return l.itemVectors[row], true
}

// DomainCentroid returns the embedding vector for a domain's centroid row.
func (l *Loaded) DomainCentroid(domain string) ([]float32, bool) {
	i, ok := l.domainIndex[domain]
	if !ok {
		return nil, false
	}
	row := l.domains[i].CentroidRow
	if row < 0 || row >= len(l.domainVectors) {
		return nil, false
	}
	return l.domainVectors[row], true
}

// BM25 returns the per-domain BM25 index, if built.
func (l *Loaded) BM25(domain string) (*bm25.Index, bool) {
	idx, ok := l.bm25[domain]
	return idx, ok
}
