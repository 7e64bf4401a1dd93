package index

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/hyperjump/govretrieve/internal/bm25"
	"github.com/hyperjump/govretrieve/internal/corpus"
	"github.com/hyperjump/govretrieve/internal/embedding"
	"github.com/hyperjump/govretrieve/internal/models"
	"github.com/hyperjump/govretrieve/pkg/utils"
)

// BuildOptions configures Build.
type BuildOptions struct {
	Manifest     *corpus.Manifest
	CorpusDir    string
	Embedder     embedding.Embedder
	EmbedBatch   int
	BM25K1       float64
	BM25B        float64
}

// Build runs the ordered pipeline spec.md §4.3 describes: validate, parse,
// tokenise, build per-domain BM25 state, embed, normalise, assemble header,
// and write the on-disk directory atomically.
func Build(ctx context.Context, outputDir string, opts BuildOptions) error {
	if opts.EmbedBatch <= 0 {
		opts.EmbedBatch = 32
	}

	parsed, err := corpus.Extract(opts.Manifest, opts.CorpusDir)
	if err != nil {
		return fmt.Errorf("parse corpus: %w", err)
	}

	bm25ByDomain := buildBM25(parsed, opts.BM25K1, opts.BM25B)

	itemTexts, itemRefs := collectItemTexts(parsed)
	itemVectors, err := embedBatched(ctx, opts.Embedder, itemTexts, opts.EmbedBatch)
	if err != nil {
		return fmt.Errorf("embed items: %w", err)
	}
	for i, v := range itemVectors {
		utils.NormalizeL2(v)
		if err := assertUnitNorm(v); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
	}
	assignEmbeddingRows(parsed, itemRefs)

	domainTexts := make([]string, len(parsed.Domains))
	for i, d := range parsed.Domains {
		domainTexts[i] = d.Name + "\n" + d.Description + "\n" + domainTitleSummary(parsed, d.Name)
	}
	domainVectors, err := embedBatched(ctx, opts.Embedder, domainTexts, opts.EmbedBatch)
	if err != nil {
		return fmt.Errorf("embed domains: %w", err)
	}
	for i, v := range domainVectors {
		utils.NormalizeL2(v)
		if err := assertUnitNorm(v); err != nil {
			return fmt.Errorf("domain %d: %w", i, err)
		}
		parsed.Domains[i].CentroidRow = i
	}

	dims := opts.Embedder.Dimensions()
	identity := opts.Embedder.Identity()
	header := Header{
		FormatVersion: FormatVersion,
		Dimensions:    dims,
		ItemCount:     len(itemTexts),
		DomainCount:   len(parsed.Domains),
		CorpusHash:    corpusHash(itemTexts),
		ModelName:     identity.Name,
		ModelVersion:  identity.Version,
		BuiltAtUnix:   time.Now().Unix(),
	}

	doc := Document{
		Header:       header,
		Domains:      parsed.Domains,
		Principles:   parsed.Principles,
		Methods:      parsed.Methods,
		BM25ByDomain: bm25ByDomain,
	}

	return writeAtomic(outputDir, doc, itemVectors, domainVectors, dims)
}

func buildBM25(parsed *corpus.Result, k1, b float64) map[string]bm25.State {
	docsByDomain := make(map[string]map[string][]string)
	addDoc := func(domain, id, text string) {
		if docsByDomain[domain] == nil {
			docsByDomain[domain] = make(map[string][]string)
		}
		docsByDomain[domain][id] = bm25.QueryTerms(text)
	}
	for _, p := range parsed.Principles {
		addDoc(p.Domain, p.ID, p.EmbeddingText())
	}
	for _, m := range parsed.Methods {
		addDoc(m.Domain, m.ID, m.EmbeddingText())
	}

	out := make(map[string]bm25.State, len(docsByDomain))
	for domain, docs := range docsByDomain {
		out[domain] = bm25.Build(docs, k1, b).State()
	}
	return out
}

type itemRef struct {
	isPrincipal bool
	index       int
}

func collectItemTexts(parsed *corpus.Result) ([]string, []itemRef) {
	texts := make([]string, 0, len(parsed.Principles)+len(parsed.Methods))
	refs := make([]itemRef, 0, cap(texts))
	for i := range parsed.Principles {
		texts = append(texts, parsed.Principles[i].EmbeddingText())
		refs = append(refs, itemRef{isPrincipal: true, index: i})
	}
	for i := range parsed.Methods {
		texts = append(texts, parsed.Methods[i].EmbeddingText())
		refs = append(refs, itemRef{isPrincipal: false, index: i})
	}
	return texts, refs
}

func assignEmbeddingRows(parsed *corpus.Result, refs []itemRef) {
	for row, ref := range refs {
		if ref.isPrincipal {
			parsed.Principles[ref.index].EmbeddingRow = row
		} else {
			parsed.Methods[ref.index].EmbeddingRow = row
		}
	}
}

func domainTitleSummary(parsed *corpus.Result, domain string) string {
	var titles []string
	for _, p := range parsed.Principles {
		if p.Domain == domain {
			titles = append(titles, p.Title)
		}
	}
	for _, m := range parsed.Methods {
		if m.Domain == domain {
			titles = append(titles, m.Title)
		}
	}
	sort.Strings(titles)
	out := ""
	for _, t := range titles {
		out += t + "\n"
	}
	return out
}

func embedBatched(ctx context.Context, embedder embedding.Embedder, texts []string, batchSize int) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch, err := embedder.EmbedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, batch...)
	}
	return out, nil
}

const unitNormTolerance = 1e-3

func assertUnitNorm(v []float32) error {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if math.Abs(norm-1.0) > unitNormTolerance && norm != 0 {
		return fmt.Errorf("vector norm %.4f outside tolerance of 1.0", norm)
	}
	return nil
}

func corpusHash(texts []string) string {
	h := sha256.New()
	for _, t := range texts {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// writeAtomic writes the index to a temp directory and renames it into
// place in one step, so a partial write is never readable as a complete
// index. Grounded on the teacher's "write to temp, then use" discipline in
// storage/sqlite.go.
func writeAtomic(outputDir string, doc Document, itemVectors, domainVectors [][]float32, dims int) error {
	parent := filepath.Dir(outputDir)
	tmp, err := os.MkdirTemp(parent, ".index-build-*")
	if err != nil {
		return fmt.Errorf("create temp build dir: %w", err)
	}
	defer os.RemoveAll(tmp)

	jsonPath := filepath.Join(tmp, "global_index.json")
	f, err := os.Create(jsonPath)
	if err != nil {
		return fmt.Errorf("create global_index.json: %w", err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		f.Close()
		return fmt.Errorf("write global_index.json: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close global_index.json: %w", err)
	}

	if err := writeMatrix(filepath.Join(tmp, "content_embeddings.bin"), itemVectors, dims); err != nil {
		return fmt.Errorf("write content_embeddings.bin: %w", err)
	}
	if err := writeMatrix(filepath.Join(tmp, "domain_embeddings.bin"), domainVectors, dims); err != nil {
		return fmt.Errorf("write domain_embeddings.bin: %w", err)
	}

	if err := os.RemoveAll(outputDir); err != nil {
		return fmt.Errorf("clear previous index dir: %w", err)
	}
	if err := os.Rename(tmp, outputDir); err != nil {
		return fmt.Errorf("rename build dir into place: %w", err)
	}
	return nil
}
