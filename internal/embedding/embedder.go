// Package embedding provides text embedding via ONNX and caching, plus the
// model-identity bookkeeping the index format needs to detect a stale model
// binding at load time.
package embedding

import "context"

// ModelIdentity names the model a set of vectors was produced with. The
// index header records this; a mismatch at load time disables dense search
// rather than risking vectors that were never comparable to begin with.
type ModelIdentity struct {
	Name    string
	Version string
}

// Embedder produces unit-norm vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Identity() ModelIdentity
	Close() error
}

// ErrModelUnavailable is returned by embedders that cannot be constructed or
// invoked in the current build (e.g. ONNX without CGO). Callers treat this
// as the `ModelUnavailable` error kind: degrade, don't fail the request.
type ErrModelUnavailable struct {
	Reason string
}

func (e *ErrModelUnavailable) Error() string {
	return "embedder unavailable: " + e.Reason
}
