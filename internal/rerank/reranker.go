// Package rerank provides cross-encoder reranking of (query, candidate)
// pairs, mirroring internal/embedding's interface/cgo/mock adapter trio.
package rerank

import "context"

// Reranker scores each candidate against a query. Scale is not required to
// be calibrated across queries, only monotone within one call.
type Reranker interface {
	Score(ctx context.Context, query string, candidates []string) ([]float32, error)
	Close() error
}

// ErrModelUnavailable signals the reranker cannot be invoked; callers must
// fall back to the fused score rather than fail the request.
type ErrModelUnavailable struct {
	Reason string
}

func (e *ErrModelUnavailable) Error() string {
	return "reranker unavailable: " + e.Reason
}
