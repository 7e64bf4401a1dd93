//go:build !cgo
// +build !cgo

package rerank

import "context"

// ONNXReranker stub type when built without CGO (see onnx.go for the real implementation).
type ONNXReranker struct{}

// NewONNXReranker returns an error when built without CGO (ONNX not available).
func NewONNXReranker(_ string, _ int) (*ONNXReranker, error) {
	return nil, &ErrModelUnavailable{Reason: "ONNX reranker requires CGO; build with CGO_ENABLED=1 and onnxruntime"}
}

func (r *ONNXReranker) Score(ctx context.Context, query string, candidates []string) ([]float32, error) {
	return nil, &ErrModelUnavailable{Reason: "ONNX reranker requires CGO"}
}

func (r *ONNXReranker) Close() error { return nil }
