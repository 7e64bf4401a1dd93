//go:build !cgo
// +build !cgo

package embedding

import "context"

// ONNXEmbedder stub type when built without CGO (see onnx.go for real implementation).
type ONNXEmbedder struct{}

// NewONNXEmbedder returns an error when built without CGO (ONNX not available).
func NewONNXEmbedder(_, _, _ string, _, _, _ int) (*ONNXEmbedder, error) {
	return nil, &ErrModelUnavailable{Reason: "ONNX embedder requires CGO; build with CGO_ENABLED=1 and onnxruntime"}
}

func (e *ONNXEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, &ErrModelUnavailable{Reason: "ONNX embedder requires CGO"}
}

func (e *ONNXEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, &ErrModelUnavailable{Reason: "ONNX embedder requires CGO"}
}

func (e *ONNXEmbedder) Dimensions() int { return 0 }

func (e *ONNXEmbedder) Identity() ModelIdentity { return ModelIdentity{} }

func (e *ONNXEmbedder) Close() error { return nil }
