//go:build cgo
// +build cgo

package rerank

import (
	"context"
	"fmt"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/hyperjump/govretrieve/internal/embedding"
)

// ONNXReranker runs a cross-encoder model: (query, candidate) pairs in,
// one relevance score per pair out. Requires CGO and onnxruntime, same as
// ONNXEmbedder.
type ONNXReranker struct {
	session   *ort.AdvancedSession
	maxTokens int
	tokenizer embedding.Tokenizer

	inputIDsTensor      *ort.Tensor[int64]
	attentionMaskTensor *ort.Tensor[int64]
	tokenTypeIDsTensor  *ort.Tensor[int64]
	outputTensor        *ort.Tensor[float32]
	mu                  sync.Mutex
}

// NewONNXReranker creates a cross-encoder reranker from an ONNX model path.
func NewONNXReranker(modelPath string, maxTokens int) (*ONNXReranker, error) {
	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX runtime: %w", err)
	}

	tokenizer := &embedding.SimpleTokenizer{}
	inputIDs, attentionMask, tokenTypeIDs := tokenizer.Tokenize("", maxTokens)

	inputIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), inputIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to create input_ids tensor: %w", err)
	}
	attentionMaskTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), attentionMask)
	if err != nil {
		inputIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create attention_mask tensor: %w", err)
	}
	tokenTypeIDsTensor, err := ort.NewTensor(ort.NewShape(1, int64(maxTokens)), tokenTypeIDs)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		return nil, fmt.Errorf("failed to create token_type_ids tensor: %w", err)
	}
	outputData := make([]float32, 1)
	outputTensor, err := ort.NewTensor(ort.NewShape(1, 1), outputData)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	inputs := []ort.ArbitraryTensor{inputIDsTensor, attentionMaskTensor, tokenTypeIDsTensor}
	outputs := []ort.ArbitraryTensor{outputTensor}
	session, err := ort.NewAdvancedSession(
		modelPath,
		[]string{"input_ids", "attention_mask", "token_type_ids"},
		[]string{"logits"},
		inputs,
		outputs,
		nil,
	)
	if err != nil {
		inputIDsTensor.Destroy()
		attentionMaskTensor.Destroy()
		tokenTypeIDsTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &ONNXReranker{
		session:             session,
		maxTokens:           maxTokens,
		tokenizer:           tokenizer,
		inputIDsTensor:      inputIDsTensor,
		attentionMaskTensor: attentionMaskTensor,
		tokenTypeIDsTensor:  tokenTypeIDsTensor,
		outputTensor:        outputTensor,
	}, nil
}

// Score runs one cross-encoder pass per candidate, serialised behind a
// mutex since the session's tensors are reused across calls.
func (r *ONNXReranker) Score(ctx context.Context, query string, candidates []string) ([]float32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	scores := make([]float32, len(candidates))
	for i, candidate := range candidates {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		pair := query + " [SEP] " + candidate
		inputIDs, attentionMask, tokenTypeIDs := r.tokenizer.Tokenize(pair, r.maxTokens)
		copy(r.inputIDsTensor.GetData(), inputIDs)
		copy(r.attentionMaskTensor.GetData(), attentionMask)
		copy(r.tokenTypeIDsTensor.GetData(), tokenTypeIDs)

		if err := r.session.Run(); err != nil {
			return nil, fmt.Errorf("cross-encoder inference failed: %w", err)
		}
		scores[i] = r.outputTensor.GetData()[0]
	}
	return scores, nil
}

// Close destroys the session and tensors.
func (r *ONNXReranker) Close() error {
	var err error
	if r.session != nil {
		err = r.session.Destroy()
		r.session = nil
	}
	if r.inputIDsTensor != nil {
		_ = r.inputIDsTensor.Destroy()
		r.inputIDsTensor = nil
	}
	if r.attentionMaskTensor != nil {
		_ = r.attentionMaskTensor.Destroy()
		r.attentionMaskTensor = nil
	}
	if r.tokenTypeIDsTensor != nil {
		_ = r.tokenTypeIDsTensor.Destroy()
		r.tokenTypeIDsTensor = nil
	}
	if r.outputTensor != nil {
		_ = r.outputTensor.Destroy()
		r.outputTensor = nil
	}
	return err
}
