// Package inference provides ONNX Runtime integration for computing
// predicted-confidence matrices from pre-trained classifiers.
package inference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

// ErrPoolClosed indicates an Acquire on a closed session pool.
var ErrPoolClosed = errors.New("inference: pool is closed")

var (
	ortEnvOnce sync.Once
	ortEnvErr  error
)

// initORT initializes ONNX Runtime environment once.
func initORT() error {
	ortEnvOnce.Do(func() {
		ortEnvErr = ort.InitializeEnvironment()
	})
	return ortEnvErr
}

// Session wraps an ONNX Runtime session for a classifier that maps a batch
// of feature vectors to per-class logits.
type Session struct {
	session *ort.DynamicAdvancedSession
	mu      sync.Mutex
	closed  bool
}

// NewSession creates a new ONNX session from a classifier model file. The
// model must take a float32 input named "input" of shape (batch, features)
// and produce an output named "logits" of shape (batch, classes).
func NewSession(modelPath string) (*Session, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("model file: %w", err)
	}

	if err := initORT(); err != nil {
		return nil, fmt.Errorf("initializing ONNX runtime: %w", err)
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("creating session options: %w", err)
	}
	defer func() { _ = options.Destroy() }() // Cleanup error doesn't affect success

	session, err := ort.NewDynamicAdvancedSession(
		modelPath,
		[]string{"input"},
		[]string{"logits"},
		options,
	)
	if err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}

	return &Session{session: session}, nil
}

// Predict runs the classifier on a batch of feature vectors and returns the
// row-stochastic confidence matrix (softmax over the output logits).
func (s *Session) Predict(ctx context.Context, features [][]float32) ([][]float64, error) {
	// Check context before expensive operation
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if len(features) == 0 {
		return nil, errors.New("inference: empty feature batch")
	}
	dims := len(features[0])
	for i, row := range features {
		if len(row) != dims {
			return nil, fmt.Errorf("inference: feature row %d has %d dims, want %d", i, len(row), dims)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, errors.New("inference: session is closed")
	}

	batch := int64(len(features))
	flat := make([]float32, 0, len(features)*dims)
	for _, row := range features {
		flat = append(flat, row...)
	}

	inputTensor, err := ort.NewTensor(ort.NewShape(batch, int64(dims)), flat)
	if err != nil {
		return nil, fmt.Errorf("creating input tensor: %w", err)
	}
	defer func() { _ = inputTensor.Destroy() }()

	// Output slice - nil entry will be allocated by Run
	outputs := []ort.Value{nil}

	if err := s.session.Run([]ort.Value{inputTensor}, outputs); err != nil {
		return nil, fmt.Errorf("running inference: %w", err)
	}
	if outputs[0] == nil {
		return nil, errors.New("inference: no output produced")
	}
	defer func() { _ = outputs[0].Destroy() }()

	logitsTensor, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, errors.New("inference: unexpected output tensor type")
	}

	shape := logitsTensor.GetShape()
	if len(shape) != 2 || shape[0] != batch {
		return nil, fmt.Errorf("inference: unexpected logits shape %v", shape)
	}
	classes := int(shape[1])
	data := logitsTensor.GetData()

	probs := make([][]float64, len(features))
	for i := range probs {
		probs[i] = softmax(data[i*classes : (i+1)*classes])
	}
	return probs, nil
}

// softmax converts one row of logits to probabilities, numerically stable.
func softmax(logits []float32) []float64 {
	max := math.Inf(-1)
	for _, v := range logits {
		if float64(v) > max {
			max = float64(v)
		}
	}
	out := make([]float64, len(logits))
	var sum float64
	for i, v := range logits {
		out[i] = math.Exp(float64(v) - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// Close releases ONNX resources.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if s.session != nil {
		return s.session.Destroy()
	}
	return nil
}
