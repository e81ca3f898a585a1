package nn

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// Flatten reshapes [batch, d1, d2, ...] input into [batch, d1*d2*...].
// 2D input passes through unchanged.
type Flatten[B tensor.Backend] struct {
	inputShape tensor.Shape
}

// NewFlatten creates a Flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward flattens all dimensions after the batch dimension.
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("Flatten.Forward: expected at least 2D input, got shape %v", shape))
	}
	f.inputShape = shape.Clone()
	if len(shape) == 2 {
		return input
	}
	return input.Reshape(shape[0], shape.NumElements()/shape[0])
}

// Backward restores the original input shape.
func (f *Flatten[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(f.inputShape) == 2 {
		return grad
	}
	return grad.Reshape(f.inputShape...)
}

// Parameters returns nil (no trainable parameters).
func (f *Flatten[B]) Parameters() []*Parameter[B] { return nil }

// Config returns the constructor description.
func (f *Flatten[B]) Config() LayerConfig { return LayerConfig{Type: LayerFlatten} }

// StateDict returns an empty map.
func (f *Flatten[B]) StateDict() map[string]*tensor.RawTensor { return statelessStateDict() }

// LoadStateDict is a no-op for stateless layers.
func (f *Flatten[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
