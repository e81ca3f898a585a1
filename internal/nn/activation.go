package nn

import (
	"github.com/strata-ml/strata/internal/tensor"
)

// statelessStateDict is shared by layers without weights.
func statelessStateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{}
}

// ReLU applies f(x) = max(0, x) element-wise.
type ReLU[B tensor.Backend] struct {
	input *tensor.Tensor[float32, B]
}

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies the activation.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	r.input = input
	return tensor.New[float32, B](input.Backend().ReLU(input.Raw()), input.Backend())
}

// Backward masks the gradient where the input was non-positive.
func (r *ReLU[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mask := tensor.New[float32, B](r.input.Backend().ReLUGrad(r.input.Raw()), r.input.Backend())
	return grad.Mul(mask)
}

// Parameters returns nil (no trainable parameters).
func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }

// Config returns the constructor description.
func (r *ReLU[B]) Config() LayerConfig { return LayerConfig{Type: LayerReLU} }

// StateDict returns an empty map.
func (r *ReLU[B]) StateDict() map[string]*tensor.RawTensor { return statelessStateDict() }

// LoadStateDict is a no-op for stateless layers.
func (r *ReLU[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Sigmoid applies f(x) = 1 / (1 + exp(-x)) element-wise.
type Sigmoid[B tensor.Backend] struct {
	output *tensor.Tensor[float32, B]
}

// NewSigmoid creates a Sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies the activation.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	s.output = tensor.New[float32, B](input.Backend().Sigmoid(input.Raw()), input.Backend())
	return s.output
}

// Backward applies d/dx = y * (1 - y), computed from the cached output.
func (s *Sigmoid[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y := s.output
	return grad.Mul(y.Mul(y.MulScalar(-1).AddScalar(1)))
}

// Parameters returns nil (no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] { return nil }

// Config returns the constructor description.
func (s *Sigmoid[B]) Config() LayerConfig { return LayerConfig{Type: LayerSigmoid} }

// StateDict returns an empty map.
func (s *Sigmoid[B]) StateDict() map[string]*tensor.RawTensor { return statelessStateDict() }

// LoadStateDict is a no-op for stateless layers.
func (s *Sigmoid[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Tanh applies the hyperbolic tangent element-wise.
type Tanh[B tensor.Backend] struct {
	output *tensor.Tensor[float32, B]
}

// NewTanh creates a Tanh activation layer.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies the activation.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	t.output = tensor.New[float32, B](input.Backend().Tanh(input.Raw()), input.Backend())
	return t.output
}

// Backward applies d/dx = 1 - y^2, computed from the cached output.
func (t *Tanh[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y := t.output
	return grad.Mul(y.Mul(y).MulScalar(-1).AddScalar(1))
}

// Parameters returns nil (no trainable parameters).
func (t *Tanh[B]) Parameters() []*Parameter[B] { return nil }

// Config returns the constructor description.
func (t *Tanh[B]) Config() LayerConfig { return LayerConfig{Type: LayerTanh} }

// StateDict returns an empty map.
func (t *Tanh[B]) StateDict() map[string]*tensor.RawTensor { return statelessStateDict() }

// LoadStateDict is a no-op for stateless layers.
func (t *Tanh[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }

// Softmax normalizes each row of a 2D input into a probability distribution.
//
// When classification models train with cross-entropy, prefer leaving logits
// unnormalized and using the fused loss; a trailing Softmax layer is for
// models that must emit probabilities.
type Softmax[B tensor.Backend] struct {
	output *tensor.Tensor[float32, B]
}

// NewSoftmax creates a Softmax layer over the last dimension.
func NewSoftmax[B tensor.Backend]() *Softmax[B] {
	return &Softmax[B]{}
}

// Forward applies row-wise softmax.
func (s *Softmax[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	s.output = input.Softmax(-1)
	return s.output
}

// Backward applies the softmax Jacobian: dx = y * (g - sum(g * y)).
func (s *Softmax[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	y := s.output
	dot := grad.Mul(y).SumDim(-1, true) // [batch, 1]
	return y.Mul(grad.Sub(dot))
}

// Parameters returns nil (no trainable parameters).
func (s *Softmax[B]) Parameters() []*Parameter[B] { return nil }

// Config returns the constructor description.
func (s *Softmax[B]) Config() LayerConfig { return LayerConfig{Type: LayerSoftmax} }

// StateDict returns an empty map.
func (s *Softmax[B]) StateDict() map[string]*tensor.RawTensor { return statelessStateDict() }

// LoadStateDict is a no-op for stateless layers.
func (s *Softmax[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
