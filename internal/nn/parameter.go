package nn

import (
	"github.com/strata-ml/strata/internal/tensor"
)

// Parameter represents a named weight tensor of a layer.
//
// A parameter is usually trainable; frozen layers mark theirs non-trainable
// and optimizers skip them. The gradient slot is filled by the layer's
// Backward pass and cleared by the optimizer between steps.
type Parameter[B tensor.Backend] struct {
	name      string
	tensor    *tensor.Tensor[float32, B]
	grad      *tensor.Tensor[float32, B]
	trainable bool
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:      name,
		tensor:    t,
		trainable: true,
	}
}

// Name returns the parameter name (e.g. "weight", "bias").
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before the first backward pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad replaces the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// AddGrad accumulates into the gradient slot, setting it if empty.
func (p *Parameter[B]) AddGrad(grad *tensor.Tensor[float32, B]) {
	if p.grad == nil {
		p.grad = grad
		return
	}
	p.grad = p.grad.Add(grad)
}

// ZeroGrad clears the gradient.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// Trainable reports whether the optimizer should update this parameter.
func (p *Parameter[B]) Trainable() bool {
	return p.trainable
}

// SetTrainable marks the parameter trainable or frozen.
func (p *Parameter[B]) SetTrainable(trainable bool) {
	p.trainable = trainable
}
