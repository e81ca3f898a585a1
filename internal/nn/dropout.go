package nn

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// Dropout randomly zeroes elements during training with probability rate,
// scaling survivors by 1/(1-rate) so the expected activation is unchanged
// (inverted dropout). In eval mode it is the identity.
type Dropout[B tensor.Backend] struct {
	rate     float32
	training bool
	mask     *tensor.Tensor[float32, B]
}

// NewDropout creates a Dropout layer. Rate must be in [0, 1).
func NewDropout[B tensor.Backend](rate float32) *Dropout[B] {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("Dropout: rate must be in [0, 1), got %v", rate))
	}
	return &Dropout[B]{rate: rate}
}

// Rate returns the drop probability.
func (d *Dropout[B]) Rate() float32 {
	return d.rate
}

// SetTraining switches between train and eval behavior.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Forward applies the dropout mask in training mode, identity otherwise.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.rate == 0 {
		d.mask = nil
		return input
	}

	scale := 1 / (1 - d.rate)
	mask := tensor.Zeros[float32](input.Shape(), input.Backend())
	maskData := mask.Data()
	for i := range maskData {
		if float32(tensor.RandFloat()) >= d.rate {
			maskData[i] = scale
		}
	}
	d.mask = mask

	return input.Mul(mask)
}

// Backward passes the gradient through the same mask used in Forward.
func (d *Dropout[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if d.mask == nil {
		return grad
	}
	return grad.Mul(d.mask)
}

// Parameters returns nil (no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] { return nil }

// Config returns the constructor description.
func (d *Dropout[B]) Config() LayerConfig {
	return LayerConfig{Type: LayerDropout, Rate: d.rate}
}

// StateDict returns an empty map.
func (d *Dropout[B]) StateDict() map[string]*tensor.RawTensor { return statelessStateDict() }

// LoadStateDict is a no-op for stateless layers.
func (d *Dropout[B]) LoadStateDict(map[string]*tensor.RawTensor) error { return nil }
