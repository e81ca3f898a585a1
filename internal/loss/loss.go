// Package loss implements the loss functions used to train Strata models.
//
// A Loss pairs a scalar objective with its gradient w.r.t. the model output,
// which seeds the backward pass through the layer stack.
package loss

import (
	"github.com/strata-ml/strata/internal/tensor"
)

// Loss is the interface all loss functions implement.
type Loss[B tensor.Backend] interface {
	// Name returns a stable identifier (used in model configs).
	Name() string

	// Forward computes the scalar loss for a batch of predictions.
	Forward(pred, target *tensor.Tensor[float32, B]) float32

	// Backward computes dLoss/dPred with the same shape as pred.
	Backward(pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
}
