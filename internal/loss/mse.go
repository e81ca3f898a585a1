package loss

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// MSE computes mean squared error: mean((pred - target)^2) over all
// elements. Standard choice for regression targets.
type MSE[B tensor.Backend] struct{}

// NewMSE creates an MSE loss.
func NewMSE[B tensor.Backend]() *MSE[B] {
	return &MSE[B]{}
}

// Name returns "mse".
func (m *MSE[B]) Name() string { return "mse" }

// Forward computes the mean squared error.
func (m *MSE[B]) Forward(pred, target *tensor.Tensor[float32, B]) float32 {
	checkShapes("MSE", pred, target)

	p := pred.Data()
	t := target.Data()
	var sum float64
	for i := range p {
		d := float64(p[i] - t[i])
		sum += d * d
	}
	return float32(sum / float64(len(p)))
}

// Backward computes dLoss/dPred = 2*(pred - target)/n, where n is the total
// element count.
func (m *MSE[B]) Backward(pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkShapes("MSE", pred, target)

	scale := 2.0 / float32(pred.NumElements())
	return pred.Sub(target).MulScalar(scale)
}

func checkShapes[B tensor.Backend](name string, pred, target *tensor.Tensor[float32, B]) {
	if !pred.Shape().Equal(target.Shape()) {
		panic(fmt.Sprintf("%s: predictions and targets must have the same shape, got %v and %v",
			name, pred.Shape(), target.Shape()))
	}
}
