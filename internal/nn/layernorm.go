package nn

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// LayerNorm normalizes each row of a 2D input over its features:
//
//	y = gamma * (x - mean(x)) / sqrt(var(x) + eps) + beta
//
// gamma starts at ones and beta at zeros, so a fresh LayerNorm is close to
// the identity up to normalization.
type LayerNorm[B tensor.Backend] struct {
	normSize int
	epsilon  float32
	gamma    *Parameter[B] // scale [normSize]
	beta     *Parameter[B] // shift [normSize]
	backend  B

	// caches for Backward
	xhat   *tensor.Tensor[float32, B] // normalized input [batch, normSize]
	invStd *tensor.Tensor[float32, B] // 1/sqrt(var+eps) [batch, 1]
}

// NewLayerNorm creates a LayerNorm over the last dimension of size normSize.
// An epsilon of 0 defaults to 1e-5.
func NewLayerNorm[B tensor.Backend](normSize int, epsilon float32, backend B) *LayerNorm[B] {
	if epsilon == 0 {
		epsilon = 1e-5
	}
	return &LayerNorm[B]{
		normSize: normSize,
		epsilon:  epsilon,
		gamma:    NewParameter("gamma", Ones[B](tensor.Shape{normSize}, backend)),
		beta:     NewParameter("beta", Zeros[B](tensor.Shape{normSize}, backend)),
		backend:  backend,
	}
}

// Forward normalizes each row and applies the learned scale and shift.
func (l *LayerNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	if len(shape) != 2 || shape[1] != l.normSize {
		panic(fmt.Sprintf("LayerNorm.Forward: expected input [batch, %d], got shape %v", l.normSize, shape))
	}

	mean := x.MeanDim(-1, true)                          // [batch, 1]
	centered := x.Sub(mean)                              // [batch, normSize]
	variance := centered.Mul(centered).MeanDim(-1, true) // [batch, 1]
	std := variance.AddScalar(l.epsilon).Sqrt()
	l.invStd = tensor.Ones[float32](std.Shape(), l.backend).Div(std)
	l.xhat = centered.Mul(l.invStd)

	gamma := l.gamma.Tensor().Reshape(1, l.normSize)
	beta := l.beta.Tensor().Reshape(1, l.normSize)
	return l.xhat.Mul(gamma).Add(beta)
}

// Backward computes gradients for gamma, beta and the input.
//
// With N = normSize, xhat the normalized input and dxhat = grad * gamma:
//
//	dx = invStd/N * (N*dxhat - sum(dxhat) - xhat * sum(dxhat*xhat))
func (l *LayerNorm[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if l.xhat == nil {
		panic("LayerNorm.Backward: called before Forward")
	}

	l.gamma.AddGrad(grad.Mul(l.xhat).SumDim(0, false))
	l.beta.AddGrad(grad.SumDim(0, false))

	n := float32(l.normSize)
	gamma := l.gamma.Tensor().Reshape(1, l.normSize)
	dxhat := grad.Mul(gamma)

	sum1 := dxhat.SumDim(-1, true)             // [batch, 1]
	sum2 := dxhat.Mul(l.xhat).SumDim(-1, true) // [batch, 1]

	inner := dxhat.MulScalar(n).Sub(sum1).Sub(l.xhat.Mul(sum2))
	return inner.Mul(l.invStd).MulScalar(1 / n)
}

// Parameters returns [gamma, beta].
func (l *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.gamma, l.beta}
}

// Gamma returns the scale parameter.
func (l *LayerNorm[B]) Gamma() *Parameter[B] { return l.gamma }

// Beta returns the shift parameter.
func (l *LayerNorm[B]) Beta() *Parameter[B] { return l.beta }

// Config returns the constructor description.
func (l *LayerNorm[B]) Config() LayerConfig {
	return LayerConfig{Type: LayerLayerNorm, NormSize: l.normSize, Epsilon: l.epsilon}
}

// StateDict returns gamma and beta by name.
func (l *LayerNorm[B]) StateDict() map[string]*tensor.RawTensor {
	return map[string]*tensor.RawTensor{
		"gamma": l.gamma.Tensor().Raw(),
		"beta":  l.beta.Tensor().Raw(),
	}
}

// LoadStateDict loads gamma and beta, validating shapes.
func (l *LayerNorm[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadParam(stateDict, "gamma", l.gamma, tensor.Shape{l.normSize}); err != nil {
		return err
	}
	return loadParam(stateDict, "beta", l.beta, tensor.Shape{l.normSize})
}
