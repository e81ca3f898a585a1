package nn

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// Activation names accepted by Dense.
const (
	ActivationNone    = ""
	ActivationReLU    = "relu"
	ActivationSigmoid = "sigmoid"
	ActivationTanh    = "tanh"
)

// Dense implements a fully connected layer: y = act(x @ W.T + b).
//
// Shapes:
//   - x: [batch, in_features]
//   - W: [out_features, in_features]
//   - b: [out_features]
//   - y: [batch, out_features]
//
// Weights use Xavier initialization, biases start at zero. The optional
// fused activation is one of "", "relu", "sigmoid", "tanh".
type Dense[B tensor.Backend] struct {
	inFeatures  int
	outFeatures int
	activation  string
	weight      *Parameter[B]
	bias        *Parameter[B] // nil when built without bias
	backend     B

	// caches for Backward
	input  *tensor.Tensor[float32, B]
	preact *tensor.Tensor[float32, B]
	output *tensor.Tensor[float32, B]
}

// NewDense creates a Dense layer with bias and no fused activation.
func NewDense[B tensor.Backend](inFeatures, outFeatures int, backend B) *Dense[B] {
	return NewDenseWith(inFeatures, outFeatures, true, ActivationNone, backend)
}

// NewDenseWith creates a Dense layer with explicit bias and activation
// settings.
func NewDenseWith[B tensor.Backend](inFeatures, outFeatures int, useBias bool, activation string, backend B) *Dense[B] {
	switch activation {
	case ActivationNone, ActivationReLU, ActivationSigmoid, ActivationTanh:
	default:
		panic(fmt.Sprintf("Dense: unsupported activation %q", activation))
	}

	weight := NewParameter("weight", Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, backend))

	var bias *Parameter[B]
	if useBias {
		bias = NewParameter("bias", Zeros[B](tensor.Shape{outFeatures}, backend))
	}

	return &Dense[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		activation:  activation,
		weight:      weight,
		bias:        bias,
		backend:     backend,
	}
}

// Forward computes act(x @ W.T + b).
func (l *Dense[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("Dense.Forward: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != l.inFeatures {
		panic(fmt.Sprintf("Dense.Forward: expected input with %d features, got %d", l.inFeatures, shape[1]))
	}

	l.input = input

	// x @ W.T: [batch, in] @ [in, out] -> [batch, out]
	z := input.MatMul(l.weight.Tensor().T())
	if l.bias != nil {
		z = z.Add(l.bias.Tensor().Reshape(1, l.outFeatures))
	}
	l.preact = z

	out := z
	switch l.activation {
	case ActivationReLU:
		out = tensor.New[float32, B](l.backend.ReLU(z.Raw()), l.backend)
	case ActivationSigmoid:
		out = tensor.New[float32, B](l.backend.Sigmoid(z.Raw()), l.backend)
	case ActivationTanh:
		out = tensor.New[float32, B](l.backend.Tanh(z.Raw()), l.backend)
	}
	l.output = out

	return out
}

// Backward computes gradients for weight, bias and input.
func (l *Dense[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if l.input == nil {
		panic("Dense.Backward: called before Forward")
	}

	// Gradient through the fused activation.
	gradZ := grad
	switch l.activation {
	case ActivationReLU:
		mask := tensor.New[float32, B](l.backend.ReLUGrad(l.preact.Raw()), l.backend)
		gradZ = grad.Mul(mask)
	case ActivationSigmoid:
		// d sigmoid = y * (1 - y)
		y := l.output
		gradZ = grad.Mul(y.Mul(y.MulScalar(-1).AddScalar(1)))
	case ActivationTanh:
		// d tanh = 1 - y^2
		y := l.output
		gradZ = grad.Mul(y.Mul(y).MulScalar(-1).AddScalar(1))
	}

	// dW = gradZ.T @ x: [out, batch] @ [batch, in] -> [out, in]
	l.weight.AddGrad(gradZ.T().MatMul(l.input))

	// db = sum over batch: [batch, out] -> [out]
	if l.bias != nil {
		l.bias.AddGrad(gradZ.SumDim(0, false))
	}

	// dx = gradZ @ W: [batch, out] @ [out, in] -> [batch, in]
	return gradZ.MatMul(l.weight.Tensor())
}

// Parameters returns [weight, bias] or [weight] when built without bias.
func (l *Dense[B]) Parameters() []*Parameter[B] {
	if l.bias != nil {
		return []*Parameter[B]{l.weight, l.bias}
	}
	return []*Parameter[B]{l.weight}
}

// Weight returns the weight parameter.
func (l *Dense[B]) Weight() *Parameter[B] {
	return l.weight
}

// Bias returns the bias parameter, or nil when built without bias.
func (l *Dense[B]) Bias() *Parameter[B] {
	return l.bias
}

// InFeatures returns the number of input features.
func (l *Dense[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the number of output features.
func (l *Dense[B]) OutFeatures() int {
	return l.outFeatures
}

// Config returns the constructor description of this layer.
func (l *Dense[B]) Config() LayerConfig {
	useBias := l.bias != nil
	return LayerConfig{
		Type:        LayerDense,
		InFeatures:  l.inFeatures,
		OutFeatures: l.outFeatures,
		Bias:        &useBias,
		Activation:  l.activation,
	}
}

// StateDict returns the layer's weights by name.
func (l *Dense[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := map[string]*tensor.RawTensor{
		"weight": l.weight.Tensor().Raw(),
	}
	if l.bias != nil {
		stateDict["bias"] = l.bias.Tensor().Raw()
	}
	return stateDict
}

// LoadStateDict loads weights, validating shape and dtype.
func (l *Dense[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if err := loadParam(stateDict, "weight", l.weight, tensor.Shape{l.outFeatures, l.inFeatures}); err != nil {
		return err
	}
	if l.bias != nil {
		if err := loadParam(stateDict, "bias", l.bias, tensor.Shape{l.outFeatures}); err != nil {
			return err
		}
	}
	return nil
}

// loadParam copies a named tensor from a state dict into a parameter after
// validating shape and dtype.
func loadParam[B tensor.Backend](stateDict map[string]*tensor.RawTensor, name string, param *Parameter[B], expectedShape tensor.Shape) error {
	raw, ok := stateDict[name]
	if !ok {
		return fmt.Errorf("missing %s in state dict", name)
	}
	if !raw.Shape().Equal(expectedShape) {
		return fmt.Errorf("%s shape mismatch: expected %v, got %v", name, expectedShape, raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		return fmt.Errorf("%s dtype mismatch: expected float32, got %v", name, raw.DType())
	}
	copy(param.Tensor().Data(), raw.AsFloat32())
	return nil
}
