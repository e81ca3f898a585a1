// Package nn implements the layer building blocks of the Strata framework.
//
// A Layer owns zero or more named parameters and a transformation from an
// input tensor to an output tensor. Layers are composed into models; the
// architecture of a layer (its Config) and its learned state (its state
// dict) are kept orthogonal and serialize independently.
package nn

import (
	"github.com/strata-ml/strata/internal/tensor"
)

// Layer is the base interface for all network building blocks.
//
// Forward and Backward form the training contract: Forward may cache
// whatever Backward needs, and Backward consumes the gradient of the loss
// with respect to this layer's output, fills in parameter gradients, and
// returns the gradient with respect to its input.
//
// Config, StateDict and LoadStateDict form the lifecycle contract:
// Config describes how to rebuild an untrained copy of the layer, while the
// state dict carries its weights. Rebuilding from config and loading a state
// dict reconstructs the layer exactly, provided every shape matches.
//
// Type parameter B must satisfy the tensor.Backend interface.
type Layer[B tensor.Backend] interface {
	// Forward computes the output of the layer given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Backward propagates the output gradient through the layer.
	// It must be called after Forward; parameter gradients are accumulated
	// into the layer's Parameters.
	Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all parameters of this layer, in a fixed order
	// that is stable across construction, saving, and loading.
	Parameters() []*Parameter[B]

	// Config returns a serializable description of the layer's constructor
	// arguments, sufficient to rebuild an untrained instance.
	Config() LayerConfig

	// StateDict returns a map of parameter names to raw tensors.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict loads parameters from a state dictionary, validating
	// shapes and dtypes.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error
}

// ModeLayer is implemented by layers whose behavior differs between training
// and inference (e.g. Dropout). Models flip all mode layers on Fit/Predict.
type ModeLayer interface {
	SetTraining(training bool)
}
