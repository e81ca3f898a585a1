// Copyright 2026 Strata ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the public API for neural network layers in the
// Strata ML framework.
//
// A Layer owns named weight tensors and a transformation from input to
// output. Its architecture (Config) and learned state (state dict) are
// orthogonal: configs rebuild untrained layers, state dicts carry weights,
// and the two recombine only when every shape matches.
package nn

import (
	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/tensor"
)

// Layer is the base interface for all network building blocks.
type Layer[B tensor.Backend] = nn.Layer[B]

// ModeLayer is implemented by layers whose behavior differs between training
// and inference (e.g. Dropout).
type ModeLayer = nn.ModeLayer

// Parameter represents a named weight tensor of a layer.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Dense represents a fully connected layer with an optional fused
// activation.
type Dense[B tensor.Backend] = nn.Dense[B]

// NewDense creates a dense layer with bias and no activation, using Xavier
// initialization.
//
// Example:
//
//	backend := cpu.New()
//	layer := nn.NewDense(784, 128, backend)
func NewDense[B tensor.Backend](inFeatures, outFeatures int, backend B) *Dense[B] {
	return nn.NewDense(inFeatures, outFeatures, backend)
}

// NewDenseWith creates a dense layer with explicit bias and activation
// settings. Supported activations: "", "relu", "sigmoid", "tanh".
func NewDenseWith[B tensor.Backend](inFeatures, outFeatures int, useBias bool, activation string, backend B) *Dense[B] {
	return nn.NewDenseWith(inFeatures, outFeatures, useBias, activation, backend)
}

// ReLU is the rectified linear activation layer.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Sigmoid is the logistic activation layer.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation layer.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Tanh is the hyperbolic tangent activation layer.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh activation layer.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return nn.NewTanh[B]()
}

// Softmax normalizes the last dimension into a probability distribution.
type Softmax[B tensor.Backend] = nn.Softmax[B]

// NewSoftmax creates a Softmax layer.
func NewSoftmax[B tensor.Backend]() *Softmax[B] {
	return nn.NewSoftmax[B]()
}

// Dropout randomly zeroes inputs during training (inverted dropout).
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a Dropout layer with the given drop rate in [0, 1).
func NewDropout[B tensor.Backend](rate float32) *Dropout[B] {
	return nn.NewDropout[B](rate)
}

// LayerNorm normalizes the last dimension with learned scale and shift.
type LayerNorm[B tensor.Backend] = nn.LayerNorm[B]

// NewLayerNorm creates a LayerNorm over the given feature size.
// An epsilon of 0 selects the default 1e-5.
func NewLayerNorm[B tensor.Backend](normSize int, epsilon float32, backend B) *LayerNorm[B] {
	return nn.NewLayerNorm(normSize, epsilon, backend)
}

// Flatten reshapes [batch, d1, d2, ...] to [batch, d1*d2*...].
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a Flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Sequential chains layers so that each layer's output feeds the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](layers ...Layer[B]) *Sequential[B] {
	return nn.NewSequential(layers...)
}
