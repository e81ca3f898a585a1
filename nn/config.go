// Copyright 2026 Strata ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/tensor"
)

// LayerConfig is the serializable description of a layer's constructor
// arguments. It carries architecture only, never weights.
type LayerConfig = nn.LayerConfig

// Layer type names used in configs and by the registry.
const (
	LayerDense      = nn.LayerDense
	LayerReLU       = nn.LayerReLU
	LayerSigmoid    = nn.LayerSigmoid
	LayerTanh       = nn.LayerTanh
	LayerSoftmax    = nn.LayerSoftmax
	LayerDropout    = nn.LayerDropout
	LayerLayerNorm  = nn.LayerLayerNorm
	LayerFlatten    = nn.LayerFlatten
	LayerSequential = nn.LayerSequential
)

// BuilderFunc constructs an untrained layer from its config.
type BuilderFunc[B tensor.Backend] = nn.BuilderFunc[B]

// RegisterLayer registers a builder for a custom layer type so that models
// containing it can be rebuilt from config.
func RegisterLayer[B tensor.Backend](name string, builder BuilderFunc[B]) error {
	return nn.RegisterLayer(name, builder)
}

// BuildLayer constructs an untrained layer from its config.
func BuildLayer[B tensor.Backend](cfg LayerConfig, backend B) (Layer[B], error) {
	return nn.BuildLayer(cfg, backend)
}

// KnownLayerTypes lists built-in and registered layer type names, sorted.
func KnownLayerTypes() []string {
	return nn.KnownLayerTypes()
}
