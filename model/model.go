// Copyright 2026 Strata ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides the public API for building, training and
// persisting Strata models.
//
// Example:
//
//	backend := cpu.New()
//	m := model.NewWithLayers("xor", backend,
//	    nn.NewDenseWith(2, 8, true, "tanh", backend),
//	    nn.NewDense(8, 1, backend),
//	    nn.NewSigmoid[*cpu.Backend](),
//	)
//	m.Compile(optim.NewSGD(m.Parameters(), optim.SGDConfig{LR: 0.5}), loss.NewMSE[*cpu.Backend]())
//	history, err := m.Fit(x, y, model.FitConfig{Epochs: 500, BatchSize: 4})
//	...
//	err = m.Save("xor.strata")
package model

import (
	"github.com/strata-ml/strata/internal/model"
	"github.com/strata-ml/strata/nn"
	"github.com/strata-ml/strata/tensor"
)

// Model is a sequential stack of layers with training and persistence
// attached.
type Model[B tensor.Backend] = model.Model[B]

// Config is the serializable architecture description of a model.
type Config = model.Config

// FitConfig controls the training loop.
type FitConfig = model.FitConfig

// History records training progress, one entry per epoch.
type History = model.History

// New creates an empty model.
func New[B tensor.Backend](name string, backend B) *Model[B] {
	return model.New(name, backend)
}

// NewWithLayers creates a model from an initial layer stack.
func NewWithLayers[B tensor.Backend](name string, backend B, layers ...nn.Layer[B]) *Model[B] {
	return model.NewWithLayers(name, backend, layers...)
}

// FromConfig rebuilds an untrained model from an architecture description.
func FromConfig[B tensor.Backend](cfg Config, backend B) (*Model[B], error) {
	return model.FromConfig(cfg, backend)
}

// ConfigFromJSON parses a model config.
func ConfigFromJSON(data []byte) (Config, error) {
	return model.ConfigFromJSON(data)
}

// Load reads a full model saved with Save: the architecture is rebuilt from
// the embedded config, then the weights are loaded into it.
func Load[B tensor.Backend](path string, backend B) (*Model[B], error) {
	return model.Load(path, backend)
}
