// Copyright 2026 Strata ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the public API for Strata optimizers.
//
// Optimizers read gradients straight from layer parameters and update
// parameter values in place; their internal state round-trips through
// StateDict/LoadStateDict for checkpointing.
package optim

import (
	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/internal/optim"
	"github.com/strata-ml/strata/tensor"
)

// Optimizer is the interface all optimization algorithms implement.
type Optimizer[B tensor.Backend] = optim.Optimizer[B]

// SGD represents stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig contains configuration for the SGD optimizer.
type SGDConfig = optim.SGDConfig

// NewSGD creates a new SGD optimizer.
//
// Example:
//
//	optimizer := optim.NewSGD(m.Parameters(), optim.SGDConfig{
//	    LR:       0.01,
//	    Momentum: 0.9,
//	})
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Adam represents the Adam optimizer.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig contains configuration for the Adam optimizer.
type AdamConfig = optim.AdamConfig

// NewAdam creates a new Adam optimizer.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return optim.NewAdam(params, config)
}

// AdamW represents Adam with decoupled weight decay.
type AdamW[B tensor.Backend] = optim.AdamW[B]

// AdamWConfig contains configuration for the AdamW optimizer.
type AdamWConfig = optim.AdamWConfig

// NewAdamW creates a new AdamW optimizer.
func NewAdamW[B tensor.Backend](params []*nn.Parameter[B], config AdamWConfig) *AdamW[B] {
	return optim.NewAdamW(params, config)
}
