// Package optim implements the optimizers used to train Strata models.
//
// Optimizers read gradients straight from layer parameters (filled in by the
// backward pass) and update parameter values in place. All optimizers carry
// their internal state through StateDict/LoadStateDict so that training can
// resume from a checkpoint without losing momentum or moment estimates.
//
// Example usage:
//
//	optimizer := optim.NewAdam(m.Parameters(), optim.AdamConfig{LR: 0.001})
//
//	for epoch := 0; epoch < epochs; epoch++ {
//	    out := m.Forward(input)
//	    grad := lossFn.Backward(out, targets)
//	    m.Backward(grad)
//	    optimizer.Step()
//	    optimizer.ZeroGrad()
//	}
package optim

import (
	"github.com/strata-ml/strata/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer[B tensor.Backend] interface {
	// Step applies one update to all trainable parameters that have a
	// gradient. Parameters without a gradient are skipped.
	Step()

	// ZeroGrad clears all parameter gradients. Call between steps to
	// prevent gradients accumulating across batches.
	ZeroGrad()

	// Name returns a stable identifier ("sgd", "adam", ...), recorded in
	// checkpoint metadata.
	Name() string

	// GetLR returns the current learning rate.
	GetLR() float32

	// SetLR updates the learning rate (for scheduling).
	SetLR(lr float32)

	// StateDict exports optimizer state (momentum buffers, moments) for
	// checkpointing.
	StateDict() map[string]*tensor.RawTensor

	// LoadStateDict restores optimizer state from a checkpoint.
	LoadStateDict(stateDict map[string]*tensor.RawTensor) error

	// Config returns the hyperparameters as a generic map, recorded in
	// checkpoint metadata.
	Config() map[string]any
}
