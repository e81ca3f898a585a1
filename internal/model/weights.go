package model

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// Weights returns copies of all parameter tensors in layer order (within a
// layer, the order its Parameters method defines). The copies do not alias
// model memory.
func (m *Model[B]) Weights() []*tensor.RawTensor {
	params := m.Parameters()
	weights := make([]*tensor.RawTensor, len(params))
	for i, p := range params {
		weights[i] = p.Tensor().Raw().Clone()
	}
	return weights
}

// SetWeights replaces all parameters from an ordered list of tensors, as
// returned by Weights on a model with the same architecture. The count must
// match exactly and every tensor must match its parameter's shape; a
// mismatch error names the offending index and parameter.
func (m *Model[B]) SetWeights(weights []*tensor.RawTensor) error {
	params := m.Parameters()
	if len(weights) != len(params) {
		return fmt.Errorf("weight count mismatch: model has %d parameters, got %d tensors",
			len(params), len(weights))
	}
	for i, p := range params {
		if !weights[i].Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("weight %d (%q): shape mismatch: expected %v, got %v",
				i, p.Name(), p.Tensor().Shape(), weights[i].Shape())
		}
	}
	// All shapes verified; now mutate.
	for i, p := range params {
		if err := p.Tensor().Raw().CopyFrom(weights[i]); err != nil {
			return fmt.Errorf("weight %d (%q): %w", i, p.Name(), err)
		}
	}
	return nil
}

// StateDict returns all weights keyed "layerIndex.paramName".
func (m *Model[B]) StateDict() map[string]*tensor.RawTensor {
	return m.stack.StateDict()
}

// LoadStateDict loads named weights into the stack, validating shapes.
func (m *Model[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	return m.stack.LoadStateDict(stateDict)
}
