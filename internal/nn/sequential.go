package nn

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/strata-ml/strata/internal/tensor"
)

// Sequential chains layers so that each layer's output feeds the next.
// It is itself a Layer, so stacks nest.
type Sequential[B tensor.Backend] struct {
	layers []Layer[B]
}

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](layers ...Layer[B]) *Sequential[B] {
	return &Sequential[B]{layers: layers}
}

// Add appends a layer to the stack.
func (s *Sequential[B]) Add(layer Layer[B]) {
	s.layers = append(s.layers, layer)
}

// Len returns the number of layers.
func (s *Sequential[B]) Len() int {
	return len(s.layers)
}

// Layer returns the layer at the given index.
func (s *Sequential[B]) Layer(index int) Layer[B] {
	if index < 0 || index >= len(s.layers) {
		panic("Sequential.Layer: index out of bounds")
	}
	return s.layers[index]
}

// Layers returns the underlying layer slice.
func (s *Sequential[B]) Layers() []Layer[B] {
	return s.layers
}

// Forward applies all layers in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	output := input
	for _, layer := range s.layers {
		output = layer.Forward(output)
	}
	return output
}

// Backward propagates the gradient through the layers in reverse order.
func (s *Sequential[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	for i := len(s.layers) - 1; i >= 0; i-- {
		grad = s.layers[i].Backward(grad)
	}
	return grad
}

// Parameters collects parameters from all layers in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, layer := range s.layers {
		params = append(params, layer.Parameters()...)
	}
	return params
}

// SetTraining propagates the training mode to all mode-aware layers.
func (s *Sequential[B]) SetTraining(training bool) {
	for _, layer := range s.layers {
		if m, ok := any(layer).(ModeLayer); ok {
			m.SetTraining(training)
		}
	}
}

// Config returns a nested description of the stack.
func (s *Sequential[B]) Config() LayerConfig {
	cfg := LayerConfig{Type: LayerSequential}
	for _, layer := range s.layers {
		cfg.Sublayers = append(cfg.Sublayers, layer.Config())
	}
	return cfg
}

// StateDict returns all layer weights, keyed "index.name" to avoid
// collisions between layers.
func (s *Sequential[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i, layer := range s.layers {
		for name, raw := range layer.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return stateDict
}

// LoadStateDict loads weights into each layer by its "index." prefix.
// The state dict must cover every parameter of every layer exactly: missing
// tensors, surplus tensors and tensors addressed to stateless layers are all
// errors, so an incomplete file can never leave a layer on its random
// initialization.
func (s *Sequential[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	perLayer := make([]map[string]*tensor.RawTensor, len(s.layers))
	for key, raw := range stateDict {
		idxStr, rest, found := strings.Cut(key, ".")
		if !found {
			return fmt.Errorf("malformed state dict key %q: expected \"index.name\"", key)
		}
		idx, err := strconv.Atoi(idxStr)
		if err != nil || idx < 0 || idx >= len(s.layers) {
			return fmt.Errorf("state dict key %q does not address a layer (have %d layers)", key, len(s.layers))
		}
		if perLayer[idx] == nil {
			perLayer[idx] = make(map[string]*tensor.RawTensor)
		}
		perLayer[idx][rest] = raw
	}

	for i, layer := range s.layers {
		expected := layer.StateDict()
		for name := range perLayer[i] {
			if _, ok := expected[name]; !ok {
				return fmt.Errorf("layer %d has no parameter %q", i, name)
			}
		}
		if len(expected) == 0 {
			continue
		}
		if err := layer.LoadStateDict(perLayer[i]); err != nil {
			return fmt.Errorf("failed to load layer %d: %w", i, err)
		}
	}
	return nil
}
