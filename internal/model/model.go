// Package model implements the Model type: a named stack of layers with a
// Keras-style train/predict/persist surface.
//
// A model's architecture (its Config) and its learned weights are orthogonal:
// configs serialize to JSON without weights, weights serialize to state dicts
// without structure, and the two recombine only when every shape matches.
package model

import (
	"fmt"
	"strings"

	"github.com/strata-ml/strata/internal/loss"
	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/internal/optim"
	"github.com/strata-ml/strata/internal/tensor"
)

// Model is a sequential stack of layers with training and persistence
// attached. Compile binds an optimizer and a loss before Fit.
type Model[B tensor.Backend] struct {
	name      string
	stack     *nn.Sequential[B]
	backend   B
	optimizer optim.Optimizer[B]
	lossFn    loss.Loss[B]
	step      int64 // total optimizer steps taken, carried into checkpoints
}

// New creates an empty model.
func New[B tensor.Backend](name string, backend B) *Model[B] {
	return &Model[B]{
		name:    name,
		stack:   nn.NewSequential[B](),
		backend: backend,
	}
}

// NewWithLayers creates a model from an initial layer stack.
func NewWithLayers[B tensor.Backend](name string, backend B, layers ...nn.Layer[B]) *Model[B] {
	m := New(name, backend)
	for _, layer := range layers {
		m.stack.Add(layer)
	}
	return m
}

// Name returns the model name.
func (m *Model[B]) Name() string { return m.name }

// Backend returns the compute backend.
func (m *Model[B]) Backend() B { return m.backend }

// NumLayers returns the number of layers in the stack.
func (m *Model[B]) NumLayers() int { return m.stack.Len() }

// Layer returns the layer at the given index.
func (m *Model[B]) Layer(index int) nn.Layer[B] { return m.stack.Layer(index) }

// Add appends a layer to the stack.
func (m *Model[B]) Add(layer nn.Layer[B]) *Model[B] {
	m.stack.Add(layer)
	return m
}

// Forward runs the input through the layer stack.
func (m *Model[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.stack.Forward(input)
}

// Backward propagates the loss gradient through the stack, accumulating
// parameter gradients.
func (m *Model[B]) Backward(grad *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.stack.Backward(grad)
}

// Parameters returns all parameters of the stack in layer order.
func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	return m.stack.Parameters()
}

// NumParams returns the total number of scalar parameters.
func (m *Model[B]) NumParams() int {
	total := 0
	for _, p := range m.Parameters() {
		total += p.Tensor().NumElements()
	}
	return total
}

// SetTraining flips every mode-aware layer (Dropout etc.) between training
// and inference behavior.
func (m *Model[B]) SetTraining(training bool) {
	m.stack.SetTraining(training)
}

// Compile binds an optimizer and a loss function. Must be called after the
// final layer is added: the optimizer captures the current parameter list.
func (m *Model[B]) Compile(optimizer optim.Optimizer[B], lossFn loss.Loss[B]) {
	m.optimizer = optimizer
	m.lossFn = lossFn
}

// Optimizer returns the compiled optimizer, or nil before Compile.
func (m *Model[B]) Optimizer() optim.Optimizer[B] { return m.optimizer }

// Loss returns the compiled loss function, or nil before Compile.
func (m *Model[B]) Loss() loss.Loss[B] { return m.lossFn }

// Summary returns a human-readable table of layers and parameter counts.
func (m *Model[B]) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Model: %s\n", m.name)
	b.WriteString(strings.Repeat("-", 58) + "\n")
	fmt.Fprintf(&b, "%-6s %-24s %s\n", "#", "Layer", "Params")
	b.WriteString(strings.Repeat("-", 58) + "\n")

	total := 0
	for i := 0; i < m.stack.Len(); i++ {
		layer := m.stack.Layer(i)
		count := 0
		for _, p := range layer.Parameters() {
			count += p.Tensor().NumElements()
		}
		total += count
		fmt.Fprintf(&b, "%-6d %-24s %d\n", i, layer.Config().Type, count)
	}
	b.WriteString(strings.Repeat("-", 58) + "\n")
	fmt.Fprintf(&b, "Total params: %d\n", total)
	return b.String()
}
