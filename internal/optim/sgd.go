package optim

import (
	"fmt"

	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/internal/tensor"
)

// SGD implements stochastic gradient descent with optional momentum.
//
// Without momentum:
//
//	param -= lr * grad
//
// With momentum:
//
//	velocity = momentum * velocity + grad
//	param -= lr * velocity
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities []*tensor.RawTensor // indexed like params, nil until first use
}

// SGDConfig holds configuration for the SGD optimizer.
type SGDConfig struct {
	LR       float32 // learning rate (default 0.01)
	Momentum float32 // momentum factor in [0, 1) (default 0)
}

// NewSGD creates an SGD optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make([]*tensor.RawTensor, len(params)),
	}
}

// Name returns "sgd".
func (s *SGD[B]) Name() string { return "sgd" }

// Step applies one SGD update to every trainable parameter with a gradient.
func (s *SGD[B]) Step() {
	for i, param := range s.params {
		if !param.Trainable() || param.Grad() == nil {
			continue
		}

		w := param.Tensor().Data()
		g := param.Grad().Data()

		if s.momentum == 0 {
			for j := range w {
				w[j] -= s.lr * g[j]
			}
			continue
		}

		v := s.velocity(i, param)
		for j := range w {
			v[j] = s.momentum*v[j] + g[j]
			w[j] -= s.lr * v[j]
		}
	}
}

// velocity returns the momentum buffer for parameter i, allocating on first
// use.
func (s *SGD[B]) velocity(i int, param *nn.Parameter[B]) []float32 {
	if s.velocities[i] == nil {
		raw, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, param.Tensor().Device())
		if err != nil {
			panic(fmt.Sprintf("sgd: failed to allocate velocity buffer: %v", err))
		}
		s.velocities[i] = raw
	}
	return s.velocities[i].AsFloat32()
}

// ZeroGrad clears gradients for all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 { return s.lr }

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float32) { s.lr = lr }

// Config returns the hyperparameters.
func (s *SGD[B]) Config() map[string]any {
	return map[string]any{"lr": s.lr, "momentum": s.momentum}
}

// StateDict exports momentum buffers keyed "velocity.{index}".
// Without momentum the state is empty.
func (s *SGD[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	if s.momentum == 0 {
		return stateDict
	}
	for i, v := range s.velocities {
		if v != nil {
			stateDict[fmt.Sprintf("velocity.%d", i)] = v
		}
	}
	return stateDict
}

// LoadStateDict restores momentum buffers, validating shapes against the
// parameters.
func (s *SGD[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	if s.momentum == 0 {
		return nil
	}
	s.velocities = make([]*tensor.RawTensor, len(s.params))
	for i, param := range s.params {
		raw, ok := stateDict[fmt.Sprintf("velocity.%d", i)]
		if !ok {
			continue // buffer not used yet when the checkpoint was taken
		}
		if !raw.Shape().Equal(param.Tensor().Shape()) {
			return fmt.Errorf("velocity shape mismatch for parameter %d: expected %v, got %v",
				i, param.Tensor().Shape(), raw.Shape())
		}
		s.velocities[i] = raw.Clone()
	}
	return nil
}
