package optim

import (
	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/internal/tensor"
)

// AdamW is Adam with decoupled weight decay (Loshchilov & Hutter, 2019):
// the decay shrinks parameters directly instead of flowing through the
// adaptive moment estimates.
//
//	param *= 1 - lr * weight_decay
//	param -= lr * m_hat / (sqrt(v_hat) + eps)
type AdamW[B tensor.Backend] struct {
	Adam[B]
	weightDecay float32
}

// AdamWConfig holds configuration for the AdamW optimizer.
type AdamWConfig struct {
	LR          float32    // learning rate (default 0.001)
	Betas       [2]float32 // moment decay rates (default 0.9, 0.999)
	Eps         float32    // numerical stability term (default 1e-8)
	WeightDecay float32    // decoupled decay factor (default 0.01)
}

// NewAdamW creates an AdamW optimizer over the given parameters.
func NewAdamW[B tensor.Backend](params []*nn.Parameter[B], config AdamWConfig) *AdamW[B] {
	if config.WeightDecay == 0 {
		config.WeightDecay = 0.01
	}
	adam := NewAdam(params, AdamConfig{LR: config.LR, Betas: config.Betas, Eps: config.Eps})
	return &AdamW[B]{
		Adam:        *adam,
		weightDecay: config.WeightDecay,
	}
}

// Name returns "adamw".
func (a *AdamW[B]) Name() string { return "adamw" }

// Step applies the decoupled decay, then the Adam update.
func (a *AdamW[B]) Step() {
	decay := 1 - a.lr*a.weightDecay
	for _, param := range a.params {
		if !param.Trainable() || param.Grad() == nil {
			continue
		}
		w := param.Tensor().Data()
		for j := range w {
			w[j] *= decay
		}
	}
	a.Adam.Step()
}

// Config returns the hyperparameters including the decay factor.
func (a *AdamW[B]) Config() map[string]any {
	cfg := a.Adam.Config()
	cfg["weight_decay"] = a.weightDecay
	return cfg
}
