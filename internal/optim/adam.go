package optim

import (
	"fmt"
	"math"

	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/internal/tensor"
)

// Adam implements the Adam optimizer (Kingma & Ba, 2014).
//
// Update rule:
//
//	m_t = beta1 * m_{t-1} + (1-beta1) * grad
//	v_t = beta2 * v_{t-1} + (1-beta2) * grad^2
//	m_hat = m_t / (1 - beta1^t)
//	v_hat = v_t / (1 - beta2^t)
//	param -= lr * m_hat / (sqrt(v_hat) + eps)
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32
	t      int
	m      []*tensor.RawTensor
	v      []*tensor.RawTensor
}

// AdamConfig holds configuration for the Adam optimizer.
type AdamConfig struct {
	LR    float32    // learning rate (default 0.001)
	Betas [2]float32 // moment decay rates (default 0.9, 0.999)
	Eps   float32    // numerical stability term (default 1e-8)
}

// NewAdam creates an Adam optimizer over the given parameters.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	if config.LR == 0 {
		config.LR = 0.001
	}
	if config.Betas[0] == 0 {
		config.Betas[0] = 0.9
	}
	if config.Betas[1] == 0 {
		config.Betas[1] = 0.999
	}
	if config.Eps == 0 {
		config.Eps = 1e-8
	}
	return &Adam[B]{
		params: params,
		lr:     config.LR,
		beta1:  config.Betas[0],
		beta2:  config.Betas[1],
		eps:    config.Eps,
		m:      make([]*tensor.RawTensor, len(params)),
		v:      make([]*tensor.RawTensor, len(params)),
	}
}

// Name returns "adam".
func (a *Adam[B]) Name() string { return "adam" }

// Step applies one Adam update to every trainable parameter with a gradient.
func (a *Adam[B]) Step() {
	a.t++
	bc1 := float32(1 - math.Pow(float64(a.beta1), float64(a.t)))
	bc2 := float32(1 - math.Pow(float64(a.beta2), float64(a.t)))

	for i, param := range a.params {
		if !param.Trainable() || param.Grad() == nil {
			continue
		}

		w := param.Tensor().Data()
		g := param.Grad().Data()
		m := a.moment(&a.m[i], param)
		v := a.moment(&a.v[i], param)

		for j := range w {
			m[j] = a.beta1*m[j] + (1-a.beta1)*g[j]
			v[j] = a.beta2*v[j] + (1-a.beta2)*g[j]*g[j]
			mHat := m[j] / bc1
			vHat := v[j] / bc2
			w[j] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}

// moment returns the given moment buffer, allocating on first use.
func (a *Adam[B]) moment(slot **tensor.RawTensor, param *nn.Parameter[B]) []float32 {
	if *slot == nil {
		raw, err := tensor.NewRaw(param.Tensor().Shape(), tensor.Float32, param.Tensor().Device())
		if err != nil {
			panic(fmt.Sprintf("adam: failed to allocate moment buffer: %v", err))
		}
		*slot = raw
	}
	return (*slot).AsFloat32()
}

// ZeroGrad clears gradients for all parameters.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam[B]) GetLR() float32 { return a.lr }

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float32) { a.lr = lr }

// Config returns the hyperparameters.
func (a *Adam[B]) Config() map[string]any {
	return map[string]any{
		"lr": a.lr, "beta1": a.beta1, "beta2": a.beta2, "eps": a.eps,
	}
}

// StateDict exports moment buffers keyed "m.{index}" / "v.{index}" and the
// step counter under "step".
func (a *Adam[B]) StateDict() map[string]*tensor.RawTensor {
	stateDict := make(map[string]*tensor.RawTensor)
	for i := range a.params {
		if a.m[i] != nil {
			stateDict[fmt.Sprintf("m.%d", i)] = a.m[i]
		}
		if a.v[i] != nil {
			stateDict[fmt.Sprintf("v.%d", i)] = a.v[i]
		}
	}
	if a.t > 0 {
		step, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, tensor.CPU)
		if err != nil {
			panic(fmt.Sprintf("adam: failed to allocate step tensor: %v", err))
		}
		step.AsFloat32()[0] = float32(a.t)
		stateDict["step"] = step
	}
	return stateDict
}

// LoadStateDict restores moment buffers and the step counter, validating
// shapes against the parameters.
func (a *Adam[B]) LoadStateDict(stateDict map[string]*tensor.RawTensor) error {
	a.m = make([]*tensor.RawTensor, len(a.params))
	a.v = make([]*tensor.RawTensor, len(a.params))
	a.t = 0

	for i, param := range a.params {
		for _, kind := range []string{"m", "v"} {
			raw, ok := stateDict[fmt.Sprintf("%s.%d", kind, i)]
			if !ok {
				continue
			}
			if !raw.Shape().Equal(param.Tensor().Shape()) {
				return fmt.Errorf("%s moment shape mismatch for parameter %d: expected %v, got %v",
					kind, i, param.Tensor().Shape(), raw.Shape())
			}
			if kind == "m" {
				a.m[i] = raw.Clone()
			} else {
				a.v[i] = raw.Clone()
			}
		}
	}

	if step, ok := stateDict["step"]; ok {
		if step.NumElements() != 1 {
			return fmt.Errorf("step tensor must hold a single element, got shape %v", step.Shape())
		}
		a.t = int(step.AsFloat32()[0])
	}

	return nil
}
