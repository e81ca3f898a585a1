package optim_test

import (
	"math"
	"testing"

	"github.com/strata-ml/strata/internal/backend/cpu"
	"github.com/strata-ml/strata/internal/nn"
	"github.com/strata-ml/strata/internal/optim"
	"github.com/strata-ml/strata/internal/tensor"
)

func paramOf(t *testing.T, name string, values []float32) *nn.Parameter[*cpu.Backend] {
	t.Helper()
	x, err := tensor.FromSlice(values, tensor.Shape{len(values)}, cpu.New())
	if err != nil {
		t.Fatal(err)
	}
	return nn.NewParameter(name, x)
}

func setGrad(t *testing.T, p *nn.Parameter[*cpu.Backend], values []float32) {
	t.Helper()
	g, err := tensor.FromSlice(values, tensor.Shape{len(values)}, cpu.New())
	if err != nil {
		t.Fatal(err)
	}
	p.SetGrad(g)
}

func TestSGDStep(t *testing.T) {
	p := paramOf(t, "w", []float32{1, 2})
	setGrad(t, p, []float32{0.5, -1})

	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1})
	sgd.Step()

	want := []float32{0.95, 2.1}
	for i, v := range p.Tensor().Data() {
		if math.Abs(float64(v-want[i])) > 1e-6 {
			t.Errorf("param[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestSGDSkipsFrozenAndGradless(t *testing.T) {
	frozen := paramOf(t, "frozen", []float32{1})
	frozen.SetTrainable(false)
	setGrad(t, frozen, []float32{10})

	gradless := paramOf(t, "gradless", []float32{2})

	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{frozen, gradless}, optim.SGDConfig{LR: 1})
	sgd.Step()

	if frozen.Tensor().Data()[0] != 1 {
		t.Error("frozen parameter was updated")
	}
	if gradless.Tensor().Data()[0] != 2 {
		t.Error("parameter without gradient was updated")
	}
}

func TestSGDMomentum(t *testing.T) {
	p := paramOf(t, "w", []float32{0})
	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})

	// Step 1: v = 1, w = -0.1.
	setGrad(t, p, []float32{1})
	sgd.Step()
	if got := p.Tensor().Data()[0]; math.Abs(float64(got+0.1)) > 1e-6 {
		t.Fatalf("after step 1: %v, want -0.1", got)
	}

	// Step 2: v = 0.9*1 + 1 = 1.9, w = -0.1 - 0.19 = -0.29.
	setGrad(t, p, []float32{1})
	sgd.Step()
	if got := p.Tensor().Data()[0]; math.Abs(float64(got+0.29)) > 1e-6 {
		t.Fatalf("after step 2: %v, want -0.29", got)
	}
}

func TestSGDZeroGrad(t *testing.T) {
	p := paramOf(t, "w", []float32{1})
	setGrad(t, p, []float32{1})

	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, optim.SGDConfig{})
	sgd.ZeroGrad()
	if p.Grad() != nil {
		t.Error("gradient not cleared")
	}
}

func TestSGDLearningRate(t *testing.T) {
	sgd := optim.NewSGD[*cpu.Backend](nil, optim.SGDConfig{})
	if sgd.GetLR() != 0.01 {
		t.Errorf("default LR = %v, want 0.01", sgd.GetLR())
	}
	sgd.SetLR(0.5)
	if sgd.GetLR() != 0.5 {
		t.Errorf("SetLR not applied: %v", sgd.GetLR())
	}
}

func TestAdamFirstStep(t *testing.T) {
	p := paramOf(t, "w", []float32{1, 1})
	setGrad(t, p, []float32{0.5, -0.5})

	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, optim.AdamConfig{LR: 0.001})
	adam.Step()

	// After bias correction the first update is lr * g/(|g|+eps), i.e. a
	// step of size ~lr in the gradient's direction.
	want := []float32{1 - 0.001, 1 + 0.001}
	for i, v := range p.Tensor().Data() {
		if math.Abs(float64(v-want[i])) > 1e-5 {
			t.Errorf("param[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestAdamStateDictRoundTrip(t *testing.T) {
	step := func(a optim.Optimizer[*cpu.Backend], p *nn.Parameter[*cpu.Backend]) {
		setGrad(t, p, []float32{0.3, -0.7})
		a.Step()
	}

	p1 := paramOf(t, "w", []float32{1, 2})
	a1 := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p1}, optim.AdamConfig{})
	step(a1, p1)
	step(a1, p1)

	// Clone into a fresh optimizer over an identical parameter.
	p2 := paramOf(t, "w", []float32{0, 0})
	copy(p2.Tensor().Data(), p1.Tensor().Data())
	a2 := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p2}, optim.AdamConfig{})
	if err := a2.LoadStateDict(a1.StateDict()); err != nil {
		t.Fatal(err)
	}

	// Both optimizers must now produce identical updates.
	step(a1, p1)
	step(a2, p2)
	for i := range p1.Tensor().Data() {
		if p1.Tensor().Data()[i] != p2.Tensor().Data()[i] {
			t.Fatalf("divergence at %d: %v vs %v", i, p1.Tensor().Data()[i], p2.Tensor().Data()[i])
		}
	}
}

func TestAdamLoadStateDictRejectsBadShapes(t *testing.T) {
	p := paramOf(t, "w", []float32{1, 2})
	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, optim.AdamConfig{})

	bad, err := tensor.NewRaw(tensor.Shape{3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	if err := adam.LoadStateDict(map[string]*tensor.RawTensor{"m.0": bad}); err == nil {
		t.Error("mismatched moment shape accepted")
	}
}

func TestSGDMomentumStateDictRoundTrip(t *testing.T) {
	p1 := paramOf(t, "w", []float32{0})
	s1 := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p1}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	setGrad(t, p1, []float32{1})
	s1.Step()

	p2 := paramOf(t, "w", []float32{0})
	copy(p2.Tensor().Data(), p1.Tensor().Data())
	s2 := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p2}, optim.SGDConfig{LR: 0.1, Momentum: 0.9})
	if err := s2.LoadStateDict(s1.StateDict()); err != nil {
		t.Fatal(err)
	}

	setGrad(t, p1, []float32{1})
	s1.Step()
	setGrad(t, p2, []float32{1})
	s2.Step()

	if p1.Tensor().Data()[0] != p2.Tensor().Data()[0] {
		t.Errorf("divergence: %v vs %v", p1.Tensor().Data()[0], p2.Tensor().Data()[0])
	}
}

func TestAdamWDecay(t *testing.T) {
	pW := paramOf(t, "w", []float32{1})
	pA := paramOf(t, "w", []float32{1})

	adamw := optim.NewAdamW([]*nn.Parameter[*cpu.Backend]{pW}, optim.AdamWConfig{LR: 0.1, WeightDecay: 0.5})
	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{pA}, optim.AdamConfig{LR: 0.1})

	setGrad(t, pW, []float32{0.2})
	adamw.Step()
	setGrad(t, pA, []float32{0.2})
	adam.Step()

	// AdamW first shrinks by 1 - lr*wd = 0.95, then applies the same
	// adaptive update as Adam.
	want := 0.95 + (pA.Tensor().Data()[0] - 1)
	if got := pW.Tensor().Data()[0]; math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("adamw param = %v, want %v", got, want)
	}

	if adamw.Name() != "adamw" {
		t.Errorf("Name = %q", adamw.Name())
	}
	if adamw.Config()["weight_decay"] != float32(0.5) {
		t.Errorf("weight_decay missing from config: %v", adamw.Config())
	}
}
