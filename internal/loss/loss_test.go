package loss_test

import (
	"math"
	"testing"

	"github.com/strata-ml/strata/internal/backend/cpu"
	"github.com/strata-ml/strata/internal/loss"
	"github.com/strata-ml/strata/internal/tensor"
)

func tensorOf(t *testing.T, shape tensor.Shape, values []float32) *tensor.Tensor[float32, *cpu.Backend] {
	t.Helper()
	x, err := tensor.FromSlice(values, shape, cpu.New())
	if err != nil {
		t.Fatal(err)
	}
	return x
}

func TestMSEForward(t *testing.T) {
	pred := tensorOf(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	target := tensorOf(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 6})

	mse := loss.NewMSE[*cpu.Backend]()
	// Only one element differs by 2: mean((2)^2 over 4) = 1.
	if got := mse.Forward(pred, target); got != 1 {
		t.Errorf("Forward = %v, want 1", got)
	}
	if mse.Name() != "mse" {
		t.Errorf("Name = %q", mse.Name())
	}
}

func TestMSEBackward(t *testing.T) {
	pred := tensorOf(t, tensor.Shape{1, 2}, []float32{3, 5})
	target := tensorOf(t, tensor.Shape{1, 2}, []float32{1, 5})

	grad := loss.NewMSE[*cpu.Backend]().Backward(pred, target)
	// dLoss/dPred = 2*(pred-target)/n with n=2.
	want := []float32{2, 0}
	for i, v := range grad.Data() {
		if v != want[i] {
			t.Errorf("grad[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestMSEShapeMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("shape mismatch accepted")
		}
	}()
	pred := tensorOf(t, tensor.Shape{1, 2}, []float32{1, 2})
	target := tensorOf(t, tensor.Shape{2, 1}, []float32{1, 2})
	loss.NewMSE[*cpu.Backend]().Forward(pred, target)
}

func TestCrossEntropyUniformLogits(t *testing.T) {
	// Identical logits give uniform probabilities, so the loss is ln(classes)
	// regardless of which class is correct.
	pred := tensorOf(t, tensor.Shape{2, 4}, []float32{5, 5, 5, 5, -1, -1, -1, -1})
	target := tensorOf(t, tensor.Shape{2, 4}, []float32{1, 0, 0, 0, 0, 0, 1, 0})

	ce := loss.NewCrossEntropy[*cpu.Backend]()
	got := ce.Forward(pred, target)
	want := float32(math.Log(4))
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Errorf("Forward = %v, want ln(4) = %v", got, want)
	}
}

func TestCrossEntropyConfidentCorrect(t *testing.T) {
	// Strongly favoring the correct class drives the loss toward zero.
	pred := tensorOf(t, tensor.Shape{1, 3}, []float32{20, 0, 0})
	target := tensorOf(t, tensor.Shape{1, 3}, []float32{1, 0, 0})

	got := loss.NewCrossEntropy[*cpu.Backend]().Forward(pred, target)
	if got < 0 || got > 1e-6 {
		t.Errorf("Forward = %v, want near 0", got)
	}
}

func TestCrossEntropyLargeLogitsStable(t *testing.T) {
	pred := tensorOf(t, tensor.Shape{1, 2}, []float32{1000, 1000})
	target := tensorOf(t, tensor.Shape{1, 2}, []float32{1, 0})

	got := loss.NewCrossEntropy[*cpu.Backend]().Forward(pred, target)
	want := float32(math.Log(2))
	if math.IsNaN(float64(got)) || math.Abs(float64(got-want)) > 1e-5 {
		t.Errorf("Forward = %v, want ln(2)", got)
	}
}

func TestCrossEntropyBackward(t *testing.T) {
	pred := tensorOf(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 0, 0, 0})
	target := tensorOf(t, tensor.Shape{2, 3}, []float32{0, 0, 1, 1, 0, 0})

	grad := loss.NewCrossEntropy[*cpu.Backend]().Backward(pred, target)

	// grad = (softmax - target)/batch: each row sums to zero.
	for r := 0; r < 2; r++ {
		var sum float64
		for c := 0; c < 3; c++ {
			sum += float64(grad.Data()[r*3+c])
		}
		if math.Abs(sum) > 1e-6 {
			t.Errorf("row %d sums to %v, want 0", r, sum)
		}
	}

	// Row 1 is uniform: grad = (1/3 - target)/2.
	want := []float32{(1.0/3.0 - 1) / 2, 1.0 / 6.0, 1.0 / 6.0}
	for c := 0; c < 3; c++ {
		if math.Abs(float64(grad.Data()[3+c]-want[c])) > 1e-6 {
			t.Errorf("grad[1][%d] = %v, want %v", c, grad.Data()[3+c], want[c])
		}
	}
}

func TestCrossEntropyRejects1D(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("1D logits accepted")
		}
	}()
	pred := tensorOf(t, tensor.Shape{3}, []float32{1, 2, 3})
	target := tensorOf(t, tensor.Shape{3}, []float32{0, 0, 1})
	loss.NewCrossEntropy[*cpu.Backend]().Forward(pred, target)
}
