package cpu

import (
	"math"
	"testing"

	"github.com/strata-ml/strata/internal/tensor"
)

func rawOf(t *testing.T, shape tensor.Shape, values []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatal(err)
	}
	copy(raw.AsFloat32(), values)
	return raw
}

func checkValues(t *testing.T, got *tensor.RawTensor, want []float32, eps float64) {
	t.Helper()
	data := got.AsFloat32()
	if len(data) != len(want) {
		t.Fatalf("length %d, want %d", len(data), len(want))
	}
	for i := range want {
		if math.Abs(float64(data[i]-want[i])) > eps {
			t.Errorf("element %d = %v, want %v", i, data[i], want[i])
		}
	}
}

func TestAdd(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4})
	y := rawOf(t, tensor.Shape{2, 2}, []float32{10, 20, 30, 40})
	checkValues(t, b.Add(x, y), []float32{11, 22, 33, 44}, 0)
}

func TestAddBroadcastRow(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	bias := rawOf(t, tensor.Shape{1, 3}, []float32{10, 20, 30})

	got := b.Add(x, bias)
	if !got.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("shape = %v", got.Shape())
	}
	checkValues(t, got, []float32{11, 22, 33, 14, 25, 36}, 0)
}

func TestSubMulDiv(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{3}, []float32{4, 9, 16})
	y := rawOf(t, tensor.Shape{3}, []float32{2, 3, 4})

	checkValues(t, b.Sub(x, y), []float32{2, 6, 12}, 0)
	checkValues(t, b.Mul(x, y), []float32{8, 27, 64}, 0)
	checkValues(t, b.Div(x, y), []float32{2, 3, 4}, 0)
}

func TestMatMul(t *testing.T) {
	b := New()
	// [2,3] @ [3,2] -> [2,2]
	x := rawOf(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	y := rawOf(t, tensor.Shape{3, 2}, []float32{7, 8, 9, 10, 11, 12})

	got := b.MatMul(x, y)
	if !got.Shape().Equal(tensor.Shape{2, 2}) {
		t.Fatalf("shape = %v", got.Shape())
	}
	checkValues(t, got, []float32{58, 64, 139, 154}, 0)
}

func TestTranspose(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := b.Transpose(x)
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v", got.Shape())
	}
	checkValues(t, got, []float32{1, 4, 2, 5, 3, 6}, 0)
}

func TestReshape(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	got := b.Reshape(x, tensor.Shape{3, 2})
	if !got.Shape().Equal(tensor.Shape{3, 2}) {
		t.Fatalf("shape = %v", got.Shape())
	}
	checkValues(t, got, []float32{1, 2, 3, 4, 5, 6}, 0)
}

func TestScalarOps(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{3}, []float32{1, 2, 3})

	checkValues(t, b.AddScalar(x, 10), []float32{11, 12, 13}, 0)
	checkValues(t, b.MulScalar(x, -2), []float32{-2, -4, -6}, 0)
}

func TestMathOps(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{3}, []float32{0, 1, 2})

	checkValues(t, b.Exp(x), []float32{1, float32(math.E), float32(math.Exp(2))}, 1e-5)

	y := rawOf(t, tensor.Shape{2}, []float32{1, float32(math.E)})
	checkValues(t, b.Log(y), []float32{0, 1}, 1e-5)

	z := rawOf(t, tensor.Shape{3}, []float32{4, 9, 16})
	checkValues(t, b.Sqrt(z), []float32{2, 3, 4}, 1e-6)
}

func TestReLUAndGrad(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{4}, []float32{-2, -0.5, 0, 3})

	checkValues(t, b.ReLU(x), []float32{0, 0, 0, 3}, 0)
	checkValues(t, b.ReLUGrad(x), []float32{0, 0, 0, 1}, 0)
}

func TestSigmoidTanh(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{3}, []float32{-1, 0, 1})

	checkValues(t, b.Sigmoid(x), []float32{0.26894143, 0.5, 0.7310586}, 1e-6)
	checkValues(t, b.Tanh(x), []float32{-0.7615942, 0, 0.7615942}, 1e-6)
}

func TestSoftmax(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 1000, 1000, 1000})

	got := b.Softmax(x, -1)
	data := got.AsFloat32()

	// Row 0: known softmax of (1,2,3).
	want := []float32{0.09003057, 0.24472848, 0.66524094}
	for i := range want {
		if math.Abs(float64(data[i]-want[i])) > 1e-6 {
			t.Errorf("softmax[%d] = %v, want %v", i, data[i], want[i])
		}
	}

	// Row 1: large identical logits must not overflow; uniform output.
	for i := 3; i < 6; i++ {
		if math.Abs(float64(data[i]-1.0/3.0)) > 1e-6 {
			t.Errorf("softmax[%d] = %v, want 1/3", i, data[i])
		}
	}
}

func TestSumAndReductions(t *testing.T) {
	b := New()
	x := rawOf(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6})

	if got := b.Sum(x); got != 21 {
		t.Errorf("Sum = %v, want 21", got)
	}

	cols := b.SumDim(x, 0, false)
	if !cols.Shape().Equal(tensor.Shape{3}) {
		t.Fatalf("SumDim(0) shape = %v", cols.Shape())
	}
	checkValues(t, cols, []float32{5, 7, 9}, 0)

	rows := b.SumDim(x, -1, true)
	if !rows.Shape().Equal(tensor.Shape{2, 1}) {
		t.Fatalf("SumDim(-1, keep) shape = %v", rows.Shape())
	}
	checkValues(t, rows, []float32{6, 15}, 0)

	mean := b.MeanDim(x, 1, false)
	checkValues(t, mean, []float32{2, 5}, 1e-6)
}
