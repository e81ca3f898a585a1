package cpu

import (
	"fmt"
	"math"

	"github.com/strata-ml/strata/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (c *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("relu", x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// ReLUGrad returns the ReLU derivative mask: 1 where x > 0, else 0.
func (c *Backend) ReLUGrad(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("relu_grad", x, func(v float32) float32 {
		if v > 0 {
			return 1
		}
		return 0
	})
}

// Sigmoid applies 1 / (1 + exp(-x)) element-wise.
func (c *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("sigmoid", x, func(v float32) float32 {
		return float32(1.0 / (1.0 + math.Exp(-float64(v))))
	})
}

// Tanh applies the hyperbolic tangent element-wise.
func (c *Backend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("tanh", x, func(v float32) float32 {
		return float32(math.Tanh(float64(v)))
	})
}

// Softmax applies softmax along the given dimension. Only the last dimension
// (dim == -1 or dim == ndim-1) is supported; rows are shifted by their max
// for numerical stability.
func (c *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	checkFloat32("softmax", x)

	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim != len(shape)-1 {
		panic(fmt.Sprintf("softmax: only the last dimension is supported, got dim %d for shape %v", dim, shape))
	}

	rowLen := shape[len(shape)-1]
	rows := x.NumElements() / rowLen

	result := mustNewFloat32("softmax", shape, c.device)
	in := x.AsFloat32()
	out := result.AsFloat32()

	for r := 0; r < rows; r++ {
		row := in[r*rowLen : (r+1)*rowLen]
		outRow := out[r*rowLen : (r+1)*rowLen]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}

		var sum float64
		for i, v := range row {
			e := math.Exp(float64(v - maxVal))
			outRow[i] = float32(e)
			sum += e
		}

		inv := float32(1.0 / sum)
		for i := range outRow {
			outRow[i] *= inv
		}
	}

	return result
}
