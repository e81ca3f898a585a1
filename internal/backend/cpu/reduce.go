package cpu

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// Sum returns the sum of all elements.
func (c *Backend) Sum(x *tensor.RawTensor) float32 {
	checkFloat32("sum", x)

	var sum float64
	for _, v := range x.AsFloat32() {
		sum += float64(v)
	}
	return float32(sum)
}

// SumDim sums along a dimension. Negative dims count from the end.
func (c *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("sum_dim", x, dim, keepDim, false)
}

// MeanDim averages along a dimension. Negative dims count from the end.
func (c *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return c.reduceDim("mean_dim", x, dim, keepDim, true)
}

func (c *Backend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim, mean bool) *tensor.RawTensor {
	checkFloat32(name, x)

	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("%s: dimension %d out of range for shape %v", name, dim, shape))
	}

	// outer = product of dims before dim, inner = product of dims after.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	reduceLen := shape[dim]

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}

	result := mustNewFloat32(name, outShape, c.device)
	in := x.AsFloat32()
	out := result.AsFloat32()

	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			var sum float64
			base := o*reduceLen*inner + i
			for r := 0; r < reduceLen; r++ {
				sum += float64(in[base+r*inner])
			}
			if mean {
				sum /= float64(reduceLen)
			}
			out[o*inner+i] = float32(sum)
		}
	}

	return result
}
