package cpu

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// Reshape returns a view of the same data under a new shape.
func (c *Backend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := t.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose returns the transpose of a 2D tensor.
func (c *Backend) Transpose(t *tensor.RawTensor) *tensor.RawTensor {
	checkFloat32("transpose", t)

	shape := t.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("transpose: expected 2D tensor, got %v", shape))
	}

	rows, cols := shape[0], shape[1]
	result := mustNewFloat32("transpose", tensor.Shape{cols, rows}, c.device)

	in := t.AsFloat32()
	out := result.AsFloat32()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[j*rows+i] = in[i*cols+j]
		}
	}

	return result
}
