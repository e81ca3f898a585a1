package cpu

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// MatMul performs 2D matrix multiplication: [m, k] @ [k, n] -> [m, n].
//
// The loop order (i, p, j) keeps the inner loop walking both the output row
// and the b row contiguously, which matters for cache behavior on large
// matrices.
func (c *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	checkFloat32("matmul", a)
	checkFloat32("matmul", b)

	aShape := a.Shape()
	bShape := b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions must match, got %v and %v", aShape, bShape))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result := mustNewFloat32("matmul", tensor.Shape{m, n}, c.device)

	av := a.AsFloat32()
	bv := b.AsFloat32()
	out := result.AsFloat32()

	for i := 0; i < m; i++ {
		aRow := av[i*k : (i+1)*k]
		outRow := out[i*n : (i+1)*n]
		for p := 0; p < k; p++ {
			aip := aRow[p]
			if aip == 0 {
				continue
			}
			bRow := bv[p*n : (p+1)*n]
			for j := 0; j < n; j++ {
				outRow[j] += aip * bRow[j]
			}
		}
	}

	return result
}
