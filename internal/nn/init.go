package nn

import (
	"math"

	"github.com/strata-ml/strata/internal/tensor"
)

// Xavier initializes a weight tensor with the Glorot uniform distribution:
// U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
//
// This keeps activation variance roughly constant across layers and is the
// default for Dense weights.
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform[float32](shape, -bound, bound, backend)
}

// HeNormal initializes a weight tensor with N(0, sqrt(2/fanIn)), the
// recommended scheme for ReLU stacks.
func HeNormal[B tensor.Backend](fanIn int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	stddev := math.Sqrt(2.0 / float64(fanIn))
	t := tensor.Zeros[float32](shape, backend)
	data := t.Data()
	for i := range data {
		data[i] = float32(tensor.NormFloat(stddev))
	}
	return t
}

// Zeros creates a zero-filled tensor. Commonly used for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
