package cpu

import (
	"math"

	"github.com/strata-ml/strata/internal/tensor"
)

// AddScalar adds a scalar to every element.
func (c *Backend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return c.unaryOp("add_scalar", x, func(v float32) float32 { return v + scalar })
}

// MulScalar multiplies every element by a scalar.
func (c *Backend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return c.unaryOp("mul_scalar", x, func(v float32) float32 { return v * scalar })
}

// Exp applies the exponential function element-wise.
func (c *Backend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("exp", x, func(v float32) float32 { return float32(math.Exp(float64(v))) })
}

// Log applies the natural logarithm element-wise.
func (c *Backend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("log", x, func(v float32) float32 { return float32(math.Log(float64(v))) })
}

// Sqrt applies the square root element-wise.
func (c *Backend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return c.unaryOp("sqrt", x, func(v float32) float32 { return float32(math.Sqrt(float64(v))) })
}

// unaryOp applies fn to every element of x into a fresh tensor.
func (c *Backend) unaryOp(name string, x *tensor.RawTensor, fn func(v float32) float32) *tensor.RawTensor {
	checkFloat32(name, x)

	result := mustNewFloat32(name, x.Shape(), c.device)
	out := result.AsFloat32()
	in := x.AsFloat32()
	for i := range out {
		out[i] = fn(in[i])
	}
	return result
}
