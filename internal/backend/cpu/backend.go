// Package cpu implements the pure-Go CPU backend.
package cpu

import (
	"fmt"

	"github.com/strata-ml/strata/internal/tensor"
)

// Backend implements tensor operations on the CPU.
//
// All arithmetic kernels operate on float32 tensors; that is the parameter
// dtype used throughout the framework. Other dtypes are storage-only and
// panic if routed through compute kernels.
type Backend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (c *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (c *Backend) Device() tensor.Device {
	return c.device
}

// Add performs element-wise addition with broadcasting.
func (c *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (c *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (c *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (c *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return c.binaryOp("div", a, b, func(x, y float32) float32 { return x / y })
}

// binaryOp applies fn element-wise over a and b, broadcasting as needed.
func (c *Backend) binaryOp(name string, a, b *tensor.RawTensor, fn func(x, y float32) float32) *tensor.RawTensor {
	checkFloat32(name, a)
	checkFloat32(name, b)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}

	result := mustNewFloat32(name, outShape, c.device)
	out := result.AsFloat32()
	av := a.AsFloat32()
	bv := b.AsFloat32()

	if !needsBroadcast {
		for i := range out {
			out[i] = fn(av[i], bv[i])
		}
		return result
	}

	broadcastLoop(out, av, bv, outShape, a.Shape(), b.Shape(), fn)
	return result
}

// broadcastLoop walks every element of the output shape, mapping each output
// coordinate back to the (possibly size-1) source coordinates.
func broadcastLoop(out, av, bv []float32, outShape, aShape, bShape tensor.Shape, fn func(x, y float32) float32) {
	aStrides := broadcastStrides(aShape, outShape)
	bStrides := broadcastStrides(bShape, outShape)
	outStrides := outShape.ComputeStrides()

	for i := range out {
		ai, bi := 0, 0
		rem := i
		for d := 0; d < len(outShape); d++ {
			coord := rem / outStrides[d]
			rem %= outStrides[d]
			ai += coord * aStrides[d]
			bi += coord * bStrides[d]
		}
		out[i] = fn(av[ai], bv[bi])
	}
}

// broadcastStrides returns per-output-dimension strides into a source shape,
// with stride 0 for broadcast (size-1 or missing) dimensions.
func broadcastStrides(src, out tensor.Shape) []int {
	srcStrides := src.ComputeStrides()
	strides := make([]int, len(out))
	offset := len(out) - len(src)
	for d := range out {
		if d < offset {
			strides[d] = 0
			continue
		}
		if src[d-offset] == 1 && out[d] != 1 {
			strides[d] = 0
		} else {
			strides[d] = srcStrides[d-offset]
		}
	}
	return strides
}

func checkFloat32(op string, t *tensor.RawTensor) {
	if t.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: compute kernels require float32, got %v", op, t.DType()))
	}
}

func mustNewFloat32(op string, shape tensor.Shape, device tensor.Device) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, tensor.Float32, device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
