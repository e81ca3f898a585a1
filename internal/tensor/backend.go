package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations; the tensor
// package itself only manages memory and shape bookkeeping.
//
// All operations are defined on RawTensor so backends stay free of generics.
// Binary operations follow NumPy-style broadcasting. Backends may panic on
// shape or dtype violations; those are programmer errors, not runtime
// conditions.
type Backend interface {
	// Name returns the backend name (e.g. "CPU").
	Name() string

	// Device returns the compute device this backend targets.
	Device() Device

	// Element-wise binary operations (with broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor) *RawTensor

	// Scalar operations (element-wise with a scalar)
	AddScalar(x *RawTensor, scalar float32) *RawTensor
	MulScalar(x *RawTensor, scalar float32) *RawTensor

	// Math operations (element-wise)
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// Activations and their derivative kernels
	ReLU(x *RawTensor) *RawTensor
	ReLUGrad(x *RawTensor) *RawTensor // 1 where x > 0, else 0
	Sigmoid(x *RawTensor) *RawTensor
	Tanh(x *RawTensor) *RawTensor
	Softmax(x *RawTensor, dim int) *RawTensor

	// Reduction operations
	Sum(x *RawTensor) float32
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor
}
