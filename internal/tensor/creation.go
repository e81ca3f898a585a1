package tensor

import (
	"math/rand"
	"sync"
)

// rng is the package-level source for random tensor creation. Seedable so
// that weight initialization is reproducible across runs.
var (
	rngMu sync.Mutex
	//nolint:gosec // math/rand is fine for weight initialization
	rng = rand.New(rand.NewSource(1))
)

// Seed resets the random source used by Randn and Rand.
func Seed(seed int64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng = rand.New(rand.NewSource(seed)) //nolint:gosec // see above
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(dummy), b.Device())
	if err != nil {
		panic(err)
	}
	return New[T, B](raw, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T](shape, 1, b)
}

// Full creates a tensor filled with the given value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn creates a tensor with values drawn from the standard normal
// distribution N(0, 1).
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T](shape, b)
	data := t.Data()
	rngMu.Lock()
	defer rngMu.Unlock()
	for i := range data {
		data[i] = T(rng.NormFloat64())
	}
	return t
}

// Rand creates a tensor with values drawn uniformly from [0, 1).
func Rand[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	t := Zeros[T](shape, b)
	data := t.Data()
	rngMu.Lock()
	defer rngMu.Unlock()
	for i := range data {
		data[i] = T(rng.Float64())
	}
	return t
}

// Uniform creates a tensor with values drawn uniformly from [low, high).
func Uniform[T DType, B Backend](shape Shape, low, high float64, b B) *Tensor[T, B] {
	t := Zeros[T](shape, b)
	data := t.Data()
	rngMu.Lock()
	defer rngMu.Unlock()
	for i := range data {
		data[i] = T(low + rng.Float64()*(high-low))
	}
	return t
}

// RandFloat returns a uniform value in [0, 1) from the package source.
// Used by layers that need per-element randomness (dropout masks).
func RandFloat() float64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Float64()
}

// NormFloat returns a value from N(0, 1) scaled by stddev.
func NormFloat(stddev float64) float64 {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.NormFloat64() * stddev
}
