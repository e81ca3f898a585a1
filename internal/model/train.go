package model

import (
	"fmt"
	"math/rand"

	"github.com/strata-ml/strata/internal/tensor"
)

// FitConfig controls the training loop.
type FitConfig struct {
	Epochs    int   // number of passes over the data (default 1)
	BatchSize int   // mini-batch size (default 32)
	Shuffle   bool  // reshuffle sample order every epoch
	Seed      int64 // shuffle seed; 0 uses a fixed default
	Verbose   bool  // print per-epoch loss to stdout
}

// History records training progress, one entry per epoch.
type History struct {
	Epochs int
	Loss   []float32 // average loss per epoch
}

// Fit trains the model on (x, y) with mini-batch gradient descent.
// x and y pair by leading dimension: x[i] is the input for target y[i].
// Compile must have been called first.
func (m *Model[B]) Fit(x, y *tensor.Tensor[float32, B], config FitConfig) (*History, error) {
	if m.optimizer == nil || m.lossFn == nil {
		return nil, fmt.Errorf("model %q is not compiled: call Compile before Fit", m.name)
	}
	if len(x.Shape()) < 2 || len(y.Shape()) < 2 {
		return nil, fmt.Errorf("Fit expects batched inputs: got x %v, y %v", x.Shape(), y.Shape())
	}
	n := x.Shape()[0]
	if y.Shape()[0] != n {
		return nil, fmt.Errorf("sample count mismatch: x has %d rows, y has %d", n, y.Shape()[0])
	}
	if config.Epochs <= 0 {
		config.Epochs = 1
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 32
	}
	if config.BatchSize > n {
		config.BatchSize = n
	}

	seed := config.Seed
	if seed == 0 {
		seed = 1
	}
	//nolint:gosec // G404: shuffle order, not security
	rng := rand.New(rand.NewSource(seed))

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}

	history := &History{Epochs: config.Epochs}
	m.SetTraining(true)
	defer m.SetTraining(false)

	for epoch := 0; epoch < config.Epochs; epoch++ {
		if config.Shuffle {
			rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
		}

		var epochLoss float64
		batches := 0
		for start := 0; start < n; start += config.BatchSize {
			end := start + config.BatchSize
			if end > n {
				end = n
			}

			xb, err := gatherRows(x, order[start:end])
			if err != nil {
				return nil, fmt.Errorf("epoch %d: %w", epoch, err)
			}
			yb, err := gatherRows(y, order[start:end])
			if err != nil {
				return nil, fmt.Errorf("epoch %d: %w", epoch, err)
			}

			pred := m.Forward(xb)
			batchLoss := m.lossFn.Forward(pred, yb)

			m.optimizer.ZeroGrad()
			grad := m.lossFn.Backward(pred, yb)
			m.Backward(grad)
			m.optimizer.Step()
			m.step++

			epochLoss += float64(batchLoss)
			batches++
		}

		avg := float32(epochLoss / float64(batches))
		history.Loss = append(history.Loss, avg)
		if config.Verbose {
			fmt.Printf("epoch %d/%d - loss: %.6f\n", epoch+1, config.Epochs, avg)
		}
	}

	return history, nil
}

// Predict runs inference on a batch. Mode-aware layers run in inference mode.
func (m *Model[B]) Predict(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	m.SetTraining(false)
	return m.Forward(x)
}

// Evaluate computes the loss over (x, y) and, for one-hot classification
// targets, the argmax accuracy. For single-column targets accuracy is 0.
func (m *Model[B]) Evaluate(x, y *tensor.Tensor[float32, B]) (float32, float32, error) {
	if m.lossFn == nil {
		return 0, 0, fmt.Errorf("model %q is not compiled: call Compile before Evaluate", m.name)
	}

	pred := m.Predict(x)
	lossValue := m.lossFn.Forward(pred, y)

	shape := pred.Shape()
	if len(shape) != 2 || shape[1] < 2 || !shape.Equal(y.Shape()) {
		return lossValue, 0, nil
	}

	rows, cols := shape[0], shape[1]
	predData, targetData := pred.Data(), y.Data()
	correct := 0
	for i := 0; i < rows; i++ {
		if argmaxRow(predData[i*cols:(i+1)*cols]) == argmaxRow(targetData[i*cols:(i+1)*cols]) {
			correct++
		}
	}
	return lossValue, float32(correct) / float32(rows), nil
}

// gatherRows builds a batch tensor from the given row indices of x.
func gatherRows[B tensor.Backend](x *tensor.Tensor[float32, B], indices []int) (*tensor.Tensor[float32, B], error) {
	shape := x.Shape()
	rowSize := x.NumElements() / shape[0]

	batchShape := append(tensor.Shape{len(indices)}, shape[1:]...)
	data := make([]float32, len(indices)*rowSize)
	src := x.Data()
	for i, idx := range indices {
		copy(data[i*rowSize:(i+1)*rowSize], src[idx*rowSize:(idx+1)*rowSize])
	}
	return tensor.FromSlice(data, batchShape, x.Backend())
}

func argmaxRow(row []float32) int {
	best := 0
	for i, v := range row {
		if v > row[best] {
			best = i
		}
	}
	return best
}
