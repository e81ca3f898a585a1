package loss

import (
	"fmt"
	"math"

	"github.com/strata-ml/strata/internal/tensor"
)

// CrossEntropy computes softmax cross-entropy over unnormalized logits with
// one-hot targets:
//
//	loss = -mean over batch of sum_j target_j * log(softmax(logits)_j)
//
// Softmax and the log are fused using the shifted log-sum-exp, which keeps
// the computation stable for large logits and makes the gradient the simple
// (softmax - target) / batch.
type CrossEntropy[B tensor.Backend] struct{}

// NewCrossEntropy creates a softmax cross-entropy loss.
func NewCrossEntropy[B tensor.Backend]() *CrossEntropy[B] {
	return &CrossEntropy[B]{}
}

// Name returns "cross_entropy".
func (c *CrossEntropy[B]) Name() string { return "cross_entropy" }

// Forward computes the mean cross-entropy over the batch.
// Logits and targets must both be [batch, classes].
func (c *CrossEntropy[B]) Forward(pred, target *tensor.Tensor[float32, B]) float32 {
	checkLogits("CrossEntropy", pred, target)

	shape := pred.Shape()
	batch, classes := shape[0], shape[1]
	p := pred.Data()
	t := target.Data()

	var total float64
	for r := 0; r < batch; r++ {
		row := p[r*classes : (r+1)*classes]
		tRow := t[r*classes : (r+1)*classes]

		maxVal := row[0]
		for _, v := range row[1:] {
			if v > maxVal {
				maxVal = v
			}
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxVal))
		}
		logSumExp := math.Log(sumExp) + float64(maxVal)

		for j, tv := range tRow {
			if tv != 0 {
				total -= float64(tv) * (float64(row[j]) - logSumExp)
			}
		}
	}

	return float32(total / float64(batch))
}

// Backward computes dLoss/dLogits = (softmax(logits) - target) / batch.
func (c *CrossEntropy[B]) Backward(pred, target *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkLogits("CrossEntropy", pred, target)

	batch := pred.Shape()[0]
	probs := pred.Softmax(-1)
	return probs.Sub(target).MulScalar(1 / float32(batch))
}

func checkLogits[B tensor.Backend](name string, pred, target *tensor.Tensor[float32, B]) {
	if len(pred.Shape()) != 2 {
		panic(fmt.Sprintf("%s: expected 2D logits [batch, classes], got shape %v", name, pred.Shape()))
	}
	checkShapes(name, pred, target)
}
