// Copyright 2026 Strata ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package loss provides the public API for Strata loss functions.
package loss

import (
	"github.com/strata-ml/strata/internal/loss"
	"github.com/strata-ml/strata/tensor"
)

// Loss pairs a scalar objective with its gradient w.r.t. the model output.
type Loss[B tensor.Backend] = loss.Loss[B]

// MSE computes mean squared error over all elements.
type MSE[B tensor.Backend] = loss.MSE[B]

// NewMSE creates an MSE loss.
func NewMSE[B tensor.Backend]() *MSE[B] {
	return loss.NewMSE[B]()
}

// CrossEntropy computes softmax cross-entropy over logits against one-hot
// targets.
type CrossEntropy[B tensor.Backend] = loss.CrossEntropy[B]

// NewCrossEntropy creates a CrossEntropy loss.
func NewCrossEntropy[B tensor.Backend]() *CrossEntropy[B] {
	return loss.NewCrossEntropy[B]()
}
