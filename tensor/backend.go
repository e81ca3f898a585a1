// Copyright 2026 Strata ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/strata-ml/strata/internal/tensor"
)

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations; the tensor
// package itself only manages memory and shape bookkeeping.
type Backend = tensor.Backend
