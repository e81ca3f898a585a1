package serialization

import (
	"encoding/json"
	"time"

	"github.com/strata-ml/strata/internal/tensor"
)

// Format constants.
const (
	MagicBytes      = "STRA"
	FormatVersionV1 = 1  // v1: no checksum, variable-size preamble
	FormatVersionV2 = 2  // v2: fixed 64-byte preamble with SHA-256 checksum
	HeaderAlignment = 64 // tensor data aligned to 64 bytes
	FixedHeaderSize = 64 // v2 preamble size
	ChecksumSize    = 32 // SHA-256
	ChecksumOffset  = 0x20
)

// strataVersion is the library version stamped into written files.
const strataVersion = "0.3.0"

// Data type string constants used in headers.
const (
	DTypeFloat32 = "float32"
	DTypeFloat64 = "float64"
	DTypeInt32   = "int32"
	DTypeInt64   = "int64"
	DTypeUint8   = "uint8"
)

// Flags for the .strata format.
const (
	FlagHasArchitecture uint32 = 1 << 0 // architecture config embedded in header
	FlagHasOptimizer    uint32 = 1 << 1 // optimizer state included (checkpoint)
	FlagHasMetadata     uint32 = 1 << 2 // custom metadata included
)

// Header is the JSON header of a .strata file.
type Header struct {
	FormatVersion  int               `json:"format_version"`
	StrataVersion  string            `json:"strata_version"`
	ModelType      string            `json:"model_type"`
	CreatedAt      time.Time         `json:"created_at"`
	Tensors        []TensorMeta      `json:"tensors"`
	Metadata       map[string]string `json:"metadata"`
	Architecture   json.RawMessage   `json:"architecture,omitempty"` // model config, opaque to this package
	CheckpointMeta *CheckpointMeta   `json:"checkpoint,omitempty"`
}

// CheckpointMeta carries training state for resumable checkpoints.
type CheckpointMeta struct {
	IsCheckpoint    bool           `json:"is_checkpoint"`
	Epoch           int            `json:"epoch"`
	Step            int64          `json:"step"`
	Loss            float64        `json:"loss"`
	OptimizerType   string         `json:"optimizer_type"`
	OptimizerConfig map[string]any `json:"optimizer_config"`
	TrainingMeta    map[string]any `json:"training_meta,omitempty"`
}

// TensorMeta describes one tensor in the data section.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset int64  `json:"offset"` // bytes from the start of the data section
	Size   int64  `json:"size"`   // bytes
}

// dtypeToString converts tensor.DataType to its header representation.
func dtypeToString(dt tensor.DataType) string {
	switch dt {
	case tensor.Float32:
		return DTypeFloat32
	case tensor.Float64:
		return DTypeFloat64
	case tensor.Int32:
		return DTypeInt32
	case tensor.Int64:
		return DTypeInt64
	case tensor.Uint8:
		return DTypeUint8
	default:
		return "unknown"
	}
}

// stringToDtype converts a header dtype string back to tensor.DataType.
func stringToDtype(s string) (tensor.DataType, bool) {
	switch s {
	case DTypeFloat32:
		return tensor.Float32, true
	case DTypeFloat64:
		return tensor.Float64, true
	case DTypeInt32:
		return tensor.Int32, true
	case DTypeInt64:
		return tensor.Int64, true
	case DTypeUint8:
		return tensor.Uint8, true
	default:
		return 0, false
	}
}
