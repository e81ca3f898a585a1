package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/strata-ml/strata/internal/tensor"
)

// safetensorsEntry is the per-tensor JSON record in a safetensors header.
type safetensorsEntry struct {
	DType       string `json:"dtype"`
	Shape       []int  `json:"shape"`
	DataOffsets [2]int `json:"data_offsets"`
}

// dtypeToSafetensors maps our dtype strings to safetensors dtype names.
func dtypeToSafetensors(dt tensor.DataType) (string, error) {
	switch dt {
	case tensor.Float32:
		return "F32", nil
	case tensor.Float64:
		return "F64", nil
	case tensor.Int32:
		return "I32", nil
	case tensor.Int64:
		return "I64", nil
	case tensor.Uint8:
		return "U8", nil
	default:
		return "", fmt.Errorf("dtype %v has no safetensors representation", dt)
	}
}

// safetensorsToDtype maps safetensors dtype names back to tensor.DataType.
func safetensorsToDtype(s string) (tensor.DataType, error) {
	switch s {
	case "F32":
		return tensor.Float32, nil
	case "F64":
		return tensor.Float64, nil
	case "I32":
		return tensor.Int32, nil
	case "I64":
		return tensor.Int64, nil
	case "U8":
		return tensor.Uint8, nil
	default:
		return 0, fmt.Errorf("unsupported safetensors dtype %q", s)
	}
}

// WriteSafetensors writes a state dictionary in the safetensors format:
// an 8-byte little-endian header length, a JSON header mapping tensor
// names to dtype/shape/offsets, then the raw tensor data. Tensors are
// laid out in sorted name order. A non-nil metadata map is stored under
// the "__metadata__" key.
func WriteSafetensors(path string, stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	headerMap := make(map[string]any, len(stateDict)+1)
	offset := 0
	for _, name := range names {
		raw := stateDict[name]
		dtype, err := dtypeToSafetensors(raw.DType())
		if err != nil {
			return fmt.Errorf("tensor %q: %w", name, err)
		}
		end := offset + raw.ByteSize()
		headerMap[name] = safetensorsEntry{
			DType:       dtype,
			Shape:       []int(raw.Shape()),
			DataOffsets: [2]int{offset, end},
		}
		offset = end
	}
	if len(metadata) > 0 {
		headerMap["__metadata__"] = metadata
	}

	headerJSON, err := json.Marshal(headerMap)
	if err != nil {
		return fmt.Errorf("failed to marshal safetensors header: %w", err)
	}

	//nolint:gosec // G304: the path is the user's chosen export location
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	var lenBuf [8]byte
	binary.LittleEndian.PutUint64(lenBuf[:], uint64(len(headerJSON)))
	if _, err := file.Write(lenBuf[:]); err != nil {
		return fmt.Errorf("failed to write header length: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, name := range names {
		if _, err := file.Write(stateDict[name].Data()); err != nil {
			return fmt.Errorf("failed to write tensor %q: %w", name, err)
		}
	}
	return nil
}

// ReadSafetensors loads a safetensors file into a state dictionary and
// returns any metadata stored under "__metadata__".
func ReadSafetensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: the path is the user's chosen import location
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var lenBuf [8]byte
	if _, err := io.ReadFull(file, lenBuf[:]); err != nil {
		return nil, nil, fmt.Errorf("failed to read header length: %w", err)
	}
	headerLen := binary.LittleEndian.Uint64(lenBuf[:])
	if headerLen > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerLen)
	}

	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(file, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var rawHeader map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &rawHeader); err != nil {
		return nil, nil, fmt.Errorf("failed to parse safetensors header: %w", err)
	}

	var metadata map[string]string
	if metaJSON, ok := rawHeader["__metadata__"]; ok {
		if err := json.Unmarshal(metaJSON, &metadata); err != nil {
			return nil, nil, fmt.Errorf("failed to parse __metadata__: %w", err)
		}
		delete(rawHeader, "__metadata__")
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}
	dataOffset := int64(8) + int64(headerLen)
	dataSize := fileInfo.Size() - dataOffset

	stateDict := make(map[string]*tensor.RawTensor, len(rawHeader))
	for name, entryJSON := range rawHeader {
		var entry safetensorsEntry
		if err := json.Unmarshal(entryJSON, &entry); err != nil {
			return nil, nil, fmt.Errorf("tensor %q: failed to parse entry: %w", name, err)
		}

		dtype, err := safetensorsToDtype(entry.DType)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", name, err)
		}

		begin, end := int64(entry.DataOffsets[0]), int64(entry.DataOffsets[1])
		if begin < 0 || end < begin || end > dataSize {
			return nil, nil, fmt.Errorf("%w: tensor %q offsets [%d-%d], data size %d",
				ErrOutOfBounds, name, begin, end, dataSize)
		}

		raw, err := tensor.NewRaw(tensor.Shape(entry.Shape), dtype, tensor.CPU)
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", name, err)
		}
		if int64(raw.ByteSize()) != end-begin {
			return nil, nil, fmt.Errorf("tensor %q: shape %v implies %d bytes but offsets span %d",
				name, entry.Shape, raw.ByteSize(), end-begin)
		}
		if _, err := file.ReadAt(raw.Data(), dataOffset+begin); err != nil {
			return nil, nil, fmt.Errorf("failed to read tensor %q: %w", name, err)
		}
		stateDict[name] = raw
	}

	return stateDict, metadata, nil
}
