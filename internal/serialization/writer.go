package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/strata-ml/strata/internal/tensor"
)

// Writer writes .strata files. Files are always written in format v2
// (with checksum); v1 support is read-only.
type Writer struct {
	file   *os.File
	closed bool
}

// NewWriter creates a .strata file writer at the given path.
func NewWriter(path string) (*Writer, error) {
	//nolint:gosec // G304: the path is the user's chosen save location
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	return &Writer{file: file}, nil
}

// WriteStateDict writes a state dictionary with a minimal header.
func (w *Writer) WriteStateDict(stateDict map[string]*tensor.RawTensor, modelType string, metadata map[string]string) error {
	header := Header{
		ModelType: modelType,
		Metadata:  metadata,
	}
	return w.WriteStateDictWithHeader(stateDict, header)
}

// WriteStateDictWithHeader writes a state dictionary under a caller-supplied
// header, filling in format bookkeeping (version, tensor metas, offsets,
// timestamps). Tensors are laid out in sorted name order so identical state
// dicts always produce identical files.
func (w *Writer) WriteStateDictWithHeader(stateDict map[string]*tensor.RawTensor, header Header) error {
	if w.closed {
		return fmt.Errorf("writer is closed")
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		names = append(names, name)
	}
	sort.Strings(names)

	header.FormatVersion = FormatVersionV2
	header.StrataVersion = strataVersion
	if header.CreatedAt.IsZero() {
		header.CreatedAt = time.Now().UTC()
	}
	if header.Metadata == nil {
		header.Metadata = make(map[string]string)
	}

	// Build the data section and tensor metadata together.
	var dataSize int64
	header.Tensors = make([]TensorMeta, 0, len(stateDict))
	for _, name := range names {
		raw := stateDict[name]
		size := int64(raw.ByteSize())
		header.Tensors = append(header.Tensors, TensorMeta{
			Name:   name,
			DType:  dtypeToString(raw.DType()),
			Shape:  []int(raw.Shape()),
			Offset: dataSize,
			Size:   size,
		})
		dataSize += size
	}

	data := make([]byte, 0, dataSize)
	for _, name := range names {
		data = append(data, stateDict[name].Data()...)
	}
	checksum := ComputeChecksum(data)

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerJSON) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	flags := uint32(0)
	if len(header.Metadata) > 0 {
		flags |= FlagHasMetadata
	}
	if len(header.Architecture) > 0 {
		flags |= FlagHasArchitecture
	}
	if header.CheckpointMeta != nil && header.CheckpointMeta.IsCheckpoint {
		flags |= FlagHasOptimizer
	}

	// Fixed 64-byte preamble.
	preamble := make([]byte, FixedHeaderSize)
	copy(preamble[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(preamble[4:8], FormatVersionV2)
	binary.LittleEndian.PutUint32(preamble[8:12], flags)
	binary.LittleEndian.PutUint64(preamble[16:24], uint64(len(headerJSON)))
	binary.LittleEndian.PutUint64(preamble[24:32], uint64(dataSize))
	copy(preamble[ChecksumOffset:ChecksumOffset+ChecksumSize], checksum[:])

	if _, err := w.file.Write(preamble); err != nil {
		return fmt.Errorf("failed to write preamble: %w", err)
	}
	if _, err := w.file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Pad the header to the alignment boundary.
	pos := int64(FixedHeaderSize) + int64(len(headerJSON))
	if padding := (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment; padding > 0 {
		if _, err := w.file.Write(make([]byte, padding)); err != nil {
			return fmt.Errorf("failed to write padding: %w", err)
		}
	}

	if _, err := w.file.Write(data); err != nil {
		return fmt.Errorf("failed to write tensor data: %w", err)
	}

	return nil
}

// Close closes the underlying file.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.file.Close()
}
