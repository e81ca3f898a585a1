package serialization

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/strata-ml/strata/internal/tensor"
)

// ReaderOptions controls validation performed while opening a file.
type ReaderOptions struct {
	// SkipChecksum disables data-section checksum verification (v2 files).
	SkipChecksum bool
	// ValidationLevel controls header validation strictness.
	ValidationLevel ValidationLevel
}

// Reader reads .strata files (format v1 and v2).
type Reader struct {
	file       *os.File
	header     *Header
	flags      uint32
	dataOffset int64
	dataSize   int64
	closed     bool
}

// NewReader opens a .strata file with strict validation.
func NewReader(path string) (*Reader, error) {
	return NewReaderWithOptions(path, ReaderOptions{})
}

// NewReaderWithOptions opens a .strata file, parses and validates the
// header, and verifies the data checksum for v2 files.
func NewReaderWithOptions(path string, opts ReaderOptions) (*Reader, error) {
	//nolint:gosec // G304: the path is the user's chosen model file
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	r := &Reader{file: file}
	if err := r.parse(opts); err != nil {
		file.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) parse(opts ReaderOptions) error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.file, magic); err != nil {
		return fmt.Errorf("failed to read magic: %w", err)
	}
	if string(magic) != MagicBytes {
		return fmt.Errorf("%w: got %q", ErrInvalidMagic, magic)
	}

	var version uint32
	if err := binary.Read(r.file, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("failed to read version: %w", err)
	}

	var headerLen uint64
	var storedChecksum [32]byte
	switch version {
	case FormatVersionV1:
		// v1: u32 flags, u64 header length, no checksum.
		if err := binary.Read(r.file, binary.LittleEndian, &r.flags); err != nil {
			return fmt.Errorf("failed to read flags: %w", err)
		}
		if err := binary.Read(r.file, binary.LittleEndian, &headerLen); err != nil {
			return fmt.Errorf("failed to read header length: %w", err)
		}
	case FormatVersionV2:
		rest := make([]byte, FixedHeaderSize-8)
		if _, err := io.ReadFull(r.file, rest); err != nil {
			return fmt.Errorf("failed to read preamble: %w", err)
		}
		// Offsets below are relative to the 8 bytes already consumed.
		r.flags = binary.LittleEndian.Uint32(rest[0:4])
		headerLen = binary.LittleEndian.Uint64(rest[8:16])
		r.dataSize = int64(binary.LittleEndian.Uint64(rest[16:24]))
		copy(storedChecksum[:], rest[ChecksumOffset-8:ChecksumOffset-8+ChecksumSize])
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	if headerLen > MaxHeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrHeaderTooLarge, headerLen)
	}

	headerJSON := make([]byte, headerLen)
	if _, err := io.ReadFull(r.file, headerJSON); err != nil {
		return fmt.Errorf("failed to read header: %w", err)
	}
	r.header = &Header{}
	if err := json.Unmarshal(headerJSON, r.header); err != nil {
		return fmt.Errorf("failed to parse header: %w", err)
	}

	preambleSize := int64(20) // v1: magic + version + flags + headerLen
	if version == FormatVersionV2 {
		preambleSize = FixedHeaderSize
	}
	headerEnd := preambleSize + int64(headerLen)
	r.dataOffset = headerEnd + (HeaderAlignment-headerEnd%HeaderAlignment)%HeaderAlignment

	fileInfo, err := r.file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}
	if version == FormatVersionV1 {
		r.dataSize = fileInfo.Size() - r.dataOffset
	}
	if r.dataSize < 0 || r.dataOffset+r.dataSize > fileInfo.Size() {
		return fmt.Errorf("%w: data section [%d-%d] exceeds file size %d",
			ErrOutOfBounds, r.dataOffset, r.dataOffset+r.dataSize, fileInfo.Size())
	}

	if err := ValidateHeader(r.header, r.dataSize, opts.ValidationLevel); err != nil {
		return fmt.Errorf("header validation failed: %w", err)
	}

	if version == FormatVersionV2 && !opts.SkipChecksum {
		if _, err := r.file.Seek(r.dataOffset, io.SeekStart); err != nil {
			return fmt.Errorf("failed to seek to data section: %w", err)
		}
		computed, err := ComputeChecksumReader(io.LimitReader(r.file, r.dataSize))
		if err != nil {
			return fmt.Errorf("failed to compute checksum: %w", err)
		}
		if err := ValidateChecksum(computed, storedChecksum); err != nil {
			return err
		}
	}

	return nil
}

// Header returns the parsed file header.
func (r *Reader) Header() *Header {
	return r.header
}

// Flags returns the format flags from the preamble.
func (r *Reader) Flags() uint32 {
	return r.flags
}

// Metadata returns the custom metadata from the header.
func (r *Reader) Metadata() map[string]string {
	return r.header.Metadata
}

// TensorNames returns the names of all tensors in header order.
func (r *Reader) TensorNames() []string {
	names := make([]string, len(r.header.Tensors))
	for i, t := range r.header.Tensors {
		names[i] = t.Name
	}
	return names
}

// TensorInfo returns the metadata for a named tensor.
func (r *Reader) TensorInfo(name string) (*TensorMeta, error) {
	for i := range r.header.Tensors {
		if r.header.Tensors[i].Name == name {
			return &r.header.Tensors[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrTensorNotFound, name)
}

// ReadTensorData reads the raw bytes of a named tensor.
func (r *Reader) ReadTensorData(name string) ([]byte, error) {
	if r.closed {
		return nil, fmt.Errorf("reader is closed")
	}
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}

	data := make([]byte, meta.Size)
	if _, err := r.file.ReadAt(data, r.dataOffset+meta.Offset); err != nil {
		return nil, fmt.Errorf("failed to read tensor %q: %w", name, err)
	}
	return data, nil
}

// LoadTensor reads a named tensor into a new RawTensor.
func (r *Reader) LoadTensor(name string) (*tensor.RawTensor, error) {
	meta, err := r.TensorInfo(name)
	if err != nil {
		return nil, err
	}
	dtype, ok := stringToDtype(meta.DType)
	if !ok {
		return nil, fmt.Errorf("tensor %q: unsupported dtype %q", name, meta.DType)
	}

	raw, err := tensor.NewRaw(tensor.Shape(meta.Shape), dtype, tensor.CPU)
	if err != nil {
		return nil, fmt.Errorf("tensor %q: %w", name, err)
	}
	if int64(raw.ByteSize()) != meta.Size {
		return nil, fmt.Errorf("tensor %q: shape %v implies %d bytes but header declares %d",
			name, meta.Shape, raw.ByteSize(), meta.Size)
	}

	data, err := r.ReadTensorData(name)
	if err != nil {
		return nil, err
	}
	copy(raw.Data(), data)
	return raw, nil
}

// ReadStateDict loads all tensors into a state dictionary.
func (r *Reader) ReadStateDict() (map[string]*tensor.RawTensor, error) {
	stateDict := make(map[string]*tensor.RawTensor, len(r.header.Tensors))
	for _, meta := range r.header.Tensors {
		raw, err := r.LoadTensor(meta.Name)
		if err != nil {
			return nil, err
		}
		stateDict[meta.Name] = raw
	}
	return stateDict, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	return r.file.Close()
}
