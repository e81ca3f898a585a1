package serialization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strata-ml/strata/internal/tensor"
)

func rawFromFloats(t *testing.T, shape tensor.Shape, values []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func writeTestFile(t *testing.T, path string, stateDict map[string]*tensor.RawTensor) {
	t.Helper()
	w, err := NewWriter(path)
	require.NoError(t, err)
	require.NoError(t, w.WriteStateDict(stateDict, "test", map[string]string{"source": "unit-test"}))
	require.NoError(t, w.Close())
}

func TestWriteReadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.strata")
	stateDict := map[string]*tensor.RawTensor{
		"0.weight": rawFromFloats(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6}),
		"0.bias":   rawFromFloats(t, tensor.Shape{2}, []float32{0.5, -0.5}),
	}
	writeTestFile(t, path, stateDict)

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	header := r.Header()
	assert.Equal(t, FormatVersionV2, header.FormatVersion)
	assert.Equal(t, "test", header.ModelType)
	assert.Equal(t, "unit-test", r.Metadata()["source"])
	assert.ElementsMatch(t, []string{"0.weight", "0.bias"}, r.TensorNames())

	loaded, err := r.ReadStateDict()
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	weight := loaded["0.weight"]
	assert.Equal(t, tensor.Shape{2, 3}, weight.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, weight.AsFloat32())
	assert.Equal(t, []float32{0.5, -0.5}, loaded["0.bias"].AsFloat32())
}

func TestSortedTensorLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.strata")
	stateDict := map[string]*tensor.RawTensor{
		"b": rawFromFloats(t, tensor.Shape{1}, []float32{2}),
		"a": rawFromFloats(t, tensor.Shape{1}, []float32{1}),
		"c": rawFromFloats(t, tensor.Shape{1}, []float32{3}),
	}
	writeTestFile(t, path, stateDict)

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, []string{"a", "b", "c"}, r.TensorNames())

	var prev int64 = -1
	for _, name := range r.TensorNames() {
		meta, err := r.TensorInfo(name)
		require.NoError(t, err)
		assert.Greater(t, meta.Offset, prev)
		prev = meta.Offset
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.strata")
	stateDict := map[string]*tensor.RawTensor{
		"w": rawFromFloats(t, tensor.Shape{4}, []float32{1, 2, 3, 4}),
	}
	writeTestFile(t, path, stateDict)

	// Flip a byte in the data section (the last byte of the file).
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[len(data)-1] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = NewReader(path)
	require.ErrorIs(t, err, ErrChecksumMismatch)

	// SkipChecksum lets the corrupted file open.
	r, err := NewReaderWithOptions(path, ReaderOptions{SkipChecksum: true})
	require.NoError(t, err)
	r.Close()
}

func TestInvalidMagicRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.strata")
	require.NoError(t, os.WriteFile(path, []byte("NOPEnope-not-a-model-file-at-all"), 0o644))

	_, err := NewReader(path)
	require.ErrorIs(t, err, ErrInvalidMagic)
}

func TestTensorNotFound(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.strata")
	writeTestFile(t, path, map[string]*tensor.RawTensor{
		"w": rawFromFloats(t, tensor.Shape{1}, []float32{1}),
	})

	r, err := NewReader(path)
	require.NoError(t, err)
	defer r.Close()

	_, err = r.LoadTensor("missing")
	require.ErrorIs(t, err, ErrTensorNotFound)
}

func TestValidateTensorOffsets(t *testing.T) {
	tests := []struct {
		name    string
		tensors []TensorMeta
		size    int64
		wantErr string
	}{
		{
			name: "valid",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 16},
				{Name: "b", Offset: 16, Size: 8},
			},
			size: 24,
		},
		{
			name: "overlap",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 16},
				{Name: "b", Offset: 8, Size: 8},
			},
			size:    24,
			wantErr: "offset_overlap",
		},
		{
			name: "out of bounds",
			tensors: []TensorMeta{
				{Name: "a", Offset: 0, Size: 32},
			},
			size:    24,
			wantErr: "out_of_bounds",
		},
		{
			name: "negative offset",
			tensors: []TensorMeta{
				{Name: "a", Offset: -8, Size: 8},
			},
			size:    24,
			wantErr: "negative_offset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTensorOffsets(tt.tensors, tt.size)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateTensorName(t *testing.T) {
	assert.NoError(t, ValidateTensorName("0.weight"))
	assert.NoError(t, ValidateTensorName("layers.12.attn.bias"))
	assert.Error(t, ValidateTensorName(""))
	assert.Error(t, ValidateTensorName("../escape"))
	assert.Error(t, ValidateTensorName("dir/weight"))
	assert.Error(t, ValidateTensorName("null\x00byte"))
}

func TestValidateHeaderDuplicateNames(t *testing.T) {
	header := &Header{
		Tensors: []TensorMeta{
			{Name: "w", DType: DTypeFloat32, Shape: []int{1}, Offset: 0, Size: 4},
			{Name: "w", DType: DTypeFloat32, Shape: []int{1}, Offset: 4, Size: 4},
		},
	}
	err := ValidateHeader(header, 8, ValidationStrict)
	require.ErrorIs(t, err, ErrDuplicateTensor)
}

func TestSafetensorsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	stateDict := map[string]*tensor.RawTensor{
		"dense.weight": rawFromFloats(t, tensor.Shape{2, 2}, []float32{1, 2, 3, 4}),
		"dense.bias":   rawFromFloats(t, tensor.Shape{2}, []float32{-1, 1}),
	}
	meta := map[string]string{"format": "strata-export"}

	require.NoError(t, WriteSafetensors(path, stateDict, meta))

	loaded, loadedMeta, err := ReadSafetensors(path)
	require.NoError(t, err)
	assert.Equal(t, meta, loadedMeta)
	require.Len(t, loaded, 2)
	assert.Equal(t, tensor.Shape{2, 2}, loaded["dense.weight"].Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, loaded["dense.weight"].AsFloat32())
	assert.Equal(t, []float32{-1, 1}, loaded["dense.bias"].AsFloat32())
}

func TestSafetensorsRejectsBadOffsets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")
	stateDict := map[string]*tensor.RawTensor{
		"w": rawFromFloats(t, tensor.Shape{2}, []float32{1, 2}),
	}
	require.NoError(t, WriteSafetensors(path, stateDict, nil))

	// Truncate the data section so the declared offsets run past EOF.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data[:len(data)-4], 0o644))

	_, _, err = ReadSafetensors(path)
	require.ErrorIs(t, err, ErrOutOfBounds)
}
