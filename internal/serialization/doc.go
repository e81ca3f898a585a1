// Package serialization implements the .strata container format and the
// safetensors interchange format.
//
// A .strata file stores named tensors plus a JSON header. The header can
// carry an architecture description (for full-model files), checkpoint
// metadata (for training-resume files), or neither (weights-only files).
// Version 2 of the format protects the tensor data with a SHA-256 checksum
// stored in a fixed-size preamble.
//
// Layout (v2):
//
//	0x00  magic "STRA"
//	0x04  u32 format version
//	0x08  u32 flags
//	0x0C  u32 reserved
//	0x10  u64 header length (JSON bytes)
//	0x18  u64 data section length
//	0x20  SHA-256 of the data section (32 bytes)
//	0x40  JSON header, then zero padding to a 64-byte boundary
//	....  tensor data, tightly packed in header order
package serialization
