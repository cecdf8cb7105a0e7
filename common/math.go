package common

import (
	"unsafe"
)

// CeilToNextMultiple returns the smallest multiple of step that is greater than or equal to value.
// This is how per-chunk uniform slots are sized: the GPU only accepts dynamic uniform offsets that
// are multiples of its alignment, so an 8 byte payload still occupies a full aligned slot.
//
// A value of 0 yields 0 and an already aligned value is returned unchanged. A step of 0 has no
// multiples and panics.
//
// Parameters:
//   - value: the raw size in bytes
//   - step: the alignment in bytes (must be > 0)
//
// Returns:
//   - uint32: value rounded up to the next multiple of step
func CeilToNextMultiple(value, step uint32) uint32 {
	if step == 0 {
		panic("common: CeilToNextMultiple requires a non-zero step")
	}
	n := value / step
	if value%step != 0 {
		n++
	}
	return step * n
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// Uses unsafe pointer operations to create a view into the original data.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}
