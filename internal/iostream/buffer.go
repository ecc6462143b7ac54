package iostream

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// AlignedBuffer is a page-aligned buffer backed by an anonymous mmap
// region, per spec.md §4.D step 3. Adapted from the teacher's
// internal/mmap/mmap.go, which maps a *file* region read-only; here there
// is no backing file — the allocator just needs page-aligned anonymous
// memory for direct I/O to cooperate with kernels that require aligned
// buffers for O_DIRECT-style transfers.
type AlignedBuffer struct {
	data []byte
}

// NewAlignedBuffer allocates a page-aligned buffer of at least size bytes.
func NewAlignedBuffer(size int) (*AlignedBuffer, error) {
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("allocating %d-byte aligned buffer: %w", size, err)
	}
	return &AlignedBuffer{data: data}, nil
}

// Bytes returns the full underlying slice.
func (b *AlignedBuffer) Bytes() []byte {
	return b.data
}

// Close releases the mapped memory. Calling it again is a no-op.
func (b *AlignedBuffer) Close() error {
	if b.data == nil {
		return nil
	}
	err := unix.Munmap(b.data)
	b.data = nil
	return err
}
