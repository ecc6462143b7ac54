//go:build darwin

package device

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Darwin disk ioctl request codes (bsd/sys/disk.h). golang.org/x/sys/unix
// does not export these — they're reproduced here the same way the
// teacher's internal/disk/stat.go hand-derives BLKGETSIZE64 for Linux
// rather than pulling in a dedicated ioctl-constants package.
const (
	dkiocGetBlockSize  = 0x40046418 // _IOR('d', 24, uint32)
	dkiocGetBlockCount = 0x40086419 // _IOR('d', 25, uint64)
)

// probeBlockSize issues DKIOCGETBLOCKSIZE on the open device fd.
func probeBlockSize(fd int) (uint32, error) {
	size, err := ioctlGetUint32(fd, dkiocGetBlockSize)
	if err != nil {
		return 0, fmt.Errorf("DKIOCGETBLOCKSIZE: %w", err)
	}
	return size, nil
}

// probeBlockCount issues DKIOCGETBLOCKCOUNT on the open device fd.
func probeBlockCount(fd int) (uint64, error) {
	count, err := ioctlGetUint64(fd, dkiocGetBlockCount)
	if err != nil {
		return 0, fmt.Errorf("DKIOCGETBLOCKCOUNT: %w", err)
	}
	return count, nil
}

func ioctlGetUint32(fd int, req uintptr) (uint32, error) {
	var v uint32
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return 0, errno
	}
	return v, nil
}

func ioctlGetUint64(fd int, req uintptr) (uint64, error) {
	var v uint64
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(unsafe.Pointer(&v)))
	if errno != 0 {
		return 0, errno
	}
	return v, nil
}
