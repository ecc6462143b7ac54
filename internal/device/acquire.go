package device

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sys/unix"

	"github.com/flashkit/priv-helper/internal/fs"
)

// Handle is the §3 Device Handle: an exclusively opened, validated block
// device ready for streaming I/O. BlockSize/BlockCount are 0 when the
// platform probe is unavailable (see probe_other.go); callers fall back
// to the Write Engine's own defaults in that case.
type Handle struct {
	BSDName    string
	File       *os.File
	BlockSize  uint32
	BlockCount uint64
}

// Close releases the exclusive device handle. It does not eject the
// media — ejection is a distinct, optional step the Request Handler
// drives after the handle is closed (§4.G.2).
func (h *Handle) Close() error {
	if h == nil || h.File == nil {
		return nil
	}
	err := h.File.Close()
	h.File = nil
	return err
}

// Eject requests diskutil eject the media. Call only after Close.
func Eject(ctx context.Context, bsdName string) error {
	return ejectDisk(ctx, bsdName)
}

// Acquire implements §4.C's acquire(bsd_name) → device_handle | Error
// contract. Each step below corresponds to one edge of the documented
// Idle → SessionCreated → DiskRefCreated → DescriptionCopied →
// InternalnessChecked → UnmountInFlight → (Success | Dissented) state
// machine; every error return here already released the resource that
// step had acquired (diskutilInfo/unmountDisk own no long-lived handle,
// so there is nothing to unwind until openDeviceExclusive succeeds).
func Acquire(ctx context.Context, bsdName string) (*Handle, error) {
	name, err := sanitizeBSDName(bsdName)
	if err != nil {
		return nil, err
	}

	// SessionCreated -> DiskRefCreated -> DescriptionCopied.
	info, err := diskutilInfo(ctx, name)
	if err != nil {
		return nil, err
	}

	// InternalnessChecked: the load-bearing safety gate. An internal disk
	// must never be unmounted by this helper.
	if info.Internal {
		return nil, fmt.Errorf("%w: %s", ErrUnmountOnInternalDevice, name)
	}

	// UnmountInFlight -> (Success | Dissented).
	if err := unmountDisk(ctx, name); err != nil {
		return nil, err
	}

	devPath, openErr := openDeviceExclusive(name)
	if openErr != nil {
		return nil, openErr
	}

	if err := guardNotBlockDevice(devPath); err != nil {
		return nil, closeAndAggregate(devPath, err)
	}
	if err := guardNotRootFilesystem(devPath); err != nil {
		return nil, closeAndAggregate(devPath, err)
	}

	blockSize, bsErr := probeBlockSize(int(devPath.Fd()))
	if bsErr != nil {
		blockSize = 0 // Write Engine applies its own 4096 default.
	}
	blockCount, bcErr := probeBlockCount(int(devPath.Fd()))
	if bcErr != nil {
		blockCount = 0
	}

	return &Handle{
		BSDName:    name,
		File:       devPath,
		BlockSize:  blockSize,
		BlockCount: blockCount,
	}, nil
}

// closeAndAggregate closes f and combines any close error with guardErr,
// so a failing guard doesn't silently swallow a failing unwind (the
// Device Acquirer is exactly the sort of scoped-resource teardown
// go-multierror is already in the dependency graph for).
func closeAndAggregate(f *os.File, guardErr error) error {
	var result *multierror.Error
	result = multierror.Append(result, guardErr)
	if err := f.Close(); err != nil {
		result = multierror.Append(result, fmt.Errorf("closing device after guard failure: %w", err))
	}
	return result.ErrorOrNil()
}

// openDeviceExclusive implements §4.C step 6: open /dev/ without
// following symlinks, then open the sanitized name inside it read-write
// with an exclusive lock.
func openDeviceExclusive(name string) (*os.File, error) {
	devDir, err := fs.OpenDirNoFollow("/dev")
	if err != nil {
		return nil, fmt.Errorf("%w: opening /dev: %v", ErrDeviceOpenFailed, err)
	}
	defer devDir.Close()

	fd, err := unix.Openat(int(devDir.Fd()), name, unix.O_RDWR|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceOpenFailed, err)
	}
	if err := unix.Flock(fd, unix.LOCK_EX|unix.LOCK_NB); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("%w: exclusive lock: %v", ErrDeviceOpenFailed, err)
	}

	return os.NewFile(uintptr(fd), filepath.Join("/dev", name)), nil
}

// guardNotBlockDevice implements §4.C step 7.
func guardNotBlockDevice(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat: %v", ErrDeviceOpenFailed, err)
	}
	if info.Mode()&os.ModeDevice == 0 {
		return fmt.Errorf("%w: %s", ErrNotBlockDevice, f.Name())
	}
	return nil
}

// guardNotRootFilesystem implements §4.C step 8's defense-in-depth inode
// comparison against "/".
func guardNotRootFilesystem(f *os.File) error {
	devStat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat device: %v", ErrDeviceOpenFailed, err)
	}
	rootStat, err := os.Stat("/")
	if err != nil {
		return fmt.Errorf("%w: stat /: %v", ErrDeviceOpenFailed, err)
	}

	devSys, ok1 := devStat.Sys().(*unix.Stat_t)
	rootSys, ok2 := rootStat.Sys().(*unix.Stat_t)
	if !ok1 || !ok2 {
		return fmt.Errorf("%w: could not compare inodes", ErrRefusingRootDevice)
	}
	if devSys.Ino == rootSys.Ino && devSys.Dev == rootSys.Dev {
		return ErrRefusingRootDevice
	}
	return nil
}
