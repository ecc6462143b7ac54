//go:build !windows
// +build !windows

package fs

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// OpenDirNoFollow opens dir for use as a base for Openat calls, refusing to
// open it if its final path component is a symlink (O_NOFOLLOW; symlinks
// in earlier components are still followed). Mirrors the
// teacher's O_EXCL-then-fallback dance in internal/disk/stat.go, but for
// directories we never fall back: a symlinked allow-list directory is a
// hard failure, not a degraded mode.
func OpenDirNoFollow(dir string) (*os.File, error) {
	fd, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, fmt.Errorf("open directory %q (no-follow): %w", dir, err)
	}
	return os.NewFile(uintptr(fd), dir), nil
}

// OpenFileInDirExclusiveReadOnly opens name relative to dirFd, refusing to
// follow a final symlink component and taking an advisory exclusive lock so
// nothing else can mutate the file out from under validation.
func OpenFileInDirExclusiveReadOnly(dirFd *os.File, name string) (*os.File, error) {
	fd, err := unix.Openat(int(dirFd.Fd()), name, unix.O_RDONLY|unix.O_NOFOLLOW, 0)
	if err != nil {
		return nil, fmt.Errorf("open %q under %q: %w", name, dirFd.Name(), err)
	}
	f := os.NewFile(uintptr(fd), name)
	if err := unix.Flock(int(fd), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %q: %w", name, err)
	}
	return f, nil
}
