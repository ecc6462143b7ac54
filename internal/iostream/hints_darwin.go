//go:build darwin

package iostream

import "golang.org/x/sys/unix"

// HintCacheBypass implements spec.md §4.D step 1: hint the kernel to
// bypass filesystem caching on both the device and the image, and hint
// sequential read-ahead on the image. Darwin exposes these as fcntl
// commands rather than a madvise/O_DIRECT flag. Failures are non-fatal
// and are discarded: the function returns nothing, so a failed hint is
// neither reported to the caller nor logged.
func HintCacheBypass(deviceFd, imageFd int) {
	_, _ = unix.FcntlInt(uintptr(deviceFd), unix.F_NOCACHE, 1)
	_, _ = unix.FcntlInt(uintptr(imageFd), unix.F_NOCACHE, 1)
	_, _ = unix.FcntlInt(uintptr(imageFd), unix.F_RDAHEAD, 1)
}
