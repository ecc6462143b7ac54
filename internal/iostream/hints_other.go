//go:build !darwin

package iostream

// HintCacheBypass is a no-op off Darwin; spec.md §4.D step 1's cache hints
// map onto Darwin-specific fcntl commands with no portable equivalent, and
// a failed hint is already non-fatal by contract.
func HintCacheBypass(deviceFd, imageFd int) {}
