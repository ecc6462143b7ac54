//go:build !darwin

package sysinfo

import "runtime"

// Stat is a stub off Darwin: the helper never ships for another OS, this
// only exists so `go test ./...` builds on a non-macOS dev machine.
func Stat() (*SysInfo, error) {
	return &SysInfo{Name: runtime.GOOS, Release: "unsupported", Version: "unknown"}, nil
}
