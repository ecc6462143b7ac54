//go:build darwin

package sysinfo

import (
	"bufio"
	"bytes"
	"os/exec"
	"runtime"
	"strings"
)

// Stat shells out to sw_vers, the same "no cgo-free binding exists"
// idiom internal/device uses for diskutil.
func Stat() (*SysInfo, error) {
	output, err := exec.Command("sw_vers").Output()
	if err != nil {
		return &SysInfo{Name: runtime.GOOS, Release: "macOS", Version: "unknown"}, err
	}

	var productName, productVersion string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "ProductName:") {
			productName = strings.TrimSpace(strings.TrimPrefix(line, "ProductName:"))
		}
		if strings.HasPrefix(line, "ProductVersion:") {
			productVersion = strings.TrimSpace(strings.TrimPrefix(line, "ProductVersion:"))
		}
	}
	if productName == "" {
		productName = "macOS"
	}
	if productVersion == "" {
		productVersion = "unknown"
	}

	return &SysInfo{Name: runtime.GOOS, Release: productName, Version: productVersion}, nil
}
