package device

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// bsdNamePattern is §6's device identifier grammar: disk<N> or rdisk<N>.
// The N bound (1 < N < 100) is checked separately after parsing, since a
// regex repetition count can't itself express the "typically disk0/disk1
// is the boot disk" exclusion.
var bsdNamePattern = regexp.MustCompile(`^r?disk([0-9]+)$`)

const (
	minDiskNumber = 1
	maxDiskNumber = 100
)

// sanitizeBSDName validates length and rejects path separators, maps any
// remaining non-printable byte to '.' into a fixed-size buffer (the
// Go-native equivalent of §4.C step 1's "sanitize into a fixed-size
// buffer"), then enforces §6's disk<N>/rdisk<N> grammar with 1 < N < 100 —
// the belt-and-braces guard against the internal boot disk, which is
// typically disk0/disk1. Nothing reaches a diskutil shell-out or an
// open(2) call without passing this check.
func sanitizeBSDName(name string) (string, error) {
	if len(name) < 2 {
		return "", fmt.Errorf("%w: %q", ErrNameTooShort, name)
	}
	if len(name) > MaxNameBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrNameTooLong, len(name))
	}
	if strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: %q", ErrNameHasPathSeparator, name)
	}

	buf := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		b := name[i]
		if b < 0x20 || b > 0x7e {
			buf[i] = '.'
			continue
		}
		buf[i] = b
	}
	sanitized := string(buf)

	m := bsdNamePattern.FindStringSubmatch(sanitized)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrDeviceNameMalformed, sanitized)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= minDiskNumber || n >= maxDiskNumber {
		return "", fmt.Errorf("%w: %q", ErrDeviceNameMalformed, sanitized)
	}

	return sanitized, nil
}
