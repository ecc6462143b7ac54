package device

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// diskInfo is the subset of `diskutil info -plist` fields SPEC_FULL.md
// §4.C.1 maps onto the Disk Arbitration description dictionary:
// Internal (diskutil's "Internal" key → spec's "DeviceInternal" boolean),
// the device identifier (taken from the name passed in, not from the
// plist), and whether the media is removable.
type diskInfo struct {
	DeviceIdentifier string
	Internal         bool
	RemovableMedia   bool
}

// diskutilInfo shells out to `diskutil info -plist <bsdName>` and scans the
// plist text for the two boolean keys this helper cares about (Internal
// and RemovableMedia). A hand-rolled fragment scanner is used rather than
// a full plist decoder: the helper never needs the rest of the
// dictionary, and pulling in a plist library for two key lookups would be
// disproportionate.
func diskutilInfo(ctx context.Context, bsdName string) (*diskInfo, error) {
	out, err := runDiskutil(ctx, "info", "-plist", bsdName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDiskInfoUnavailable, err)
	}

	info := &diskInfo{DeviceIdentifier: bsdName}
	internalFound := false

	lines := strings.Split(string(out), "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.Contains(trimmed, "<key>Internal</key>"):
			if v, ok := plistBoolAfter(lines, i); ok {
				info.Internal = v
				internalFound = true
			}
		case strings.Contains(trimmed, "<key>RemovableMedia</key>"):
			if v, ok := plistBoolAfter(lines, i); ok {
				info.RemovableMedia = v
			}
		}
	}

	if !internalFound {
		return nil, ErrInternalDeviceKeyUnavailable
	}
	return info, nil
}

// plistBoolAfter looks at the line immediately following a <key> line for
// the property-list boolean tags <true/> or <false/>.
func plistBoolAfter(lines []string, keyIdx int) (bool, bool) {
	if keyIdx+1 >= len(lines) {
		return false, false
	}
	next := strings.TrimSpace(lines[keyIdx+1])
	switch {
	case strings.Contains(next, "<true/>"):
		return true, true
	case strings.Contains(next, "<false/>"):
		return false, true
	default:
		return false, false
	}
}

// unmountDisk drives the §4.C.5 "issue a whole-device unmount" step. diskutil
// blocks until completion, which is the stand-in for DA's run-loop-pumped
// completion callback: the blocking exec.Cmd.Run() call here IS the "run
// loop pump" per SPEC_FULL.md §4.C.1.
func unmountDisk(ctx context.Context, bsdName string) error {
	if _, err := runDiskutil(ctx, "unmountDisk", bsdName); err != nil {
		return fmt.Errorf("%w: %v", ErrUnmountFailed, err)
	}
	return nil
}

// ejectDisk implements the optional §4.G.2 post-write eject. A failed
// eject is reported to the caller, who (per SPEC_FULL.md §4.G.2) logs it
// as a warning without flipping an otherwise-successful write to failure.
func ejectDisk(ctx context.Context, bsdName string) error {
	if _, err := runDiskutil(ctx, "eject", bsdName); err != nil {
		return fmt.Errorf("%w: %v", ErrEjectFailed, err)
	}
	return nil
}

// runDiskutil runs diskutil with no time limit of its own; only
// cancellation of ctx stops it early.
func runDiskutil(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, "/usr/sbin/diskutil", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("diskutil %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return stdout.Bytes(), nil
}
