// Package device implements component C, the Disk-Arbitration-mediated
// device acquirer from spec.md §4.C: validate a BSD device name, confirm
// diskutil does not report it as an internal device, unmount it, then
// open it exclusively for read-write access.
//
// Grounded on the teacher's internal/disk/stat.go open-dance (O_EXCL first,
// fall back without it). Disk Arbitration has no cgo-free Go binding
// anywhere in the example pack, so DA's session/disk-reference/
// description-dictionary machinery is mapped onto shelling out to
// /usr/sbin/diskutil, the same "shell out for a platform capability no Go
// library wraps" idiom wiwaszko-intel-os-image-composer's imagesign.go
// uses for sbsign, and pkg/sysinfo's own sysinfo_darwin.go uses for
// sw_vers.
package device

import "errors"

var (
	ErrNameTooShort                 = errors.New("bsd name too short")
	ErrNameTooLong                  = errors.New("bsd name too long")
	ErrNameHasPathSeparator         = errors.New("bsd name contains a path separator")
	ErrDeviceNameMalformed          = errors.New("bsd name does not match disk<N>/rdisk<N> with 1 < N < 100")
	ErrDiskInfoUnavailable          = errors.New("disk arbitration info unavailable")
	ErrInternalDeviceKeyUnavailable = errors.New("internal device key unavailable")
	ErrUnmountOnInternalDevice      = errors.New("refusing to unmount an internal device")
	ErrUnmountFailed                = errors.New("unmount failed")
	ErrDeviceOpenFailed             = errors.New("device open failed")
	ErrNotBlockDevice               = errors.New("not a block device")
	ErrRefusingRootDevice           = errors.New("refusing to operate on the root filesystem's device")
	ErrEjectFailed                  = errors.New("eject failed")
)

// MaxNameBytes bounds a raw BSD device name (§4.C input constraints).
const MaxNameBytes = 64
