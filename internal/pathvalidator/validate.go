// Package pathvalidator resolves and authorizes image-file paths against a
// per-user allow-list (component A). Grounded on the teacher's
// internal/disk/stat.go open-dance (exclusive open, fall back to read-only)
// and internal/fs/os.go's symlink-disabled open, generalized from "open a
// disk image for carving" to "open and authorize a candidate flash image".
package pathvalidator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flashkit/priv-helper/internal/fs"
)

// MaxPathBytes bounds the raw (pre-resolution) image_path string.
const MaxPathBytes = 4096

// MinResolvedPathLen is the heuristic guard against empty/root paths (§4.A
// step 5).
const MinResolvedPathLen = 8

// ISO9660SystemAreaSectors and SectorSize mirror the constants rstms-iso-kit
// carries in pkg/consts/consts.go; duplicated here (rather than imported,
// since iso-kit is a read-only reference pack, not a dependency) because the
// minimum-file-size check in §4.A step 8 needs them independently of the
// ISO9660 validator.
const (
	iso9660SystemAreaSectors = 16
	iso9660SectorSize        = 2048
)

// MinImageBytes is 16 system-area sectors plus one byte (§4.A step 8).
const MinImageBytes = iso9660SystemAreaSectors*iso9660SectorSize + 1

// ImageKind classifies the image by file extension, per the Image
// Descriptor data model (§3). Unknown extensions are OTHER and are still
// flashable — kind only gates whether the ISO 9660 Validator runs (§4.G
// step 4).
type ImageKind int

const (
	KindOther ImageKind = iota
	KindISO
	KindIMG
)

func classify(path string) ImageKind {
	switch filepath.Ext(path) {
	case ".iso", ".ISO":
		return KindISO
	case ".img", ".IMG":
		return KindIMG
	default:
		return KindOther
	}
}

// ImageDescriptor is the §3 Image Descriptor: a validated, open handle to
// the candidate image plus its canonical path and kind.
type ImageDescriptor struct {
	AbsolutePath string
	Kind         ImageKind
	File         *os.File
	Size         int64
}

// Close releases the file handle. Safe to call multiple times.
func (d *ImageDescriptor) Close() error {
	if d == nil || d.File == nil {
		return nil
	}
	err := d.File.Close()
	d.File = nil
	return err
}

// Validate implements the §4.A contract: validate(image_path, user_home) →
// absolute_path | Error, returning an opened, authorized ImageDescriptor.
// The caller owns the returned descriptor and must Close it.
func Validate(imagePath, userHome string) (*ImageDescriptor, error) {
	if len(imagePath) > MaxPathBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrPathTooLong, len(imagePath))
	}
	if len(userHome) < 3 {
		return nil, fmt.Errorf("%w: user_home too short", ErrPathUnresolvable)
	}

	real, err := resolveReal(imagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathUnresolvable, err)
	}

	allow, err := NewAllowList(userHome)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPathNotAllowed, err)
	}
	if !allow.Contains(real) {
		return nil, fmt.Errorf("%w: %s", ErrPathNotAllowed, real)
	}

	if len(real) < MinResolvedPathLen {
		return nil, fmt.Errorf("%w: resolved path too short", ErrPathNotAllowed)
	}

	dir := filepath.Dir(real)
	base := filepath.Base(real)

	dirFile, err := fs.OpenDirNoFollow(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryOpenFailed, err)
	}
	defer dirFile.Close()

	f, err := fs.OpenFileInDirExclusiveReadOnly(dirFile, base)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileOpenFailed, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat failed: %v", ErrFileOpenFailed, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, ErrNotRegularFile
	}
	if info.Size() < MinImageBytes {
		f.Close()
		return nil, fmt.Errorf("%w: %d bytes", ErrFileTooSmall, info.Size())
	}

	return &ImageDescriptor{
		AbsolutePath: real,
		Kind:         classify(real),
		File:         f,
		Size:         info.Size(),
	}, nil
}

// resolveReal canonicalizes path to an absolute, symlink-free form.
func resolveReal(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", err
	}
	return real, nil
}
