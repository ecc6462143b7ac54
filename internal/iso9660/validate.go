package iso9660

import (
	"errors"
	"fmt"
	"io"
)

// seen tracks which of the three required descriptors have been observed
// while scanning the volume descriptor set.
type seen struct {
	bootRecord bool
	primary    bool
	terminator bool
}

func (s seen) complete() bool {
	return s.bootRecord && s.primary && s.terminator
}

// ValidateStructure implements §4.B's validate_structure(file) → Valid |
// Reason contract: a minimal structural + El Torito bootability sanity
// check, not a general-purpose ISO 9660 reader.
//
// deviceSize, when > 0, is cross-checked against the image size so
// InsufficientDeviceCapacity can be reported before a write is attempted;
// pass 0 to skip that check (the device may not be known yet).
//
// On success it also returns the PVD's informational fields (§4.B.1) for
// the caller to log; these never affect the Valid/Reason outcome.
func ValidateStructure(r io.ReaderAt, imageSize, deviceSize int64) (*PrimaryVolumeInfo, error) {
	if imageSize < SystemAreaSectors*SectorSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrSystemBlockTooShort, imageSize)
	}
	if deviceSize > 0 && imageSize > deviceSize {
		return nil, fmt.Errorf("%w: image %d bytes > device %d bytes", ErrInsufficientDeviceCapacity, imageSize, deviceSize)
	}

	var s seen
	var bootRecordCatalogLBA uint32
	var haveBootRecord bool
	var pvdInfo PrimaryVolumeInfo

	maxSectors := imageSize / SectorSize

	for sector := int64(SystemAreaSectors); sector < maxSectors; sector++ {
		buf := make([]byte, SectorSize)
		n, err := r.ReadAt(buf, sector*SectorSize)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("%w: sector %d: %v", ErrSectorTooShort, sector, err)
		}
		if n < SectorSize {
			return nil, fmt.Errorf("%w: sector %d: read %d of %d bytes", ErrSectorTooShort, sector, n, SectorSize)
		}

		descType := buf[0]
		switch descType {
		case descTypeBootRecord:
			if err := checkStandardIdentifier(buf); err != nil {
				return nil, err
			}
			s.bootRecord = true
			bootSystemID := string(buf[7:39])
			if isElTorito(bootSystemID) {
				haveBootRecord = true
				bootRecordCatalogLBA = readLE32(buf[71:75])
			}
		case descTypePrimary:
			if err := checkStandardIdentifier(buf); err != nil {
				return nil, err
			}
			s.primary = true
			pvdInfo = parsePrimaryVolumeInfo(buf)
		case descTypeTerminator:
			if err := checkStandardIdentifier(buf); err != nil {
				return nil, err
			}
			s.terminator = true
		}

		if s.complete() {
			break
		}
	}

	if !s.complete() {
		return nil, fmt.Errorf("%w: boot_record=%v primary=%v terminator=%v",
			ErrInvalidRequiredDescriptors, s.bootRecord, s.primary, s.terminator)
	}

	if !haveBootRecord {
		// A structurally valid ISO with no El Torito boot record is fine —
		// callers treat non-bootable .img-like ISOs as legitimately
		// flashable (spec.md §4.B note). Nothing further to check.
		return &pvdInfo, nil
	}

	if err := validateBootCatalog(r, bootRecordCatalogLBA); err != nil {
		return nil, err
	}
	return &pvdInfo, nil
}

// checkStandardIdentifier validates the 7-byte volume descriptor header:
// byte 0 is the type (already switched on by the caller), bytes 1-5 must be
// "CD001", byte 6 must be version 1.
func checkStandardIdentifier(sector []byte) error {
	if string(sector[1:6]) != StandardIdentifier {
		return fmt.Errorf("%w: standard identifier %q", ErrInvalidRequiredDescriptors, sector[1:6])
	}
	if sector[6] != VolumeDescriptorVersion {
		return fmt.Errorf("%w: descriptor version %#x", ErrInvalidRequiredDescriptors, sector[6])
	}
	return nil
}

func isElTorito(bootSystemID string) bool {
	trimmed := trimTrailingNUL(bootSystemID)
	return trimmed == ElToritoBootSystemID
}

func trimTrailingNUL(s string) string {
	i := len(s)
	for i > 0 && (s[i-1] == 0x00 || s[i-1] == ' ') {
		i--
	}
	return s[:i]
}

// validateBootCatalog reads the Validation Entry and Initial Entry at
// catalogLBA and enforces the bootability checks from §4.B.
func validateBootCatalog(r io.ReaderAt, catalogLBA uint32) error {
	buf := make([]byte, SectorSize)
	n, err := r.ReadAt(buf, int64(catalogLBA)*SectorSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: catalog sector: %v", ErrInvalidBootCatalog, err)
	}
	if n < 64 {
		return fmt.Errorf("%w: catalog sector truncated at %d bytes", ErrInvalidBootCatalog, n)
	}

	if _, err := parseValidationEntry(buf[0:32]); err != nil {
		return err
	}
	if _, err := parseInitialEntry(buf[32:64]); err != nil {
		return err
	}
	return nil
}
