package iso9660

// PrimaryVolumeInfo holds the handful of Primary Volume Descriptor fields
// SPEC_FULL.md §4.B.1 surfaces for logging. It is informational only — none
// of it gates Valid/Reason, which depends solely on the descriptor-presence
// and El Torito checks in ValidateStructure.
//
// Field offsets grounded on rstms-iso-kit's
// pkg/descriptor/primaryVolumeDescriptor.go Unmarshal.
type PrimaryVolumeInfo struct {
	VolumeIdentifier string
	VolumeSpaceSize  uint32
	LogicalBlockSize uint16
	PathTableSize    uint32
}

// parsePrimaryVolumeInfo extracts the informational PVD fields from a
// 2048-byte primary volume descriptor sector. It tolerates a both-endian
// mismatch (logging callers don't need to fail the request over it) by
// falling back to the little-endian half.
func parsePrimaryVolumeInfo(sector []byte) PrimaryVolumeInfo {
	info := PrimaryVolumeInfo{
		VolumeIdentifier: trimTrailingNUL(string(sector[40:72])),
	}
	if v, err := UnmarshalUint32LSBMSB(sector[80:88]); err == nil {
		info.VolumeSpaceSize = v
	} else {
		info.VolumeSpaceSize = readLE32(sector[80:84])
	}
	if v, err := UnmarshalUint16LSBMSB(sector[128:132]); err == nil {
		info.LogicalBlockSize = v
	} else {
		info.LogicalBlockSize = readLE16(sector[128:130])
	}
	if v, err := UnmarshalUint32LSBMSB(sector[132:140]); err == nil {
		info.PathTableSize = v
	} else {
		info.PathTableSize = readLE32(sector[132:136])
	}
	return info
}
