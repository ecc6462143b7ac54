// Package iso9660 implements the minimal structural sanity check of §4.B:
// enough of ISO 9660 + El Torito to decide "is this image bootable and
// structurally sane", not a general-purpose ISO reader/writer.
//
// Grounded on github.com/bgrewell/iso-kit (pkg/consts, pkg/iso9660/encoding,
// pkg/iso9660/boot/eltorito.go): the constants below are duplicated rather
// than imported because iso-kit lives in the read-only reference pack, not
// as a module dependency.
package iso9660

const (
	// SystemAreaSectors is the number of 2048-byte sectors reserved before
	// the volume descriptor set begins.
	SystemAreaSectors = 16

	// SectorSize is the fixed ISO 9660 logical sector size.
	SectorSize = 2048

	// StandardIdentifier is the "CD001" magic every volume descriptor
	// carries at byte offset 1 of its header.
	StandardIdentifier = "CD001"

	// VolumeDescriptorVersion is always 1 for ISO 9660.
	VolumeDescriptorVersion = 0x01

	// Volume descriptor type tags (first byte of every descriptor).
	descTypeBootRecord = 0x00
	descTypePrimary    = 0x01
	descTypeTerminator = 0xFF

	// ElToritoBootSystemID is the Boot System Identifier a Boot Record
	// must carry to be recognized as an El Torito boot record.
	ElToritoBootSystemID = "EL TORITO SPECIFICATION"

	// El Torito Validation Entry / Initial Entry signature bytes.
	validationHeaderID  = 0x01
	validationSig1      = 0x55
	validationSig2      = 0xAA
	initialBootIndicator = 0x88
)
