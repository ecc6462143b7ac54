package iso9660

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEndiannessRoundTrip16(t *testing.T) {
	for _, v := range []uint16{0, 1, 2048, 0xBEEF, 0xFFFF} {
		enc := MarshalBothByteOrders16(v)
		got, err := UnmarshalUint16LSBMSB(enc[:])
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestEndiannessRoundTrip32(t *testing.T) {
	for _, v := range []uint32{0, 1, 2048, 0xDEADBEEF, 0xFFFFFFFF} {
		enc := MarshalBothByteOrders32(v)
		got, err := UnmarshalUint32LSBMSB(enc[:])
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestUnmarshalRejectsMismatchedHalves(t *testing.T) {
	enc16 := MarshalBothByteOrders16(42)
	enc16[2] = 0xFF // corrupt the big-endian half
	_, err := UnmarshalUint16LSBMSB(enc16[:])
	require.Error(t, err)

	enc32 := MarshalBothByteOrders32(42)
	enc32[4] = 0xFF
	_, err = UnmarshalUint32LSBMSB(enc32[:])
	require.Error(t, err)
}

// buildMinimalISO constructs a synthetic image: 16 blank system sectors
// followed by a Boot Record (with a valid El Torito boot catalog), a PVD,
// and a Terminator, sized large enough to hold the catalog sector too.
func buildMinimalISO(t *testing.T, bootable bool) []byte {
	t.Helper()
	catalogLBA := uint32(SystemAreaSectors + 3)
	totalSectors := int(catalogLBA) + 1
	img := make([]byte, totalSectors*SectorSize)

	bootRecord := img[SystemAreaSectors*SectorSize : (SystemAreaSectors+1)*SectorSize]
	bootRecord[0] = descTypeBootRecord
	copy(bootRecord[1:6], StandardIdentifier)
	bootRecord[6] = VolumeDescriptorVersion
	copy(bootRecord[7:39], ElToritoBootSystemID)
	le := MarshalBothByteOrders32(catalogLBA)
	_ = le
	// catalog LBA field is plain little-endian, not both-endian, per
	// rstms-iso-kit's Boot Record layout.
	bootRecord[71] = byte(catalogLBA)
	bootRecord[72] = byte(catalogLBA >> 8)
	bootRecord[73] = byte(catalogLBA >> 16)
	bootRecord[74] = byte(catalogLBA >> 24)

	pvd := img[(SystemAreaSectors+1)*SectorSize : (SystemAreaSectors+2)*SectorSize]
	pvd[0] = descTypePrimary
	copy(pvd[1:6], StandardIdentifier)
	pvd[6] = VolumeDescriptorVersion
	copy(pvd[40:72], "MY_VOLUME")

	term := img[(SystemAreaSectors+2)*SectorSize : (SystemAreaSectors+3)*SectorSize]
	term[0] = descTypeTerminator
	copy(term[1:6], StandardIdentifier)
	term[6] = VolumeDescriptorVersion

	if bootable {
		catalog := img[int64(catalogLBA)*SectorSize : int64(catalogLBA)*SectorSize+64]
		// Validation Entry.
		catalog[0] = validationHeaderID
		catalog[1] = byte(0) // BIOS platform
		catalog[0x1E] = validationSig1
		catalog[0x1F] = validationSig2
		var sum uint16
		for i := 0; i < 32; i += 2 {
			if i == 0x1C {
				continue // checksum field itself, solved for below
			}
			sum += readLE16(catalog[i : i+2])
		}
		need := uint16(0) - sum
		catalog[0x1C] = byte(need)
		catalog[0x1D] = byte(need >> 8)

		// Initial Entry.
		initial := catalog[32:64]
		initial[0] = initialBootIndicator
	}

	return img
}

func TestValidateStructureAcceptsBootableImage(t *testing.T) {
	img := buildMinimalISO(t, true)
	info, err := ValidateStructure(bytes.NewReader(img), int64(len(img)), 0)
	require.NoError(t, err)
	require.Equal(t, "MY_VOLUME", info.VolumeIdentifier)
}

func TestValidateStructureRejectsBadBootIndicator(t *testing.T) {
	img := buildMinimalISO(t, true)
	catalogLBA := SystemAreaSectors + 3
	img[catalogLBA*SectorSize+32] = 0x00 // corrupt boot indicator
	_, err := ValidateStructure(bytes.NewReader(img), int64(len(img)), 0)
	require.ErrorIs(t, err, ErrInvalidBootIndicator)
}

func TestValidateStructureRejectsMissingDescriptors(t *testing.T) {
	img := make([]byte, (SystemAreaSectors+1)*SectorSize)
	_, err := ValidateStructure(bytes.NewReader(img), int64(len(img)), 0)
	require.ErrorIs(t, err, ErrInvalidRequiredDescriptors)
}

func TestValidateStructureRejectsTooSmallSystemArea(t *testing.T) {
	img := make([]byte, 100)
	_, err := ValidateStructure(bytes.NewReader(img), int64(len(img)), 0)
	require.ErrorIs(t, err, ErrSystemBlockTooShort)
}

func TestValidateStructureRejectsInsufficientDeviceCapacity(t *testing.T) {
	img := buildMinimalISO(t, true)
	_, err := ValidateStructure(bytes.NewReader(img), int64(len(img)), int64(len(img)-1))
	require.ErrorIs(t, err, ErrInsufficientDeviceCapacity)
}
