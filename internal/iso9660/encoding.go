package iso9660

import (
	"encoding/binary"
	"fmt"
)

// The functions below mirror github.com/bgrewell/iso-kit's
// pkg/iso9660/encoding/encoding.go MarshalBothByteOrders/UnmarshalUint*LSBMSB
// pair: ISO 9660 numeric volume descriptor fields are stored "both-endian" —
// a little-endian half immediately followed by a big-endian half of the same
// value — so a reader on any host byte order can pick the half it wants.
// UnmarshalUint32LSBMSB additionally cross-checks the two halves agree.

// UnmarshalUint16LSBMSB decodes a 4-byte both-endian uint16 field.
func UnmarshalUint16LSBMSB(data []byte) (uint16, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("both-endian uint16 field: need 4 bytes, got %d", len(data))
	}
	little := binary.LittleEndian.Uint16(data[0:2])
	big := binary.BigEndian.Uint16(data[2:4])
	if little != big {
		return 0, fmt.Errorf("mismatched both-byte-order uint16: le=%d be=%d", little, big)
	}
	return little, nil
}

// UnmarshalUint32LSBMSB decodes an 8-byte both-endian uint32 field.
func UnmarshalUint32LSBMSB(data []byte) (uint32, error) {
	if len(data) < 8 {
		return 0, fmt.Errorf("both-endian uint32 field: need 8 bytes, got %d", len(data))
	}
	little := binary.LittleEndian.Uint32(data[0:4])
	big := binary.BigEndian.Uint32(data[4:8])
	if little != big {
		return 0, fmt.Errorf("mismatched both-byte-order uint32: le=%d be=%d", little, big)
	}
	return little, nil
}

// MarshalBothByteOrders16 is the inverse of UnmarshalUint16LSBMSB, used by
// tests to build synthetic volume descriptors.
func MarshalBothByteOrders16(v uint16) [4]byte {
	var out [4]byte
	binary.LittleEndian.PutUint16(out[0:2], v)
	binary.BigEndian.PutUint16(out[2:4], v)
	return out
}

// MarshalBothByteOrders32 is the inverse of UnmarshalUint32LSBMSB.
func MarshalBothByteOrders32(v uint32) [8]byte {
	var out [8]byte
	binary.LittleEndian.PutUint32(out[0:4], v)
	binary.BigEndian.PutUint32(out[4:8], v)
	return out
}

// readLE32 reads a plain (single-order) little-endian uint32, used for the
// El Torito Boot Catalog fields which are not both-endian.
func readLE32(data []byte) uint32 {
	return binary.LittleEndian.Uint32(data)
}

// readLE16 reads a plain little-endian uint16.
func readLE16(data []byte) uint16 {
	return binary.LittleEndian.Uint16(data)
}
