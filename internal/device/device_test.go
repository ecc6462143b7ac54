package device

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeBSDNameRejectsPathSeparators(t *testing.T) {
	_, err := sanitizeBSDName("../etc/passwd")
	require.ErrorIs(t, err, ErrNameHasPathSeparator)
}

func TestSanitizeBSDNameRejectsTooShort(t *testing.T) {
	_, err := sanitizeBSDName("d")
	require.ErrorIs(t, err, ErrNameTooShort)
}

func TestSanitizeBSDNameRejectsTooLong(t *testing.T) {
	long := make([]byte, MaxNameBytes+1)
	for i := range long {
		long[i] = 'd'
	}
	_, err := sanitizeBSDName(string(long))
	require.ErrorIs(t, err, ErrNameTooLong)
}

func TestSanitizeBSDNameReplacesNonPrintableThenRejectsGrammar(t *testing.T) {
	// The non-printable byte is replaced before the grammar check runs,
	// but "disk2.s1" still isn't a valid disk<N>/rdisk<N> identifier.
	_, err := sanitizeBSDName("disk2\x00s1")
	require.ErrorIs(t, err, ErrDeviceNameMalformed)
}

func TestSanitizeBSDNameAcceptsOrdinary(t *testing.T) {
	got, err := sanitizeBSDName("disk4")
	require.NoError(t, err)
	require.Equal(t, "disk4", got)
}

func TestSanitizeBSDNameAcceptsRDiskVariant(t *testing.T) {
	got, err := sanitizeBSDName("rdisk4")
	require.NoError(t, err)
	require.Equal(t, "rdisk4", got)
}

func TestSanitizeBSDNameRejectsInternalBootDiskNumbers(t *testing.T) {
	for _, name := range []string{"disk0", "disk1", "rdisk0", "rdisk1"} {
		_, err := sanitizeBSDName(name)
		require.ErrorIsf(t, err, ErrDeviceNameMalformed, "name %q", name)
	}
}

func TestSanitizeBSDNameRejectsOutOfRangeNumber(t *testing.T) {
	_, err := sanitizeBSDName("disk100")
	require.ErrorIs(t, err, ErrDeviceNameMalformed)
}

func TestSanitizeBSDNameRejectsNonGrammar(t *testing.T) {
	for _, name := range []string{"disk", "disk2s1", "diskx", "sdisk2"} {
		_, err := sanitizeBSDName(name)
		require.ErrorIsf(t, err, ErrDeviceNameMalformed, "name %q", name)
	}
}

func TestPlistBoolAfterParsesTrueFalse(t *testing.T) {
	lines := []string{
		"<key>DeviceInternal</key>",
		"<true/>",
		"<key>RemovableMedia</key>",
		"<false/>",
	}
	v, ok := plistBoolAfter(lines, 0)
	require.True(t, ok)
	require.True(t, v)

	v, ok = plistBoolAfter(lines, 2)
	require.True(t, ok)
	require.False(t, v)
}

func TestPlistBoolAfterMissingKeyLine(t *testing.T) {
	lines := []string{"<key>DeviceInternal</key>"}
	_, ok := plistBoolAfter(lines, 0)
	require.False(t, ok)
}
