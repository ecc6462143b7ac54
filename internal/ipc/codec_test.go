package ipc

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := Response{Tag: ResponseWriteProgress, WriteProgress: 42, WriteBytes: 1024}

	require.NoError(t, writeFrame(&buf, want))

	var got Response
	require.NoError(t, readFrame(&buf, &got))
	require.Equal(t, want, got)
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xFF, 0xFF, 0xFF})

	var got Response
	err := readFrame(&buf, &got)
	require.Error(t, err)
}

func TestRequestOptionalFlagsDefaultFalse(t *testing.T) {
	req := Request{Tag: RequestWrite}
	require.False(t, req.WantsSkipImageValidation())
	require.False(t, req.WantsSkipVerification())
	require.False(t, req.WantsSkipEject())
}

func TestRequestOptionalFlagsHonorExplicitTrue(t *testing.T) {
	yes := true
	req := Request{Tag: RequestWrite, SkipEject: &yes}
	require.True(t, req.WantsSkipEject())
}
