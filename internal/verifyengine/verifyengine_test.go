package verifyengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashkit/priv-helper/pkg/progress"
	"github.com/flashkit/priv-helper/pkg/reader"
)

type collectingSink struct {
	verifys []progress.Verify
}

func (s *collectingSink) SendWriteProgress(progress.Write) error { return nil }

func (s *collectingSink) SendVerifyProgress(p progress.Verify) error {
	s.verifys = append(s.verifys, p)
	return nil
}

func randomFile(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	data := reader.GenerateRandomBuffer(size)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestVerifyPassesOnIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	srcPath := randomFile(t, dir, "src.img", 3*1024*1024+11)
	dstPath := filepath.Join(dir, "dst.img")
	data, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dstPath, data, 0o600))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()
	dst, err := os.Open(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	sink := &collectingSink{}
	require.NoError(t, Verify(context.Background(), src, dst, 4096, sink))
	require.NotEmpty(t, sink.verifys)
	require.Equal(t, float64(100), sink.verifys[len(sink.verifys)-1].Percent)
}

func TestVerifyDetectsMismatch(t *testing.T) {
	dir := t.TempDir()
	srcPath := randomFile(t, dir, "src.img", 1024*1024)
	data, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	corrupted := append([]byte(nil), data...)
	corrupted[len(corrupted)/2] ^= 0xFF
	dstPath := filepath.Join(dir, "dst.img")
	require.NoError(t, os.WriteFile(dstPath, corrupted, 0o600))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()
	dst, err := os.Open(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	sink := &collectingSink{}
	err = Verify(context.Background(), src, dst, 4096, sink)
	require.ErrorIs(t, err, ErrMismatchingBytesDetected)
}

func TestVerifyDetectsShortDevice(t *testing.T) {
	dir := t.TempDir()
	srcPath := randomFile(t, dir, "src.img", 1024*1024)
	dstPath := filepath.Join(dir, "dst.img")
	data, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(dstPath, data[:len(data)/2], 0o600))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()
	dst, err := os.Open(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	sink := &collectingSink{}
	err = Verify(context.Background(), src, dst, 4096, sink)
	require.ErrorIs(t, err, ErrMismatchingBytesDetected)
}

func TestVerifyStopsOnCancelledContext(t *testing.T) {
	dir := t.TempDir()
	srcPath := randomFile(t, dir, "src.img", 4*1024*1024)
	data, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	dstPath := filepath.Join(dir, "dst.img")
	require.NoError(t, os.WriteFile(dstPath, data, 0o600))

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()
	dst, err := os.Open(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Verify(ctx, src, dst, 4096, &collectingSink{})
	require.ErrorIs(t, err, ErrCancelled)
}
