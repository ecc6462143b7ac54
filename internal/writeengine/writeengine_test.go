package writeengine

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
	writes  []progress.Write
	verifys []progress.Verify
}

func (s *collectingSink) SendWriteProgress(p progress.Write) error {
	s.writes = append(s.writes, p)
	return nil
}

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

func TestWriteCopiesBytesExactly(t *testing.T) {
	dir := t.TempDir()
	srcPath := randomFile(t, dir, "src.img", 5*1024*1024+37)
	dstPath := filepath.Join(dir, "dst.img")

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()

	dst, err := os.Create(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	sink := &collectingSink{}
	err = Write(context.Background(), src, dst, 4096, sink)
	require.NoError(t, err)

	wantBytes, err := os.ReadFile(srcPath)
	require.NoError(t, err)
	gotBytes, err := os.ReadFile(dstPath)
	require.NoError(t, err)
	require.Equal(t, wantBytes, gotBytes)
}

func TestWriteProgressIsMonotonicAndBounded(t *testing.T) {
	dir := t.TempDir()
	srcPath := randomFile(t, dir, "src.img", 20*1024*1024)
	dstPath := filepath.Join(dir, "dst.img")

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()
	dst, err := os.Create(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	sink := &collectingSink{}
	require.NoError(t, Write(context.Background(), src, dst, 4096, sink))

	require.NotEmpty(t, sink.writes)
	var last uint64
	for _, p := range sink.writes {
		require.GreaterOrEqual(t, p.BytesDone, last)
		require.LessOrEqual(t, p.Percent, float64(100))
		last = p.BytesDone
	}
	final := sink.writes[len(sink.writes)-1]
	require.Equal(t, final.Total, final.BytesDone)
}

func TestWriteStopsOnCancelledContext(t *testing.T) {
	dir := t.TempDir()
	srcPath := randomFile(t, dir, "src.img", 8*1024*1024)
	dstPath := filepath.Join(dir, "dst.img")

	src, err := os.Open(srcPath)
	require.NoError(t, err)
	defer src.Close()
	dst, err := os.Create(dstPath)
	require.NoError(t, err)
	defer dst.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = Write(ctx, src, dst, 4096, &collectingSink{})
	require.ErrorIs(t, err, ErrCancelled)
}
