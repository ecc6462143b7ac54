// Package writeengine implements component D, spec.md §4.D: stream an
// image file to a device handle, emitting progress records at the dual
// 8 MiB / 100 ms trigger.
//
// Grounded on the teacher's internal/disk/stat.go chunked-I/O posture
// (open once, read/write via *os.File, no intermediate copies) and
// pkg/pbar/pbar.go's progress math, now routed through pkg/progress
// instead of a terminal renderer. The loop checks ctx.Err() once per
// chunk, since raw *os.File reads/writes don't themselves respect
// context cancellation — this is what lets the Shutdown Controller's
// SIGTERM-watching goroutine (SPEC_FULL.md §5) actually interrupt an
// in-flight write instead of only being able to cancel before it starts.
package writeengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/flashkit/priv-helper/internal/iostream"
	"github.com/flashkit/priv-helper/pkg/progress"
)

var (
	ErrReadFailed  = errors.New("read failed")
	ErrWriteFailed = errors.New("write failed")
	ErrSyncFailed  = errors.New("sync failed")
	ErrCancelled   = errors.New("write cancelled")
)

// Write implements write(image_file, device_handle, progress_sink) →
// Ok | Error. ctx is checked once per chunk; cancellation surfaces as
// ErrCancelled rather than a read/write error.
func Write(ctx context.Context, image *os.File, device *os.File, physicalBlockSize uint32, sink progress.Sink) error {
	iostream.HintCacheBypass(int(device.Fd()), int(image.Fd()))

	chunkSize := iostream.ComputeChunkSize(physicalBlockSize, 0)
	buf, err := iostream.NewAlignedBuffer(chunkSize)
	if err != nil {
		return fmt.Errorf("%w: allocating buffer: %v", ErrWriteFailed, err)
	}
	defer buf.Close()

	if _, err := image.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seeking image: %v", ErrReadFailed, err)
	}
	if _, err := device.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("%w: seeking device: %v", ErrWriteFailed, err)
	}

	imageInfo, err := image.Stat()
	if err != nil {
		return fmt.Errorf("%w: stat image: %v", ErrReadFailed, err)
	}
	total := uint64(imageInfo.Size())
	tracker := progress.NewTracker(total)

	data := buf.Bytes()
	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		n, readErr := image.Read(data)
		if n > 0 {
			if err := writeFull(device, data[:n]); err != nil {
				return fmt.Errorf("%w: %v", ErrWriteFailed, err)
			}
		}
		if readErr == io.EOF {
			if due := tracker.Advance(uint64(n), true); due {
				if err := sink.SendWriteProgress(tracker.WriteRecord()); err != nil {
					return fmt.Errorf("%w: progress send: %v", ErrWriteFailed, err)
				}
			}
			break
		}
		if readErr != nil {
			return fmt.Errorf("%w: %v", ErrReadFailed, readErr)
		}
		if n == 0 {
			continue
		}

		if due := tracker.Advance(uint64(n), false); due {
			if err := sink.SendWriteProgress(tracker.WriteRecord()); err != nil {
				return fmt.Errorf("%w: progress send: %v", ErrWriteFailed, err)
			}
		}
	}

	if err := device.Sync(); err != nil {
		return fmt.Errorf("%w: %v", ErrSyncFailed, err)
	}
	return nil
}

// writeFull retries short writes until the slice is fully drained, per
// spec.md §4.D step 5.
func writeFull(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		p = p[n:]
	}
	return nil
}
