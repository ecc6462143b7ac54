// Package verifyengine implements component E, spec.md §4.E: read back
// what was written and compare it byte-for-byte against the source image.
// Like the write engine, the compare loop checks ctx.Err() once per chunk
// so the Shutdown Controller's SIGTERM-watching goroutine (SPEC_FULL.md
// §5) can interrupt an in-flight verify, not just a write.
package verifyengine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/flashkit/priv-helper/internal/iostream"
	"github.com/flashkit/priv-helper/pkg/progress"
)

// ErrMismatchingBytesDetected is returned both for an actual byte mismatch
// and for a zero-byte short read from the device, per spec.md §4.E.
var ErrMismatchingBytesDetected = errors.New("mismatching bytes detected")

// ErrCancelled is returned when ctx is cancelled mid-verify.
var ErrCancelled = errors.New("verify cancelled")

// Verify implements verify(image_file, device_handle, progress_sink) →
// Ok | MismatchError, reusing the write engine's probed chunk size.
func Verify(ctx context.Context, image *os.File, device *os.File, physicalBlockSize uint32, sink progress.Sink) error {
	chunkSize := iostream.ComputeChunkSize(physicalBlockSize, 0)

	imageBuf, err := iostream.NewAlignedBuffer(chunkSize)
	if err != nil {
		return fmt.Errorf("allocating image buffer: %w", err)
	}
	defer imageBuf.Close()

	deviceBuf, err := iostream.NewAlignedBuffer(chunkSize)
	if err != nil {
		return fmt.Errorf("allocating device buffer: %w", err)
	}
	defer deviceBuf.Close()

	if _, err := image.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking image: %w", err)
	}
	if _, err := device.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking device: %w", err)
	}

	imageInfo, err := image.Stat()
	if err != nil {
		return fmt.Errorf("stat image: %w", err)
	}
	total := uint64(imageInfo.Size())
	tracker := progress.NewTracker(total)

	imgData := imageBuf.Bytes()
	devData := deviceBuf.Bytes()

	for {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		n, readErr := image.Read(imgData)
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("reading image: %w", readErr)
		}
		if n == 0 {
			if due := tracker.Advance(0, true); due {
				if err := sink.SendVerifyProgress(tracker.VerifyRecord()); err != nil {
					return fmt.Errorf("progress send: %w", err)
				}
			}
			break
		}

		if err := readExact(device, devData[:n]); err != nil {
			return fmt.Errorf("%w: %v", ErrMismatchingBytesDetected, err)
		}

		for i := 0; i < n; i++ {
			if imgData[i] != devData[i] {
				return ErrMismatchingBytesDetected
			}
		}

		isFinal := readErr == io.EOF
		if due := tracker.Advance(uint64(n), isFinal); due {
			if err := sink.SendVerifyProgress(tracker.VerifyRecord()); err != nil {
				return fmt.Errorf("progress send: %w", err)
			}
		}
		if isFinal {
			break
		}
	}

	return nil
}

// readExact reads len(p) bytes from r, looping on short reads. A
// zero-byte read with no progress is treated as a mismatch per spec.md
// §4.E ("a zero-byte short read is MismatchingBytesDetected").
func readExact(r io.Reader, p []byte) error {
	total := 0
	for total < len(p) {
		n, err := r.Read(p[total:])
		if n == 0 && err == nil {
			return fmt.Errorf("zero-byte read with no error")
		}
		total += n
		if err != nil {
			if err == io.EOF && total < len(p) {
				return fmt.Errorf("short read: got %d of %d bytes: %w", total, len(p), err)
			}
			if err != io.EOF {
				return err
			}
		}
	}
	return nil
}
