// Package progress implements the §3 Progress record and the dual
// 8 MiB / 100 ms emission trigger shared by the Write and Verify engines.
//
// Grounded on the teacher's pkg/pbar/pbar.go ProgressBarState: the same
// "track last-update time and last-update byte count, compute instant vs.
// average rate" shape, generalized from a terminal progress bar to an
// immutable record handed to a Sink (the IPC connection, in production;
// a slice, in tests).
package progress

import (
	"math"
	"time"
)

// byteTrigger is the byte threshold of the dual emission trigger.
const byteTrigger = 8 * 1024 * 1024

// timeTrigger is the elapsed-time threshold of the dual emission trigger.
const timeTrigger = 100 * time.Millisecond

// timerCheckInterval amortizes the timer check: it is evaluated only every
// Nth loop iteration, per spec.md §4.D step 6.
const timerCheckInterval = 100

// Write is the full Progress record emitted by the Write Engine.
type Write struct {
	Percent        float64
	BytesDone      uint64
	Total          uint64
	InstantRateBPS uint64
	AvgRateBPS     uint64
}

// Verify is the reduced Progress record emitted by the Verify Engine
// (percent only, per spec.md §3).
type Verify struct {
	Percent float64
}

// Sink receives progress records. In production this is the IPC
// connection (an additional message on the same connection as the
// request); in tests it is typically a slice-collecting fake.
type Sink interface {
	SendWriteProgress(Write) error
	SendVerifyProgress(Verify) error
}

// Tracker accumulates byte counts and decides, on each loop iteration,
// whether a progress record is due. It is not safe for concurrent use —
// each engine owns exactly one Tracker for the duration of its loop.
type Tracker struct {
	total              uint64
	startTime          time.Time
	lastEmitTime       time.Time
	bytesDone          uint64
	bytesSinceEmit     uint64
	lastEmitBytesDone  uint64
	iteration          int
}

// NewTracker starts a tracker for a transfer of the given total size.
func NewTracker(total uint64) *Tracker {
	now := time.Now()
	return &Tracker{
		total:        total,
		startTime:    now,
		lastEmitTime: now,
	}
}

// Advance records n additional bytes processed and reports whether a
// progress record is due now, per the dual 8 MiB / 100 ms trigger. Pass
// final=true on the loop's last iteration to force emission regardless of
// thresholds (spec.md §4.D step 6, "or the write just completed").
func (t *Tracker) Advance(n uint64, final bool) bool {
	t.bytesDone += n
	t.bytesSinceEmit += n
	t.iteration++

	if final {
		return true
	}
	if t.bytesSinceEmit >= byteTrigger {
		return true
	}
	if t.iteration%timerCheckInterval == 0 && time.Since(t.lastEmitTime) >= timeTrigger {
		return true
	}
	return false
}

// snapshotRates computes instant/average rates at the current moment and
// resets the since-last-emit counters. Shared by Write/Verify record
// construction.
func (t *Tracker) snapshotRates() (instant, avg float64, elapsedSinceEmit time.Duration) {
	now := time.Now()
	elapsedSinceEmit = now.Sub(t.lastEmitTime)
	elapsedTotal := now.Sub(t.startTime)

	instant = safeRate(float64(t.bytesSinceEmit), elapsedSinceEmit.Seconds())
	avg = safeRate(float64(t.bytesDone), elapsedTotal.Seconds())

	t.lastEmitTime = now
	t.bytesSinceEmit = 0
	return instant, avg, elapsedSinceEmit
}

// WriteRecord builds the full Progress record and resets the emission
// window. Call only when Advance returned true.
func (t *Tracker) WriteRecord() Write {
	instant, avg, _ := t.snapshotRates()
	return Write{
		Percent:        percentOf(t.bytesDone, t.total),
		BytesDone:      t.bytesDone,
		Total:          t.total,
		InstantRateBPS: saturatingU64(instant),
		AvgRateBPS:     saturatingU64(avg),
	}
}

// VerifyRecord builds the reduced Progress record.
func (t *Tracker) VerifyRecord() Verify {
	t.snapshotRates()
	return Verify{Percent: percentOf(t.bytesDone, t.total)}
}

func percentOf(done, total uint64) float64 {
	if total == 0 {
		return 100
	}
	p := float64(done) / float64(total) * 100
	if p > 100 {
		return 100
	}
	if p < 0 {
		return 0
	}
	return p
}

// safeRate clamps non-finite or non-positive rates to 0, per spec.md
// §4.D step 7.
func safeRate(bytes, seconds float64) float64 {
	if seconds <= 0 {
		return 0
	}
	rate := bytes / seconds
	if math.IsNaN(rate) || math.IsInf(rate, 0) || rate < 0 {
		return 0
	}
	return rate
}

// saturatingU64 converts a float rate to u64, saturating at the u64
// ceiling instead of overflowing, per spec.md §4.D step 7.
func saturatingU64(f float64) uint64 {
	if f <= 0 {
		return 0
	}
	if f >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(f)
}
