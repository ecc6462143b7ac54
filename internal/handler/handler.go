// Package handler implements component G, spec.md §4.G: orchestrates
// the Path Validator, ISO 9660 Validator, Device Acquirer, Write Engine,
// and Verify Engine for a write-image request, and answers ping/get-version
// directly.
//
// Grounded on the teacher's cmd/cmd/scan.go "parse flags into an options
// struct, then call the operation" shape, generalized from cobra flags to
// an IPC dictionary payload's fields.
package handler

import (
	"github.com/dustin/go-humanize"

	"github.com/flashkit/priv-helper/internal/device"
	"github.com/flashkit/priv-helper/internal/ipc"
	"github.com/flashkit/priv-helper/internal/iso9660"
	"github.com/flashkit/priv-helper/internal/logger"
	"github.com/flashkit/priv-helper/internal/pathvalidator"
	"github.com/flashkit/priv-helper/internal/shutdown"
	"github.com/flashkit/priv-helper/internal/verifyengine"
	"github.com/flashkit/priv-helper/internal/version"
	"github.com/flashkit/priv-helper/internal/writeengine"
	"github.com/flashkit/priv-helper/pkg/progress"
)

// Handler implements ipc.Handler, orchestrating one request per
// spec.md §4.G.
type Handler struct {
	log      *logger.Logger
	shutdown *shutdown.Controller
}

// New builds a request Handler.
func New(log *logger.Logger, sd *shutdown.Controller) *Handler {
	return &Handler{log: log, shutdown: sd}
}

// Handle dispatches req per its tag. Only write-image is long-running and
// terminal; ping/get-version leave the connection open for a possible
// follow-up, per ipc.Handler's contract.
func (h *Handler) Handle(conn *ipc.Conn, peer ipc.PeerIdentity, req ipc.Request) (done bool) {
	switch req.Tag {
	case ipc.RequestPing:
		if err := conn.Send(ipc.Response{Tag: ipc.ResponsePong}); err != nil {
			h.log.Errorf("sending pong: %v", err)
		}
		return false

	case ipc.RequestVersion:
		if err := conn.Send(ipc.Response{Tag: ipc.ResponseVersionObtained, Version: version.Version}); err != nil {
			h.log.Errorf("sending version: %v", err)
		}
		return false

	case ipc.RequestWrite:
		h.handleWriteImage(conn, peer, req)
		return true

	default:
		h.log.Warnf("unknown request tag %q, ignoring", req.Tag)
		return false
	}
}

// handleWriteImage implements the full §4.G write-image orchestration.
// Every exit path hands off to the Shutdown Controller exactly once.
func (h *Handler) handleWriteImage(conn *ipc.Conn, peer ipc.PeerIdentity, req ipc.Request) {
	log := h.log.With(req.Disk)

	// Home directory resolution is a prerequisite of image path validation
	// (the allow-list is built from it), so a failure here reports the
	// same ISO_FILE_INVALID tag step 3 would — there is no separate wire
	// tag for "couldn't resolve the caller's identity."
	home, err := peer.HomeDir()
	if err != nil {
		h.fail(conn, log, ipc.ResponseISOFileInvalid, err)
		return
	}

	desc, err := pathvalidator.Validate(req.ISOPath, home)
	if err != nil {
		h.fail(conn, log, ipc.ResponseISOFileInvalid, err)
		return
	}
	defer desc.Close()

	if desc.Kind == pathvalidator.KindISO && !req.WantsSkipImageValidation() {
		info, err := iso9660.ValidateStructure(desc.File, desc.Size, 0)
		if err != nil {
			h.fail(conn, log, ipc.ResponseISOFileInvalid, err)
			return
		}
		log.Infof("iso volume %q validated (volume space size %d, logical block size %d, path table size %d)",
			info.VolumeIdentifier, info.VolumeSpaceSize, info.LogicalBlockSize, info.PathTableSize)
	}

	if err := conn.Send(ipc.Response{Tag: ipc.ResponseISOFileValid}); err != nil {
		h.fail(conn, log, ipc.ResponseISOFileInvalid, err)
		return
	}

	ctx := h.shutdown.Context()
	dev, err := device.Acquire(ctx, req.Disk)
	if err != nil {
		h.fail(conn, log, ipc.ResponseDeviceInvalid, err)
		return
	}
	log.Infof("writing %s to %s (block size %d)", humanize.IBytes(uint64(desc.Size)), dev.BSDName, dev.BlockSize)

	sink := &responseSink{conn: conn}

	if err := writeengine.Write(ctx, desc.File, dev.File, dev.BlockSize, sink); err != nil {
		dev.Close()
		h.failWrite(conn, log, err)
		return
	}

	if !req.WantsSkipVerification() {
		if _, err := desc.File.Seek(0, 0); err != nil {
			dev.Close()
			h.failWrite(conn, log, err)
			return
		}
		if _, err := dev.File.Seek(0, 0); err != nil {
			dev.Close()
			h.failWrite(conn, log, err)
			return
		}
		if err := verifyengine.Verify(ctx, desc.File, dev.File, dev.BlockSize, sink); err != nil {
			dev.Close()
			h.failWrite(conn, log, err)
			return
		}
	}

	bsdName := dev.BSDName
	if err := dev.Close(); err != nil {
		log.Warnf("closing device before eject: %v", err)
	}
	if !req.WantsSkipEject() {
		if err := device.Eject(ctx, bsdName); err != nil {
			// A failed eject does not flip a successful write/verify to
			// failure — SPEC_FULL.md §4.G.2.
			log.Warnf("eject failed: %v", err)
		}
	}

	if err := conn.Send(ipc.Response{Tag: ipc.ResponseWriteSuccess}); err != nil {
		log.Errorf("sending write-success: %v", err)
	}
	h.shutdown.ExitSuccess()
}

func (h *Handler) fail(conn *ipc.Conn, log *logger.Logger, tag ipc.ResponseTag, err error) {
	log.Errorf("request failed: %v", err)
	if sendErr := conn.Send(ipc.Response{Tag: tag}); sendErr != nil {
		log.Errorf("sending failure response %s: %v", tag, sendErr)
	}
	h.shutdown.ExitWithError(err)
}

func (h *Handler) failWrite(conn *ipc.Conn, log *logger.Logger, err error) {
	h.fail(conn, log, ipc.ResponseWriteFail, err)
}

// responseSink adapts the shared ipc.Conn to pkg/progress.Sink, translating
// the engines' typed records into the wire-format fields of §6.
type responseSink struct {
	conn *ipc.Conn
}

func (s *responseSink) SendWriteProgress(p progress.Write) error {
	return s.conn.Send(ipc.Response{
		Tag:            ipc.ResponseWriteProgress,
		WriteProgress:  uint64(p.Percent),
		WriteRate:      p.InstantRateBPS,
		WriteRateAvg:   p.AvgRateBPS,
		WriteBytes:     p.BytesDone,
		WriteTotalSize: p.Total,
	})
}

func (s *responseSink) SendVerifyProgress(p progress.Verify) error {
	return s.conn.Send(ipc.Response{
		Tag:                  ipc.ResponseVerifyProgress,
		VerificationProgress: uint64(p.Percent),
	})
}
