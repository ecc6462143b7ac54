// Package ipc implements component F, spec.md §4.F and §6: an
// authenticated local transport carrying dictionary-of-typed-values
// request/response payloads over a Unix domain socket.
//
// There is no in-pack teacher for local authenticated IPC (a corpus-wide
// search surfaced only other_examples/ standalone files — CSI node
// servers, a qemu driver, a VNC client — none eligible as a teacher).
// This package is built on stdlib net (unix sockets) plus
// golang.org/x/sys/unix peer-credential syscalls, which is already a
// teacher dependency; the "single shared mutex-protected state, one
// connection at a time" shape follows the teacher's own
// internal/logger/logger.go mutex discipline.
package ipc

// RequestTag identifies the kind of an inbound message, per spec.md §3/§6.
type RequestTag string

const (
	RequestPing    RequestTag = "INITIAL_PING"
	RequestVersion RequestTag = "GET_HELPER_VERSION"
	RequestWrite   RequestTag = "WRITE_ISO_TO_DEVICE"
)

// ResponseTag identifies the kind of an outbound message, per spec.md §6.
type ResponseTag string

const (
	ResponsePong               ResponseTag = "INITIAL_PONG"
	ResponseVersionObtained    ResponseTag = "HELPER_VERSION_OBTAINED"
	ResponseISOFileInvalid     ResponseTag = "ISO_FILE_INVALID"
	ResponseISOFileValid       ResponseTag = "ISO_FILE_VALID"
	ResponseDeviceInvalid      ResponseTag = "DEVICE_INVALID"
	ResponseWriteProgress      ResponseTag = "ISO_WRITE_PROGRESS"
	ResponseVerifyProgress     ResponseTag = "WRITE_VERIFICATION_PROGRESS"
	ResponseWriteSuccess       ResponseTag = "ISO_WRITE_SUCCESS"
	ResponseWriteFail          ResponseTag = "ISO_WRITE_FAIL"
)

// Request is the dictionary payload of an inbound message. Fields beyond
// Tag are only meaningful for WRITE_ISO_TO_DEVICE; JSON omits unset
// optional fields rather than encoding explicit nulls.
type Request struct {
	Tag                 RequestTag `json:"tag"`
	ISOPath             string     `json:"isoPath,omitempty"`
	Disk                string     `json:"disk,omitempty"`
	DeviceServiceID      *uint64    `json:"deviceServiceId,omitempty"`
	SkipImageValidation *bool      `json:"skipImageValidation,omitempty"`
	SkipVerification     *bool      `json:"skipVerification,omitempty"`
	SkipEject            *bool      `json:"skipEject,omitempty"`
}

// boolOrDefault dereferences an optional flag, defaulting to false (most-cautious)
// per spec.md §4.G step 1.
func boolOrDefault(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}

func (r Request) WantsSkipImageValidation() bool { return boolOrDefault(r.SkipImageValidation) }
func (r Request) WantsSkipVerification() bool     { return boolOrDefault(r.SkipVerification) }
func (r Request) WantsSkipEject() bool            { return boolOrDefault(r.SkipEject) }

// Response is the dictionary payload of an outbound message.
type Response struct {
	Tag                   ResponseTag `json:"tag"`
	Version               string      `json:"version,omitempty"`
	WriteProgress         uint64      `json:"write_progress,omitempty"`
	WriteRate             uint64      `json:"write_rate,omitempty"`
	WriteRateAvg          uint64      `json:"write_rate_avg,omitempty"`
	WriteBytes            uint64      `json:"write_bytes,omitempty"`
	WriteTotalSize        uint64      `json:"write_total_size,omitempty"`
	VerificationProgress  uint64      `json:"verification_progress,omitempty"`
}
