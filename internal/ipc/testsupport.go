package ipc

import (
	"io"
	"net"
)

// NewConnForTesting wraps an already-connected *net.UnixConn as a Conn,
// bypassing Server.Serve's listen/accept/authenticate dance. Exported for
// other packages' tests (e.g. internal/handler), mirroring the teacher's
// own pkg/reader/test_utils.go precedent of exported test support living
// in a regular (non _test.go) file.
func NewConnForTesting(c *net.UnixConn) *Conn {
	return &Conn{conn: c}
}

// DecodeFrameForTesting reads exactly one framed value off r using the
// package's wire format. Exported so callers outside this package can
// assert on what a Handler actually sent without duplicating the framing.
func DecodeFrameForTesting(r io.Reader, v any) error {
	return readFrame(r, v)
}
