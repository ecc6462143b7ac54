package handler

import (
	"io"
	"net"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashkit/priv-helper/internal/ipc"
	"github.com/flashkit/priv-helper/internal/logger"
	"github.com/flashkit/priv-helper/internal/shutdown"
)

// connPair returns two ends of a real Unix stream socket connection,
// so Handle exercises the same framed-read/write path it does in
// production instead of an in-memory fake.
func connPair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "test.sock")

	addr, err := net.ResolveUnixAddr("unix", path)
	require.NoError(t, err)

	ln, err := net.ListenUnix("unix", addr)
	require.NoError(t, err)
	defer ln.Close()

	clientDone := make(chan *net.UnixConn, 1)
	go func() {
		c, err := net.DialUnix("unix", nil, addr)
		require.NoError(t, err)
		clientDone <- c
	}()

	server, err := ln.AcceptUnix()
	require.NoError(t, err)
	client := <-clientDone

	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, client
}

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	log := logger.New(io.Discard, logger.DebugLevel)
	return New(log, shutdown.Init(log))
}

func TestHandlePingRepliesPongAndStaysOpen(t *testing.T) {
	server, client := connPair(t)
	h := newTestHandler(t)
	conn := ipc.NewConnForTesting(server)

	done := h.Handle(conn, ipc.PeerIdentity{}, ipc.Request{Tag: ipc.RequestPing})
	require.False(t, done)

	var resp ipc.Response
	require.NoError(t, readResponse(client, &resp))
	require.Equal(t, ipc.ResponsePong, resp.Tag)
}

func TestHandleUnknownTagIsNoOp(t *testing.T) {
	server, _ := connPair(t)
	h := newTestHandler(t)
	conn := ipc.NewConnForTesting(server)

	done := h.Handle(conn, ipc.PeerIdentity{}, ipc.Request{Tag: "SOMETHING_UNKNOWN"})
	require.False(t, done)
}

// The write-image path's individual stages (path validation, ISO
// structure validation, device acquisition, write, verify) each have
// their own package tests. It is deliberately not driven end-to-end
// through Handle here because every exit from handleWriteImage calls
// shutdown.Controller, which os.Exit(0)s the process — fine in
// production (a one-shot helper), fatal to a test binary.

// readResponse reads exactly one framed Response using the same wire
// format as production (length-prefixed JSON), by way of the ipc
// package's exported DecodeFrameForTesting rather than a copy of
// codec.go's framing.
func readResponse(r io.Reader, resp *ipc.Response) error {
	return ipc.DecodeFrameForTesting(r, resp)
}
