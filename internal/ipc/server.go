package ipc

import (
	"fmt"
	"net"
	"os"
	"sync"
)

// unixConn is the narrow surface this package needs from *net.UnixConn;
// defined as a concrete alias (not an interface) because authenticatePeer
// needs SyscallConn for the raw LOCAL_PEERPID/LOCAL_PEERCRED lookup.
type unixConn = net.UnixConn

// Handler processes one authenticated request. write-image handling
// streams additional progress messages itself via the Conn it's given.
// Handle returns done=true once the helper's one privileged operation has
// concluded (success or failure) and the server should stop serving;
// ping/get-version requests return done=false so the connection stays
// open for a possible follow-up write-image request, per spec.md §4.F
// step 3's "unknown tag is a no-op, connection remains open."
type Handler interface {
	Handle(conn *Conn, peer PeerIdentity, req Request) (done bool)
}

// Conn wraps one accepted connection with the framing and a mutex, since
// spec.md §4.F's transport may be driven by a concurrently-invoked OS
// dispatch callback and all shared state access (here: the socket itself)
// must be serialized — the same discipline the teacher's
// internal/logger/logger.go applies to its writer.
type Conn struct {
	mu   sync.Mutex
	conn *unixConn
}

// Send writes one framed Response. Safe to call from any goroutine.
func (c *Conn) Send(resp Response) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return writeFrame(c.conn, resp)
}

// Server is the one-shot IPC listener of spec.md §4.F: it accepts exactly
// one connection, authenticates it, and dispatches that connection's
// requests to Handler until one of them concludes the helper's privileged
// operation (§6 "Process lifecycle").
type Server struct {
	socketPath   string
	clientBundle string
	clientTeam   string
	handler      Handler
}

// NewServer configures a one-shot server. clientBundle/clientTeam are the
// expected peer identity (§4.F step 1); handler processes the single
// accepted request.
func NewServer(socketPath, clientBundle, clientTeam string, handler Handler) *Server {
	return &Server{
		socketPath:   socketPath,
		clientBundle: clientBundle,
		clientTeam:   clientTeam,
		handler:      handler,
	}
}

// Serve listens, accepts exactly one connection, authenticates it, then
// reads and dispatches request frames from it one at a time. It returns
// once Handler reports done for a request (the handler itself may have
// sent several progress messages over the same connection first), or on
// the first read error or empty-tag payload.
func (s *Server) Serve() error {
	if err := os.RemoveAll(s.socketPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clearing stale socket %s: %w", s.socketPath, err)
	}

	addr, err := net.ResolveUnixAddr("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("resolving socket address: %w", err)
	}

	listener, err := net.ListenUnix("unix", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.socketPath, err)
	}
	defer listener.Close()

	if err := os.Chmod(s.socketPath, 0o600); err != nil {
		return fmt.Errorf("restricting socket permissions: %w", err)
	}

	rawConn, err := listener.AcceptUnix()
	if err != nil {
		return fmt.Errorf("accepting connection: %w", err)
	}
	defer rawConn.Close()

	peer, err := authenticatePeer(rawConn, s.clientBundle, s.clientTeam)
	if err != nil {
		return err
	}

	conn := &Conn{conn: rawConn}

	for {
		var req Request
		if err := readFrame(rawConn, &req); err != nil {
			return fmt.Errorf("reading request: %w", err)
		}
		if req.Tag == "" {
			// Null/non-dictionary payloads decode to the zero Request,
			// whose Tag is empty — spec.md §4.F step 2 treats this as
			// rejected, which for this helper is terminal.
			return fmt.Errorf("payload null or malformed")
		}

		if done := s.handler.Handle(conn, peer, req); done {
			return nil
		}
	}
}
