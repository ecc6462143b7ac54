// Package shutdown implements component H, spec.md §4.H: an
// exactly-one-time-initialized singleton that, on exit, closes its done
// channel, cancels the operation context and exits, always with status 0
// (the GUI distinguishes success/failure from the final response message,
// not the exit code). It holds no reference to the IPC server or the
// logger: neither the listener, the connection nor the logger is closed
// explicitly before os.Exit.
//
// Grounded on the teacher's internal/logger/logger.go mutex-protected
// singleton shape (a package-level logger instance behind one mutex),
// expanded here into an explicit one-time-init guard with sync.Once.
// "Schedule onto the main queue" has no Go run-loop analogue; it's mapped
// onto closing a done channel the IPC accept loop can select on.
//
// The Controller also owns the "SIGTERM-watching goroutine that cancels
// the in-flight operation's context on signal" referenced by
// SPEC_FULL.md §5: Context() returns an operation context that is
// cancelled the moment the process receives SIGTERM/SIGINT, the
// Go-native stand-in for a run-loop signal source invalidating an
// in-flight DA operation.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/flashkit/priv-helper/internal/logger"
)

// preShutdownDelay lets the logger drain asynchronously before teardown,
// per spec.md §4.H step (b).
const preShutdownDelay = 500 * time.Millisecond

// Controller is the process-wide shutdown singleton (spec.md §3 "Shutdown
// state"). It must be initialized exactly once at boot.
type Controller struct {
	once   sync.Once
	mu     sync.Mutex
	log    *logger.Logger
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
}

var (
	instance     *Controller
	instanceOnce sync.Once
)

// Init initializes the process-wide Controller exactly once; subsequent
// calls are no-ops. Returns the singleton either way. Starts a goroutine
// that cancels Context's context on SIGTERM/SIGINT.
func Init(log *logger.Logger) *Controller {
	instanceOnce.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		instance = &Controller{
			log:    log,
			done:   make(chan struct{}),
			ctx:    ctx,
			cancel: cancel,
		}

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		go func() {
			sig := <-sigCh
			log.Warnf("received signal %v, cancelling in-flight operation", sig)
			cancel()
		}()
	})
	return instance
}

// Context returns the operation context every blocking Device
// Acquirer/Write/Verify call should be driven with: it is cancelled the
// moment the process receives SIGTERM/SIGINT, per SPEC_FULL.md §5.
func (c *Controller) Context() context.Context {
	return c.ctx
}

// Instance returns the process-wide Controller. Panics if Init was never
// called — a programmer error, not a runtime condition to recover from.
func Instance() *Controller {
	if instance == nil {
		panic("shutdown: Instance called before Init")
	}
	return instance
}

// Done returns a channel the IPC accept loop can select on to notice that
// shutdown has been scheduled — the Go-native stand-in for "scheduled
// onto the transport's main queue."
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// ExitSuccess implements spec.md §4.H's exit_success(): log, sleep to let
// the logger drain, schedule teardown, and exit 0.
func (c *Controller) ExitSuccess() {
	c.log.Info("helper operation completed successfully")
	c.teardownAndExit()
}

// ExitWithError implements exit_with_error(err): same shape, logging the
// error kind first.
func (c *Controller) ExitWithError(err error) {
	c.log.Errorf("helper operation failed: %v", err)
	c.teardownAndExit()
}

func (c *Controller) teardownAndExit() {
	c.once.Do(func() {
		time.Sleep(preShutdownDelay)

		c.mu.Lock()
		close(c.done)
		c.mu.Unlock()
		c.cancel()

		maybeDumpMemStats()

		os.Exit(0)
	})
}
