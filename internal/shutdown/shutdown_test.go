package shutdown

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/flashkit/priv-helper/internal/logger"
)

func TestInitReturnsSameSingleton(t *testing.T) {
	log := logger.New(io.Discard, logger.InfoLevel)
	a := Init(log)
	b := Init(log)
	require.Same(t, a, b)
}

func TestDoneChannelOpenBeforeTeardown(t *testing.T) {
	// Checks only that Done is still open before any teardown; the
	// closing path itself is not driven here because teardownAndExit
	// ends in os.Exit.
	c := &Controller{
		log:  logger.New(io.Discard, logger.InfoLevel),
		done: make(chan struct{}),
	}
	select {
	case <-c.Done():
		t.Fatal("done channel should not be closed yet")
	default:
	}
}
