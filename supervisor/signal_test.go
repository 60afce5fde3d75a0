//go:build !windows

package supervisor

import (
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestTerminationHandlerExitsWithSignalNumber(t *testing.T) {
	exited := make(chan int, 1)
	orig := exitFunc
	exitFunc = func(code int) { exited <- code }
	defer func() { exitFunc = orig }()

	InstallTerminationHandler(zaptest.NewLogger(t).Sugar())

	// Notify has replaced the default SIGTERM disposition, so signalling
	// ourselves is safe here.
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))

	select {
	case code := <-exited:
		assert.Equal(t, int(syscall.SIGTERM), code)
	case <-time.After(5 * time.Second):
		t.Fatal("termination handler did not fire")
	}
}
