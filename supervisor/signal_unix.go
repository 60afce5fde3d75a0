//go:build !windows

package supervisor

import (
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
)

// exitFunc is swapped in tests; production always exits the process.
var exitFunc = os.Exit

// InstallTerminationHandler registers the SIGTERM fast-exit path.
//
// On receipt the process logs one warning and exits immediately with the
// signal number. Nothing else runs: no failure reporting, no driver
// notification, and no cancellation of in-flight head work. The head's
// internal tasks do not handle cancellation, so a graceful termination is
// not attempted.
func InstallTerminationHandler(log *zap.SugaredLogger) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGTERM)
	go func() {
		<-ch
		log.Warnf("received SIGTERM, exiting immediately")
		_ = log.Sync()
		exitFunc(int(syscall.SIGTERM))
	}()
}
