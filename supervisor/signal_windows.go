//go:build windows

package supervisor

import "go.uber.org/zap"

// InstallTerminationHandler is a no-op on windows: no handler is registered
// and the default OS behavior kills the process.
func InstallTerminationHandler(log *zap.SugaredLogger) {}
