//go:build windows

package diagnostics

// RedirectStdStreams is a no-op on windows: descriptor duplication is not
// supported there, and the launcher captures the console streams itself.
func RedirectStdStreams(stdoutPath, stderrPath string, rotateBytes int64, backups int) error {
	return nil
}
