//go:build !windows

package diagnostics

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// RedirectStdStreams redirects the process stdout and stderr file
// descriptors into rotating capture files. An empty path leaves the
// corresponding stream untouched. Rotation thresholds match the log sink;
// RotateBytes == 0 appends to a plain file.
//
// The redirect covers writes from any code in the process, including C
// libraries and direct fd writes, because the descriptors themselves are
// replaced with dup2.
func RedirectStdStreams(stdoutPath, stderrPath string, rotateBytes int64, backups int) error {
	if stdoutPath != "" {
		if err := redirectFD(int(os.Stdout.Fd()), stdoutPath, rotateBytes, backups); err != nil {
			return err
		}
	}
	if stderrPath != "" {
		if err := redirectFD(int(os.Stderr.Fd()), stderrPath, rotateBytes, backups); err != nil {
			return err
		}
	}
	return nil
}

func redirectFD(fd int, path string, rotateBytes int64, backups int) error {
	var w io.Writer
	if rotateBytes > 0 {
		w = newRotatingWriter(path, rotateBytes, backups)
	} else {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return err
		}
		w = f
	}

	r, pw, err := os.Pipe()
	if err != nil {
		return err
	}
	if err := unix.Dup2(int(pw.Fd()), fd); err != nil {
		return err
	}

	// Drain the pipe into the capture file for the life of the process.
	// The goroutine ends when the process exits; no cleanup path exists.
	go func() {
		_, _ = io.Copy(w, r)
	}()
	return nil
}
