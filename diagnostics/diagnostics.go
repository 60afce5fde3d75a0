// Package diagnostics configures process-wide logging for the dashboard.
//
// The logger is a zap.SugaredLogger writing either to stdout or to a
// rotating file under the log directory. Setup runs exactly once per
// process; this is the single place global state is introduced, and it is
// never reconfigured afterwards.
package diagnostics

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/jeeves-cluster-organization/clusterboard/config"
)

// Config describes the process-wide log sink. Derived once from the launch
// configuration and never mutated.
type Config struct {
	Level         string
	Format        string // "json" or "console"
	LogDir        string
	Filename      string // empty means stdout
	RotateBytes   int64  // 0 disables rotation
	RotateBackups int
	StdoutFile    string
	StderrFile    string
}

// FromLaunch derives the diagnostics configuration from the launch config.
func FromLaunch(cfg *config.Config) Config {
	return Config{
		Level:         cfg.LogLevel,
		Format:        cfg.LogFormat,
		LogDir:        cfg.LogDir,
		Filename:      cfg.LogFilename,
		RotateBytes:   cfg.LogRotateBytes,
		RotateBackups: cfg.LogRotateBackups,
		StdoutFile:    cfg.StdoutFile,
		StderrFile:    cfg.StderrFile,
	}
}

var (
	setupOnce sync.Once
	global    *zap.SugaredLogger
	setupErr  error
)

// Setup configures the process-wide logger. The first call wins; any later
// call is a no-op that returns the logger from the first call. Safe to call
// before any goroutine is started, and must be called before any other
// component logs.
func Setup(cfg Config) (*zap.SugaredLogger, error) {
	setupOnce.Do(func() {
		global, setupErr = build(cfg)
	})
	return global, setupErr
}

// L returns the process-wide logger. Falls back to a development logger when
// Setup has not run, so library tests can log without bootstrap.
func L() *zap.SugaredLogger {
	if global == nil {
		l, _ := zap.NewDevelopment()
		return l.Sugar()
	}
	return global
}

func build(cfg Config) (*zap.SugaredLogger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		parsed, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	if cfg.Format == "console" {
		enc = zapcore.NewConsoleEncoder(encCfg)
	} else {
		enc = zapcore.NewJSONEncoder(encCfg)
	}

	sink, err := openSink(cfg)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(enc, sink, level)
	return zap.New(core, zap.AddCaller()).Sugar(), nil
}

// openSink returns the write target for log output: stdout when no filename
// is configured, a rotating file when rotation is enabled, and a plain
// append-only file when the platform override disabled rotation.
func openSink(cfg Config) (zapcore.WriteSyncer, error) {
	if cfg.Filename == "" {
		return zapcore.Lock(os.Stdout), nil
	}

	path := filepath.Join(cfg.LogDir, cfg.Filename)
	if cfg.RotateBytes > 0 {
		return zapcore.AddSync(newRotatingWriter(path, cfg.RotateBytes, cfg.RotateBackups)), nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return zapcore.Lock(f), nil
}

// newRotatingWriter builds the rotating file writer shared by the log sink
// and the stdout/stderr capture files.
func newRotatingWriter(path string, rotateBytes int64, backups int) io.Writer {
	maxMB := int(rotateBytes / (1024 * 1024))
	if maxMB < 1 {
		maxMB = 1
	}
	return &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxMB,
		MaxBackups: backups,
	}
}
