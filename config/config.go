// Package config assembles the clusterboard launch configuration.
//
// The dashboard is launched by the cluster node manager with a flat set of
// flags. This package turns those flags into a validated Config and applies
// the platform overrides (log rotation is disabled on platforms without an
// atomic rename). Validation failures surface as *ValidationError before any
// other component starts.
package config

import (
	"encoding/hex"
	"flag"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap/zapcore"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultLogFilename is the log file created under -log-dir.
	// An empty -logging-filename sends logs to stdout instead.
	DefaultLogFilename = "clusterboard.log"

	// DefaultLogRotateBytes caps a log file at 512 MiB before rotation.
	DefaultLogRotateBytes = 512 * 1024 * 1024

	// DefaultLogRotateBackups is the number of rotated files kept.
	DefaultLogRotateBackups = 5

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config is the validated launch configuration of the dashboard process.
// It is built once by FromArgs and never mutated afterwards.
type Config struct {
	// HTTP server
	Host        string
	Port        int
	PortRetries int

	// Cluster identity
	ControlPlaneAddr string
	ClusterID        string // hex string
	NodeAddr         string

	// Diagnostics
	LogDir           string
	LogLevel         string
	LogFormat        string // "json" or "console"
	LogFilename      string // empty means stdout
	LogRotateBytes   int64
	LogRotateBackups int
	StdoutFile       string
	StderrFile       string

	// Directories
	TempDir    string
	SessionDir string

	// Behavior
	Minimal         bool
	DisableFrontend bool

	// Modules restricts which dashboard modules load.
	// nil means all modules load.
	Modules map[string]struct{}

	// TraceEndpoint enables the OTLP trace exporter when non-empty.
	TraceEndpoint string
}

// ValidationError reports an invalid or missing launch parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// =============================================================================
// ASSEMBLY
// =============================================================================

// FromArgs parses launch flags into a validated Config.
// Defaults are applied for optional flags, required fields are checked, and
// the platform rotation override is applied for the running platform.
func FromArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("clusterboard", flag.ContinueOnError)

	cfg := &Config{}
	var modules string

	fs.StringVar(&cfg.Host, "host", "", "host to bind the HTTP server to")
	fs.IntVar(&cfg.Port, "port", 0, "port to bind the HTTP server to")
	fs.IntVar(&cfg.PortRetries, "port-retries", 0, "number of successive ports to try when the bind port is taken")
	fs.StringVar(&cfg.ControlPlaneAddr, "control-plane-addr", "", "address (host:port) of the cluster control plane")
	fs.StringVar(&cfg.ClusterID, "cluster-id-hex", "", "cluster ID as a hex string")
	fs.StringVar(&cfg.NodeAddr, "node-addr", "", "network address of the node running this process")
	fs.StringVar(&cfg.LogLevel, "logging-level", DefaultLogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "logging-format", DefaultLogFormat, "log encoding: json or console")
	fs.StringVar(&cfg.LogFilename, "logging-filename", DefaultLogFilename, "log file name; empty logs to stdout")
	fs.Int64Var(&cfg.LogRotateBytes, "logging-rotate-bytes", DefaultLogRotateBytes, "max bytes before rotating the log file")
	fs.IntVar(&cfg.LogRotateBackups, "logging-rotate-backup-count", DefaultLogRotateBackups, "number of rotated log files to keep")
	fs.StringVar(&cfg.LogDir, "log-dir", "", "log directory")
	fs.StringVar(&cfg.TempDir, "temp-dir", "", "temporary directory of the node")
	fs.StringVar(&cfg.SessionDir, "session-dir", "", "session directory of the cluster")
	fs.BoolVar(&cfg.Minimal, "minimal", false, "load only modules with no extra dependencies")
	fs.StringVar(&modules, "modules-to-load", "", "comma or space separated module names; empty loads all")
	fs.BoolVar(&cfg.DisableFrontend, "disable-frontend", false, "do not serve the frontend")
	fs.StringVar(&cfg.StdoutFile, "stdout-filepath", "", "file to capture process stdout; empty disables capture")
	fs.StringVar(&cfg.StderrFile, "stderr-filepath", "", "file to capture process stderr; empty disables capture")
	fs.StringVar(&cfg.TraceEndpoint, "otlp-endpoint", "", "OTLP trace collector endpoint; empty disables tracing")

	if err := fs.Parse(args); err != nil {
		return nil, &ValidationError{Field: "flags", Reason: err.Error()}
	}

	cfg.Modules = ParseModuleList(modules)
	cfg.applyPlatformOverrides(runtime.GOOS)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyPlatformOverrides disables log rotation on platforms without atomic
// rename semantics. Kept separate from FromArgs so the override is testable
// for any goos.
func (c *Config) applyPlatformOverrides(goos string) {
	if goos == "windows" {
		c.LogRotateBytes = 0
		c.LogRotateBackups = 1
	}
}

func (c *Config) validate() error {
	required := []struct {
		field string
		value string
	}{
		{"host", c.Host},
		{"control-plane-addr", c.ControlPlaneAddr},
		{"cluster-id-hex", c.ClusterID},
		{"node-addr", c.NodeAddr},
		{"log-dir", c.LogDir},
		{"temp-dir", c.TempDir},
		{"session-dir", c.SessionDir},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return &ValidationError{Field: r.field, Reason: "required"}
		}
	}

	if c.Port < 1 || c.Port > 65535 {
		return &ValidationError{Field: "port", Reason: fmt.Sprintf("must be in 1..65535, got %d", c.Port)}
	}
	if c.PortRetries < 0 {
		return &ValidationError{Field: "port-retries", Reason: "must be non-negative"}
	}
	if c.LogRotateBytes < 0 {
		return &ValidationError{Field: "logging-rotate-bytes", Reason: "must be non-negative"}
	}
	if c.LogRotateBackups < 0 {
		return &ValidationError{Field: "logging-rotate-backup-count", Reason: "must be non-negative"}
	}
	if _, err := hex.DecodeString(c.ClusterID); err != nil {
		return &ValidationError{Field: "cluster-id-hex", Reason: "not a valid hex string"}
	}
	if _, err := zapcore.ParseLevel(strings.ToLower(c.LogLevel)); err != nil {
		return &ValidationError{Field: "logging-level", Reason: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return &ValidationError{Field: "logging-format", Reason: fmt.Sprintf("unknown format %q", c.LogFormat)}
	}
	return nil
}
