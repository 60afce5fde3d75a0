package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validArgs() []string {
	return []string{
		"-host", "127.0.0.1",
		"-port", "8265",
		"-control-plane-addr", "127.0.0.1:6379",
		"-cluster-id-hex", "deadbeef",
		"-node-addr", "10.0.0.5",
		"-log-dir", "/tmp/cluster/logs",
		"-temp-dir", "/tmp/cluster",
		"-session-dir", "/tmp/cluster/session",
	}
}

// =============================================================================
// ASSEMBLY TESTS
// =============================================================================

func TestFromArgsPopulatesAllRequiredFields(t *testing.T) {
	cfg, err := FromArgs(validArgs())
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 8265, cfg.Port)
	assert.Equal(t, "127.0.0.1:6379", cfg.ControlPlaneAddr)
	assert.Equal(t, "deadbeef", cfg.ClusterID)
	assert.Equal(t, "10.0.0.5", cfg.NodeAddr)
	assert.Equal(t, "/tmp/cluster/logs", cfg.LogDir)
	assert.Equal(t, "/tmp/cluster", cfg.TempDir)
	assert.Equal(t, "/tmp/cluster/session", cfg.SessionDir)
}

func TestFromArgsAppliesDefaults(t *testing.T) {
	cfg, err := FromArgs(validArgs())
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.PortRetries)
	assert.Equal(t, DefaultLogLevel, cfg.LogLevel)
	assert.Equal(t, DefaultLogFormat, cfg.LogFormat)
	assert.Equal(t, DefaultLogFilename, cfg.LogFilename)
	assert.EqualValues(t, DefaultLogRotateBytes, cfg.LogRotateBytes)
	assert.Equal(t, DefaultLogRotateBackups, cfg.LogRotateBackups)
	assert.False(t, cfg.Minimal)
	assert.False(t, cfg.DisableFrontend)
	assert.Nil(t, cfg.Modules)
	assert.Empty(t, cfg.StdoutFile)
	assert.Empty(t, cfg.StderrFile)
}

func TestFromArgsMissingRequiredField(t *testing.T) {
	args := []string{
		"-host", "127.0.0.1",
		"-port", "8265",
		// control-plane-addr omitted
		"-cluster-id-hex", "deadbeef",
		"-node-addr", "10.0.0.5",
		"-log-dir", "/tmp/logs",
		"-temp-dir", "/tmp",
		"-session-dir", "/tmp/session",
	}

	_, err := FromArgs(args)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "control-plane-addr", verr.Field)
}

func TestFromArgsRejectsOutOfRangeNumbers(t *testing.T) {
	cases := []struct {
		name  string
		extra []string
		field string
	}{
		{"port zero", []string{"-port", "0"}, "port"},
		{"port too large", []string{"-port", "70000"}, "port"},
		{"negative retries", []string{"-port-retries", "-1"}, "port-retries"},
		{"negative rotate bytes", []string{"-logging-rotate-bytes", "-5"}, "logging-rotate-bytes"},
		{"negative backups", []string{"-logging-rotate-backup-count", "-2"}, "logging-rotate-backup-count"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			args := append(validArgs(), tc.extra...)
			_, err := FromArgs(args)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestFromArgsRejectsBadClusterID(t *testing.T) {
	args := validArgs()
	args[7] = "not-hex!" // value slot of -cluster-id-hex

	_, err := FromArgs(args)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "cluster-id-hex", verr.Field)
}

func TestFromArgsRejectsUnknownLevelAndFormat(t *testing.T) {
	_, err := FromArgs(append(validArgs(), "-logging-level", "loud"))
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "logging-level", verr.Field)

	_, err = FromArgs(append(validArgs(), "-logging-format", "xml"))
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "logging-format", verr.Field)
}

// =============================================================================
// PLATFORM OVERRIDE TESTS
// =============================================================================

func TestPlatformOverrideDisablesRotationOnWindows(t *testing.T) {
	cfg := &Config{LogRotateBytes: DefaultLogRotateBytes, LogRotateBackups: DefaultLogRotateBackups}
	cfg.applyPlatformOverrides("windows")

	assert.EqualValues(t, 0, cfg.LogRotateBytes)
	assert.Equal(t, 1, cfg.LogRotateBackups)
}

func TestPlatformOverrideKeepsRotationElsewhere(t *testing.T) {
	cfg := &Config{LogRotateBytes: DefaultLogRotateBytes, LogRotateBackups: DefaultLogRotateBackups}
	cfg.applyPlatformOverrides("linux")

	assert.EqualValues(t, DefaultLogRotateBytes, cfg.LogRotateBytes)
	assert.Equal(t, DefaultLogRotateBackups, cfg.LogRotateBackups)
}
