// Clusterboard Dashboard Bootstrap
//
// Long-running monitoring dashboard for a cluster node. Launched by the node
// manager with the full flag set; see config.FromArgs for the flag surface.
//
// Usage:
//
//	go build -o clusterboard ./cmd && ./clusterboard \
//	    -host 0.0.0.0 -port 8265 \
//	    -control-plane-addr 10.0.0.1:6379 -cluster-id-hex deadbeef \
//	    -node-addr 10.0.0.5 -log-dir /var/log/cluster \
//	    -temp-dir /tmp/cluster -session-dir /var/lib/cluster/session
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jeeves-cluster-organization/clusterboard/config"
	"github.com/jeeves-cluster-organization/clusterboard/controlplane"
	"github.com/jeeves-cluster-organization/clusterboard/diagnostics"
	"github.com/jeeves-cluster-organization/clusterboard/events"
	"github.com/jeeves-cluster-organization/clusterboard/head"
	"github.com/jeeves-cluster-organization/clusterboard/observability"
	"github.com/jeeves-cluster-organization/clusterboard/supervisor"
)

const pingTimeout = 2 * time.Second

func main() {
	// Configuration faults abort before any component starts: no logger is
	// configured yet and no control-plane handle exists to notify drivers.
	cfg, err := config.FromArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "clusterboard:", err)
		os.Exit(1)
	}

	log, err := diagnostics.Setup(diagnostics.FromLaunch(cfg))
	if err != nil {
		fmt.Fprintln(os.Stderr, "clusterboard: logging setup failed:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := diagnostics.RedirectStdStreams(cfg.StdoutFile, cfg.StderrFile, cfg.LogRotateBytes, cfg.LogRotateBackups); err != nil {
		fmt.Fprintln(os.Stderr, "clusterboard: stream capture failed:", err)
		os.Exit(1)
	}

	log.Infow("clusterboard starting",
		"host", cfg.Host,
		"port", cfg.Port,
		"cluster_id", cfg.ClusterID,
		"minimal", cfg.Minimal,
	)

	// The control-plane handle is acquired here, not on the failure path, so
	// a connection fault cannot be conflated with a head fault later.
	cp := controlplane.New(cfg.ControlPlaneAddr, cfg.ClusterID)
	defer cp.Close()

	pingCtx, cancelPing := context.WithTimeout(context.Background(), pingTimeout)
	if err := cp.Ping(pingCtx); err != nil {
		log.Warnw("control plane unreachable at startup", "addr", cfg.ControlPlaneAddr, "err", err)
	}
	cancelPing()

	if cfg.TraceEndpoint != "" {
		shutdown, err := observability.InitTracer("clusterboard", cfg.TraceEndpoint)
		if err != nil {
			log.Warnw("tracing disabled", "err", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	bus := events.NewBus(64)
	defer bus.Close()

	unit := head.New(cfg, bus, log)

	// SIGTERM bypasses everything below: no reporter, no cleanup.
	supervisor.InstallTerminationHandler(log)

	if err := supervisor.Supervise(context.Background(), unit, cp, nodeIdentity(cfg), log); err != nil {
		os.Exit(1)
	}
}

// nodeIdentity names this node in fault reports: the hostname when
// available, the configured node address otherwise.
func nodeIdentity(cfg *config.Config) string {
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	return cfg.NodeAddr
}
