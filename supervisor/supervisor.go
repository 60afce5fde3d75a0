// Package supervisor drives the dashboard head to completion and turns an
// unrecoverable fault into a cluster-wide notification.
//
// The contract: the head runs exactly once, panics are captured with their
// stack, faults are classified once at this level, and the report ordering
// is fixed — log first, then publish to the drivers, then re-raise. A
// delivery failure on the publish step never masks the original fault.
package supervisor

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"go.uber.org/zap"

	"github.com/jeeves-cluster-organization/clusterboard/controlplane"
	"github.com/jeeves-cluster-organization/clusterboard/head"
)

// publishTimeout bounds the single best-effort delivery attempt.
const publishTimeout = 5 * time.Second

// Unit is the opaque service unit the supervisor drives. Run blocks until
// shutdown or fault.
type Unit interface {
	Run(ctx context.Context) error
}

// Publisher delivers an error report to every driver of the cluster.
type Publisher interface {
	PublishError(ctx context.Context, category, message string) error
}

// FaultReport combines the local node identity with the formatted fault.
// Built once per failing run, consumed by the log and the control plane,
// then discarded.
type FaultReport struct {
	Node    string
	Trace   string
	Message string
}

func newFaultReport(node string, err error) FaultReport {
	trace := err.Error()
	return FaultReport{
		Node:    node,
		Trace:   trace,
		Message: fmt.Sprintf("The cluster dashboard on node %s failed with the following error:\n%s", node, trace),
	}
}

// Supervise runs the unit once and handles its terminal outcome.
//
// Normal completion returns nil. A benign fault (missing frontend assets)
// logs a warning and returns nil: the run ends without a cluster alarm. Any
// other fault logs at error severity, publishes one FaultReport to the
// drivers, and returns the original fault so the process exits nonzero.
func Supervise(ctx context.Context, unit Unit, pub Publisher, node string, log *zap.SugaredLogger) error {
	err := runCaptured(ctx, unit)
	if err == nil {
		return nil
	}

	report := newFaultReport(node, err)

	var frontendErr *head.FrontendNotFoundError
	if errors.As(err, &frontendErr) {
		log.Warnw(report.Message, "node", report.Node, "category", "benign")
		return nil
	}

	log.Errorw(report.Message, "node", report.Node)

	if pub != nil {
		// Fresh context: the run context may already be cancelled, and the
		// drivers still need to hear about the fault.
		pctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if perr := pub.PublishError(pctx, controlplane.CategoryDashboardDied, report.Message); perr != nil {
			log.Errorw("failed to deliver error report to drivers", "err", perr)
		}
	}

	return err
}

// runCaptured invokes the unit once, converting a panic into a fault that
// carries the stack trace.
func runCaptured(ctx context.Context, unit Unit) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in dashboard head: %v\n%s", r, debug.Stack())
		}
	}()
	return unit.Run(ctx)
}
