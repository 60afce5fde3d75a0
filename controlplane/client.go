// Package controlplane publishes cluster-wide notifications for the
// dashboard. Drivers subscribe to the error channel of their cluster; a
// capped recent-error list lets late-joining drivers read faults they missed.
package controlplane

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CategoryDashboardDied tags error reports published when the dashboard
// process dies with an unrecoverable fault.
const CategoryDashboardDied = "clusterboard_died"

// errLogDepth caps the recent-error list kept per cluster.
const errLogDepth = 100

// ErrorReport is the wire shape of a published error notification.
type ErrorReport struct {
	ID        string    `json:"id"`
	ClusterID string    `json:"cluster_id"`
	Category  string    `json:"category"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is the control-plane handle of the dashboard process. It is
// constructed once at bootstrap and used at most once, on the failure path.
type Client struct {
	rdb       *redis.Client
	clusterID string
}

// New creates a control-plane client for the given cluster. The connection
// is established lazily; use Ping to probe reachability.
func New(addr, clusterID string) *Client {
	return &Client{
		rdb:       redis.NewClient(&redis.Options{Addr: addr}),
		clusterID: clusterID,
	}
}

// Ping probes the control plane. Used at bootstrap to report (not enforce)
// reachability.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// PublishError delivers an error report to every driver of the cluster.
// One attempt, no retries: the process is about to exit and a delivery
// failure must not delay or mask the original fault.
func (c *Client) PublishError(ctx context.Context, category, message string) error {
	report := ErrorReport{
		ID:        uuid.NewString(),
		ClusterID: c.clusterID,
		Category:  category,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal error report: %w", err)
	}

	pipe := c.rdb.Pipeline()
	pipe.Publish(ctx, c.errChannel(), payload)
	pipe.LPush(ctx, c.errLogKey(), payload)
	pipe.LTrim(ctx, c.errLogKey(), 0, errLogDepth-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish error report to %s: %w", c.errChannel(), err)
	}
	return nil
}

// Close releases the control-plane connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

func (c *Client) errChannel() string {
	return fmt.Sprintf("clusterboard:%s:errors", c.clusterID)
}

func (c *Client) errLogKey() string {
	return fmt.Sprintf("clusterboard:%s:errlog", c.clusterID)
}
