package head

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

func init() {
	RegisterModule("health", false, func() Module { return &healthModule{} })
}

// healthModule answers liveness probes from the node manager.
type healthModule struct {
	started time.Time
	cluster string
}

func (m *healthModule) Name() string { return "health" }

func (m *healthModule) Init(ctx context.Context, deps *Deps) error {
	m.started = time.Now().UTC()
	m.cluster = deps.Cfg.ClusterID
	return nil
}

func (m *healthModule) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/health", m.handleHealth)
}

func (m *healthModule) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status":         "ok",
		"cluster_id":     m.cluster,
		"uptime_seconds": time.Since(m.started).Seconds(),
	})
}
