package head

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jeeves-cluster-organization/clusterboard/events"
	"github.com/jeeves-cluster-organization/clusterboard/observability"
)

func init() {
	RegisterModule("nodes", false, func() Module { return &nodesModule{} })
}

// NodeReport is a status report posted by a node reporter process.
type NodeReport struct {
	NodeID     string    `json:"node_id"`
	Addr       string    `json:"addr"`
	CPUPercent float64   `json:"cpu_percent"`
	MemPercent float64   `json:"mem_percent"`
	ReportedAt time.Time `json:"reported_at"`
}

// nodesModule collates node reports posted by reporter processes and serves
// the latest snapshot per node.
type nodesModule struct {
	mu      sync.RWMutex
	reports map[string]NodeReport
	bus     *events.Bus
	log     *zap.SugaredLogger
}

func (m *nodesModule) Name() string { return "nodes" }

func (m *nodesModule) Init(ctx context.Context, deps *Deps) error {
	m.reports = make(map[string]NodeReport)
	m.bus = deps.Bus
	m.log = deps.Log
	return nil
}

func (m *nodesModule) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/nodes", m.handleList)
	mux.HandleFunc("/api/v1/nodes/report", m.handleReport)
}

func (m *nodesModule) handleReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var report NodeReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		http.Error(w, "malformed report: "+err.Error(), http.StatusBadRequest)
		return
	}
	if report.NodeID == "" {
		http.Error(w, "node_id is required", http.StatusBadRequest)
		return
	}
	if report.ReportedAt.IsZero() {
		report.ReportedAt = time.Now().UTC()
	}

	m.mu.Lock()
	m.reports[report.NodeID] = report
	m.mu.Unlock()

	observability.RecordNodeReport()
	m.bus.Publish(events.TopicNodeReport, report)
	w.WriteHeader(http.StatusAccepted)
}

func (m *nodesModule) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m.mu.RLock()
	list := make([]NodeReport, 0, len(m.reports))
	for _, report := range m.reports {
		list = append(list, report)
	}
	m.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].NodeID < list[j].NodeID })

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(list); err != nil {
		m.log.Warnw("failed to encode node list", "err", err)
	}
}
