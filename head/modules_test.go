package head

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jeeves-cluster-organization/clusterboard/config"
	"github.com/jeeves-cluster-organization/clusterboard/events"
)

func moduleNames(modules []Module) []string {
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		names = append(names, m.Name())
	}
	return names
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func TestLoadModulesNilSelectorLoadsAll(t *testing.T) {
	modules, err := loadModules(nil, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"health", "logs", "nodes"}, moduleNames(modules))
}

func TestLoadModulesSelectorRestricts(t *testing.T) {
	modules, err := loadModules(map[string]struct{}{"health": {}}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"health"}, moduleNames(modules))
}

func TestLoadModulesMinimalSkipsFullOnly(t *testing.T) {
	modules, err := loadModules(nil, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"health", "nodes"}, moduleNames(modules))
}

func TestLoadModulesUnknownSelectorName(t *testing.T) {
	_, err := loadModules(map[string]struct{}{"bogus": {}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

// =============================================================================
// NODES MODULE TESTS
// =============================================================================

func newNodesMux(t *testing.T, bus *events.Bus) *http.ServeMux {
	t.Helper()
	m := &nodesModule{}
	deps := &Deps{
		Cfg: &config.Config{ClusterID: "deadbeef"},
		Bus: bus,
		Log: zaptest.NewLogger(t).Sugar(),
	}
	require.NoError(t, m.Init(context.Background(), deps))

	mux := http.NewServeMux()
	m.Routes(mux)
	return mux
}

func TestNodesModuleReportAndList(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Close()

	got := make(chan events.Event, 1)
	bus.Subscribe(events.TopicNodeReport, func(ev events.Event) { got <- ev })

	mux := newNodesMux(t, bus)

	body, _ := json.Marshal(NodeReport{NodeID: "node-1", Addr: "10.0.0.5", CPUPercent: 12.5})
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/nodes/report", bytes.NewReader(body)))
	require.Equal(t, http.StatusAccepted, rec.Code)

	// The report is republished on the bus for other modules.
	select {
	case ev := <-got:
		report, ok := ev.Payload.(NodeReport)
		require.True(t, ok)
		assert.Equal(t, "node-1", report.NodeID)
		assert.False(t, report.ReportedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("expected a node report event on the bus")
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nodes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var list []NodeReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "node-1", list[0].NodeID)
	assert.Equal(t, "10.0.0.5", list[0].Addr)
}

func TestNodesModuleRejectsBadReports(t *testing.T) {
	bus := events.NewBus(8)
	defer bus.Close()
	mux := newNodesMux(t, bus)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/nodes/report", bytes.NewReader([]byte("{"))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/nodes/report", bytes.NewReader([]byte(`{"addr":"x"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/nodes/report", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

// =============================================================================
// HEALTH MODULE TESTS
// =============================================================================

func TestHealthModuleReportsCluster(t *testing.T) {
	m := &healthModule{}
	deps := &Deps{Cfg: &config.Config{ClusterID: "deadbeef"}}
	require.NoError(t, m.Init(context.Background(), deps))

	mux := http.NewServeMux()
	m.Routes(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "deadbeef", body["cluster_id"])
}
