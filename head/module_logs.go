package head

import (
	"context"
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"
)

func init() {
	// Browsing log files needs the full install; skipped in minimal mode.
	RegisterModule("logs", true, func() Module { return &logsModule{} })
}

// logsModule lists the log files of the local node.
type logsModule struct {
	logDir string
	log    *zap.SugaredLogger
}

func (m *logsModule) Name() string { return "logs" }

func (m *logsModule) Init(ctx context.Context, deps *Deps) error {
	m.logDir = deps.Cfg.LogDir
	m.log = deps.Log
	return nil
}

func (m *logsModule) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/api/v1/logs", m.handleList)
}

func (m *logsModule) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	entries, err := os.ReadDir(m.logDir)
	if err != nil {
		m.log.Warnw("failed to read log dir", "dir", m.logDir, "err", err)
		http.Error(w, "log directory unavailable", http.StatusInternalServerError)
		return
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(names)
}
