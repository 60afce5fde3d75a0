// Package head implements the dashboard head: the long-running service unit
// driven by the bootstrap. It loads the selected modules, binds the HTTP
// server (retrying successive ports within the launch budget), serves the
// frontend and the metrics endpoint, and runs until shutdown or fault.
package head

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jeeves-cluster-organization/clusterboard/config"
	"github.com/jeeves-cluster-organization/clusterboard/events"
	"github.com/jeeves-cluster-organization/clusterboard/observability"
)

// frontendSubdir is where the session layout places the built frontend.
const frontendSubdir = "frontend"

// Head is the dashboard service unit. Run is its single entry point and is
// invoked exactly once per process.
type Head struct {
	cfg *config.Config
	bus *events.Bus
	log *zap.SugaredLogger

	frontendDir string
}

// New builds the head from the validated launch configuration.
func New(cfg *config.Config, bus *events.Bus, log *zap.SugaredLogger) *Head {
	return &Head{
		cfg:         cfg,
		bus:         bus,
		log:         log,
		frontendDir: filepath.Join(cfg.SessionDir, frontendSubdir),
	}
}

// Run drives the head to completion. It returns nil when the context is
// cancelled (normal shutdown) and the fault otherwise. Never call twice.
func (h *Head) Run(ctx context.Context) error {
	modules, err := loadModules(h.cfg.Modules, h.cfg.Minimal)
	if err != nil {
		return err
	}
	observability.SetModulesLoaded(len(modules))

	deps := &Deps{Cfg: h.cfg, Bus: h.bus, Log: h.log}
	mux := http.NewServeMux()
	for _, m := range modules {
		if err := m.Init(ctx, deps); err != nil {
			return &ModuleInitError{Module: m.Name(), Cause: err}
		}
		m.Routes(mux)
		h.log.Infow("module loaded", "module", m.Name())
	}
	h.bus.Publish(events.TopicLifecycle, fmt.Sprintf("modules_loaded:%d", len(modules)))

	mux.Handle("/metrics", promhttp.Handler())

	if h.serveFrontend() {
		if _, err := os.Stat(h.frontendDir); err != nil {
			return &FrontendNotFoundError{Dir: h.frontendDir}
		}
		mux.Handle("/", http.FileServer(http.Dir(h.frontendDir)))
	}

	ln, err := bindWithRetries(h.log, h.cfg.Host, h.cfg.Port, h.cfg.PortRetries)
	if err != nil {
		return err
	}
	h.log.Infow("dashboard head listening", "addr", ln.Addr().String(), "modules", len(modules))
	h.bus.Publish(events.TopicLifecycle, "server_bound:"+ln.Addr().String())

	srv := &http.Server{Handler: instrument(mux)}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	select {
	case <-ctx.Done():
		h.bus.Publish(events.TopicLifecycle, "shutdown")
		_ = srv.Close()
		<-errCh
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (h *Head) serveFrontend() bool {
	return !h.cfg.Minimal && !h.cfg.DisableFrontend
}

// bindWithRetries binds the first free port in [port, port+retries].
func bindWithRetries(log *zap.SugaredLogger, host string, port, retries int) (net.Listener, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		addr := net.JoinHostPort(host, strconv.Itoa(port+attempt))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			return ln, nil
		}
		lastErr = err
		log.Warnw("port unavailable, trying next", "addr", addr, "err", err)
	}
	return nil, fmt.Errorf("no free port in %d..%d on %s: %w", port, port+retries, host, lastErr)
}

// instrument records request metrics around the mux.
func instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, code: http.StatusOK}
		next.ServeHTTP(rec, r)
		observability.RecordHTTPRequest(r.URL.Path, strconv.Itoa(rec.code), time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	code int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.code = code
	r.ResponseWriter.WriteHeader(code)
}
