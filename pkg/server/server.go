package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/iqwerty/iq/internal/config"
	"github.com/iqwerty/iq/pkg/component"
	"github.com/iqwerty/iq/pkg/store"
	"github.com/iqwerty/iq/pkg/templates"
)

const tracerName = "iq/server"

// Server is the live preview server: one page of component markup, one
// WebSocket session per connected client.
type Server struct {
	cfg      *config.Config
	registry *component.Registry
	source   templates.Source
	store    *store.Store
	page     string
	log      *slog.Logger
	tracer   trace.Tracer
	m        *metrics
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[*Session]struct{}
	nextID   atomic.Uint64
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithPage sets the component markup served as the page body.
func WithPage(markup string) Option {
	return func(s *Server) { s.page = markup }
}

// WithSource overrides the template source built from configuration.
func WithSource(src templates.Source) Option {
	return func(s *Server) { s.source = src }
}

// WithStore overrides the state store built from configuration.
func WithStore(st *store.Store) Option {
	return func(s *Server) { s.store = st }
}

// WithS3 adds an S3 template source for the bucket named in configuration.
// The client is injected so credentials and region stay the caller's concern.
func WithS3(client *s3.Client) Option {
	return func(s *Server) {
		src := templates.NewS3(client, s.cfg.Templates.S3.Bucket, s.cfg.Templates.S3.Prefix)
		if s.source == nil {
			s.source = src
			return
		}
		if multi, ok := s.source.(templates.Multi); ok {
			s.source = append(multi, src)
			return
		}
		s.source = templates.Multi{s.source, src}
	}
}

// New builds a preview server from configuration. The template source and
// state store default to what iq.json names; options override them.
func New(cfg *config.Config, registry *component.Registry, opts ...Option) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		registry: registry,
		log:      slog.Default(),
		tracer:   otel.Tracer(tracerName),
		sessions: make(map[*Session]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.source == nil {
		var multi templates.Multi
		if cfg.Templates.Dir != "" {
			multi = append(multi, templates.NewDir(cfg.Templates.Dir))
		}
		if cfg.Templates.URL != "" {
			multi = append(multi, templates.NewHTTP(cfg.Templates.URL, nil))
		}
		s.source = multi
	}

	if s.store == nil {
		storeOpts := []store.Option{store.WithLogger(s.log)}
		if cfg.State.File != "" {
			backend, err := store.OpenBolt(cfg.State.File)
			if err != nil {
				return nil, fmt.Errorf("open state file: %w", err)
			}
			storeOpts = append(storeOpts, store.WithBackend(backend))
		}
		s.store = store.New(storeOpts...)
	}

	if cfg.Metrics.Enabled {
		s.m = setupMetrics(WithMetricsNamespace(cfg.Metrics.Namespace))
	}

	return s, nil
}

// Handler returns the HTTP handler: the page, the WebSocket endpoint, a
// health check, and (when enabled) Prometheus metrics.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealth)
	if s.cfg.Metrics.Enabled {
		r.Handle("/metrics", promhttp.Handler())
	}
	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully. Template
// watching starts here when hot reload is configured.
func (s *Server) Run(ctx context.Context) error {
	if s.cfg.Dev.HotReload && len(s.cfg.Dev.Watch) > 0 {
		stop, err := s.watchTemplates(ctx)
		if err != nil {
			s.log.Warn("template watch unavailable", "err", err)
		} else {
			defer stop()
		}
	}

	srv := &http.Server{
		Addr:              s.cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("preview server listening", "addr", s.cfg.Addr())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.closeSessions()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, indexShell, s.cfg.Name, s.page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("upgrade failed", "err", err)
		s.m.recordWSError("upgrade")
		return
	}

	id := fmt.Sprintf("s%d", s.nextID.Add(1))
	sess, err := newSession(s, conn, id)
	if err != nil {
		s.log.Error("session setup failed", "err", err)
		conn.Close()
		return
	}

	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()

	sess.start()
	go func() {
		<-sess.done
		s.mu.Lock()
		delete(s.sessions, sess)
		s.mu.Unlock()
	}()
}

// broadcastReload tells every connected client to reload.
func (s *Server) broadcastReload() {
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.sendReload()
	}
	s.m.recordReload()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for sess := range s.sessions {
		open = append(open, sess)
	}
	s.mu.Unlock()

	for _, sess := range open {
		sess.close()
	}
}

// indexShell wraps the page markup. The inline script reloads the tab on
// reload broadcasts and applies streamed patch frames in place. Wire paths
// are child indexes over the parsed markup, which the browser's parser and
// the server's produce identically for the same page.
const indexShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>%s</title></head>
<body>
%s
<script>
(function () {
  var ws = new WebSocket("ws://" + location.host + "/ws");

  function nodeAt(path) {
    var n = document.body;
    for (var i = 0; i < path.length && n; i++) n = n.childNodes[path[i]];
    return n;
  }

  function parse(html) {
    var t = document.createElement("template");
    t.innerHTML = html || "";
    return t.content;
  }

  function apply(op) {
    var t = nodeAt(op.path || []);
    if (!t) return;
    var i = op.index || 0;
    switch (op.op) {
    case "SetText":
      if (t.childNodes[i]) t.childNodes[i].textContent = op.value || "";
      break;
    case "SetAttr":
      t.setAttribute(op.key, op.value || "");
      break;
    case "RemoveAttr":
      t.removeAttribute(op.key);
      break;
    case "InsertNode":
      t.insertBefore(parse(op.html), t.childNodes[i] || null);
      break;
    case "RemoveNode":
      if (t.childNodes[i]) t.removeChild(t.childNodes[i]);
      break;
    case "ReplaceNode":
      if (t.childNodes[i]) t.replaceChild(parse(op.html), t.childNodes[i]);
      break;
    }
  }

  ws.onmessage = function (m) {
    var f = JSON.parse(m.data);
    if (f.type === "reload") { location.reload(); return; }
    if (f.type === "patch") (f.ops || []).forEach(apply);
  };
})();
</script>
</body>
</html>
`
