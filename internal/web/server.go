package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/mtzanidakis/gse/internal/config"
	"github.com/mtzanidakis/gse/internal/crew"
	"github.com/mtzanidakis/gse/internal/metrics"
	"github.com/mtzanidakis/gse/internal/natsbus"
	"github.com/nats-io/nats.go"
)

//go:embed static
var staticFiles embed.FS

type Server struct {
	cfg      *config.Config
	builder  *crew.Builder
	bus      *natsbus.Bus
	events   natsbus.Publisher
	metrics  *metrics.Metrics
	hub      *Hub
	frontend fs.FS
}

// NewServer wires the HTTP surface. bus may be nil, in which case the
// websocket feed stays silent; events may be natsbus.Discard.
func NewServer(cfg *config.Config, builder *crew.Builder, bus *natsbus.Bus, events natsbus.Publisher, m *metrics.Metrics) (*Server, error) {
	frontend, err := frontendFS(cfg.Web.FrontendDir)
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = natsbus.Discard{}
	}
	if m == nil {
		m = metrics.New()
	}
	return &Server{
		cfg:      cfg,
		builder:  builder,
		bus:      bus,
		events:   events,
		metrics:  m,
		hub:      NewHub(),
		frontend: frontend,
	}, nil
}

func frontendFS(dir string) (fs.FS, error) {
	if dir == "" {
		sub, err := fs.Sub(staticFiles, "static")
		if err != nil {
			return nil, fmt.Errorf("static fs: %w", err)
		}
		return sub, nil
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("frontend dir: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("frontend dir %s is not a directory", dir)
	}
	return os.DirFS(dir), nil
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.registerAPI(mux)

	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Frontend bundle
	fileServer := http.FileServer(http.FS(s.frontend))
	mux.Handle("GET /web/", http.StripPrefix("/web", fileServer))
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, s.frontend, "index.html")
	})

	return withCORS(withCompression(s.withRequestLog(mux)))
}

func (s *Server) Start(ctx context.Context) error {
	go s.hub.Run(ctx)

	// Forward bus events to websocket clients
	s.subscribeEvents()

	addr := fmt.Sprintf(":%d", s.cfg.Web.Port)
	server := &http.Server{Addr: addr, Handler: s.Handler()}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	slog.Info("web server listening", "addr", addr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) subscribeEvents() {
	if s.bus == nil {
		return
	}
	client, err := natsbus.NewClient(s.bus)
	if err != nil {
		slog.Error("web server nats client failed", "error", err)
		return
	}

	_, err = client.Subscribe(natsbus.TopicEventsAll, func(msg *nats.Msg) {
		var event natsbus.Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			slog.Warn("invalid NATS event payload", "error", err)
			return
		}
		s.hub.Broadcast(event)
	})
	if err != nil {
		slog.Error("web server nats subscribe failed", "error", err)
		return
	}
	if err := client.Flush(); err != nil {
		slog.Warn("web server nats flush failed", "error", err)
	}
}
