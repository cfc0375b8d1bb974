package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mtzanidakis/gse/internal/natsbus"
	"github.com/mtzanidakis/gse/internal/registry"
)

func (s *Server) registerAPI(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.getHealth)
	mux.HandleFunc("GET /agents", s.listPlatforms)
	mux.HandleFunc("GET /crew/template", s.getCrewTemplate)
}

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string]string{
		"status":  "ok",
		"project": s.cfg.ProjectName(),
	})
}

func (s *Server) listPlatforms(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, map[string][]string{"platforms": registry.Platforms()})
}

func (s *Server) getCrewTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl := s.builder.Build()

	s.metrics.TemplateBuilt(tmpl.Installed)
	ev := natsbus.NewEvent("crew.template", map[string]any{
		"installed": tmpl.Installed,
		"agents":    len(tmpl.AgentRoles),
		"tasks":     len(tmpl.TaskDescriptions),
	})
	if err := s.events.PublishJSON(natsbus.TopicEventsCrewTemplate, ev); err != nil {
		slog.Warn("publish crew template event failed", "error", err)
	}

	jsonResponse(w, tmpl)
}

func jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}
