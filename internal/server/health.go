package server

import (
	"context"
	"net/http"
	"time"
)

type componentHealth struct {
	Status    string  `json:"status"`
	Error     string  `json:"error,omitempty"`
	LatencyMs float64 `json:"latency_ms"`
}

type healthResponse struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Components map[string]componentHealth `json:"components"`
}

func (s *Server) checkComponent(ctx context.Context, ping func(context.Context) error) componentHealth {
	start := time.Now()
	err := ping(ctx)
	c := componentHealth{
		Status:    "up",
		LatencyMs: float64(time.Since(start).Microseconds()) / 1000,
	}
	if err != nil {
		c.Status = "down"
		c.Error = err.Error()
	}
	return c
}

// handleHealth reports liveness plus the state of the database and storage
// collaborators. Any component down degrades the response to 503.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{
		Status:     "healthy",
		Version:    s.cfg.Version,
		Components: map[string]componentHealth{},
	}

	if s.db != nil {
		resp.Components["database"] = s.checkComponent(ctx, s.db.PingContext)
	}
	if s.storage != nil {
		resp.Components["storage"] = s.checkComponent(ctx, s.storage.Ping)
	}

	code := http.StatusOK
	for _, c := range resp.Components {
		if c.Status != "up" {
			resp.Status = "unhealthy"
			code = http.StatusServiceUnavailable
			break
		}
	}

	respondJSON(w, code, resp)
}

// handleRoot is the public landing endpoint.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"service": "portfolio-backend",
		"status":  "ok",
		"version": s.cfg.Version,
	})
}
