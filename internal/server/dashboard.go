package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// handleGetDashboard returns the singleton profile record. An unconfigured
// dashboard is a distinct 404, not an empty object.
func (s *Server) handleGetDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.repo.GetDashboard(r.Context())
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "dashboard not configured")
		return
	}
	if err != nil {
		s.logger.Error("get dashboard", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, d)
}

// dashboardUpdate carries the subset of fields an admin may change. Pointer
// fields distinguish "absent" from "set to empty"; anything else in the body
// is ignored.
type dashboardUpdate struct {
	Name        *string          `json:"name"`
	Title       *string          `json:"title"`
	PhotoURL    *string          `json:"photo_url"`
	Metrics     *json.RawMessage `json:"metrics"`
	Growth      *string          `json:"growth"`
	GrowthYears *string          `json:"growth_years"`
	PracticeMix *json.RawMessage `json:"practice_mix"`
}

// handleUpdateDashboard merges the submitted fields into the existing row.
// Fields not present in the body keep their current values. There is no
// implicit create: a missing row is a 404.
func (s *Server) handleUpdateDashboard(w http.ResponseWriter, r *http.Request) {
	var upd dashboardUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	current, err := s.repo.GetDashboard(r.Context())
	if errors.Is(err, ErrNotFound) {
		respondError(w, http.StatusNotFound, "dashboard not configured")
		return
	}
	if err != nil {
		s.logger.Error("get dashboard for update", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if upd.Name != nil {
		current.Name = *upd.Name
	}
	if upd.Title != nil {
		current.Title = *upd.Title
	}
	if upd.PhotoURL != nil {
		current.PhotoURL = *upd.PhotoURL
	}
	if upd.Metrics != nil {
		current.Metrics = *upd.Metrics
	}
	if upd.Growth != nil {
		current.Growth = *upd.Growth
	}
	if upd.GrowthYears != nil {
		current.GrowthYears = *upd.GrowthYears
	}
	if upd.PracticeMix != nil {
		current.PracticeMix = *upd.PracticeMix
	}
	current.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateDashboard(r.Context(), current); err != nil {
		if errors.Is(err, ErrNotFound) {
			respondError(w, http.StatusNotFound, "dashboard not configured")
			return
		}
		s.logger.Error("update dashboard", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, current)
}
