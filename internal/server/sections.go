package server

import "net/http"

// handleListSections returns the enabled sections in display order.
func (s *Server) handleListSections(w http.ResponseWriter, r *http.Request) {
	sections, err := s.repo.ListSections(r.Context())
	if err != nil {
		s.logger.Error("list sections", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, sections)
}
