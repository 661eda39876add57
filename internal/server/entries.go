package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// handleListEntries returns the entries of one section, newest first. An
// unknown section is a 404 and never reaches the database.
func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	section := NormalizeSection(r.PathValue("section"))
	if !s.cfg.IsAllowedSection(section) {
		respondError(w, http.StatusNotFound, "unknown section")
		return
	}

	entries, err := s.repo.ListEntries(r.Context(), section)
	if err != nil {
		s.logger.Error("list entries", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
			"section":    section,
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, entries)
}

// createEntryRequest is the admin payload for a new entry. Extra fields in
// the body are ignored.
type createEntryRequest struct {
	SectionKey  string `json:"section_key"`
	Title       string `json:"title"`
	Industry    string `json:"industry"`
	Description string `json:"description"`
	FileURL     string `json:"file_url"`
	FileType    string `json:"file_type"`
}

// handleCreateEntry assigns a fresh id and server-side timestamp. The section
// must be allow-listed; for an admin write that is a 400, not a 404.
func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	section := NormalizeSection(req.SectionKey)
	if !s.cfg.IsAllowedSection(section) {
		respondError(w, http.StatusBadRequest, "section is not allowed")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}

	entry := Entry{
		ID:          uuid.New(),
		SectionKey:  section,
		Title:       title,
		Industry:    strings.TrimSpace(req.Industry),
		Description: strings.TrimSpace(req.Description),
		FileURL:     strings.TrimSpace(req.FileURL),
		FileType:    strings.TrimSpace(req.FileType),
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateEntry(r.Context(), entry); err != nil {
		s.logger.Error("create entry", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
			"section":    section,
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	entriesCreatedTotal.Inc()
	respondJSON(w, http.StatusCreated, entry)
}

// handleDeleteEntry removes an entry by id. Deleting an id that does not
// exist still succeeds; the operation is idempotent.
func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("entry_id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid entry id")
		return
	}

	if err := s.repo.DeleteEntry(r.Context(), id); err != nil {
		s.logger.Error("delete entry", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
			"entry_id":   id.String(),
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	entriesDeletedTotal.Inc()
	w.WriteHeader(http.StatusNoContent)
}
