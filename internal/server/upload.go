package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// uploadResponse echoes what was stored and where it is publicly reachable.
type uploadResponse struct {
	Section  string `json:"section"`
	FileName string `json:"file_name"`
	FileType string `json:"file_type"`
	Size     int64  `json:"size"`
	URL      string `json:"url"`
}

// handleUpload validates section, MIME type, and size, then stores the file
// under "{section}/{uuid}-{filename}" and returns its public URL. The whole
// payload is buffered; the size check needs the real byte count.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	maxBytes := s.cfg.MaxUploadBytes()
	// One extra MiB of headroom for the multipart framing around the payload.
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+bytesPerMB)

	if err := r.ParseMultipartForm(maxBytes + bytesPerMB); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusBadRequest,
				fmt.Sprintf("file exceeds the %d MB limit", s.cfg.MaxUploadMB))
			return
		}
		respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	section := r.URL.Query().Get("section")
	if section == "" {
		section = r.FormValue("section")
	}
	section = NormalizeSection(section)
	if !s.cfg.IsAllowedSection(section) {
		respondError(w, http.StatusBadRequest, "section is not allowed")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if err := ValidateMimeType(contentType); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "could not read file")
		return
	}
	if err := ValidateUploadSize(int64(len(data)), s.cfg.MaxUploadMB); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	key := fmt.Sprintf("%s/%s-%s", section, uuid.New(), sanitizeFilename(header.Filename))

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()
	url, err := s.storage.Upload(ctx, key, contentType, data)
	if err != nil {
		s.logger.Error("store upload", map[string]any{
			"request_id": RequestIDFromContext(r.Context()),
			"section":    section,
			"key":        key,
		}, err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	uploadsTotal.Inc()
	uploadBytesTotal.Add(float64(len(data)))

	respondJSON(w, http.StatusCreated, uploadResponse{
		Section:  section,
		FileName: header.Filename,
		FileType: contentType,
		Size:     int64(len(data)),
		URL:      url,
	})
}
