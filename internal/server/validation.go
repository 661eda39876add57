// validation.go - Whitelist checks applied before any external call.
package server

import (
	"fmt"
	"path/filepath"
	"strings"
)

const bytesPerMB = 1 << 20

// allowedMimeTypes lists upload content types the site accepts: PDF, the
// legacy and OOXML office formats, and the common web image formats.
var allowedMimeTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         true,
	"application/vnd.ms-powerpoint":                                             true,
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": true,

	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
}

// ValidateMimeType rejects upload content types outside the whitelist.
func ValidateMimeType(contentType string) error {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	if !allowedMimeTypes[ct] {
		return fmt.Errorf("file type %q is not allowed", contentType)
	}
	return nil
}

// ValidateUploadSize rejects payloads above the configured ceiling.
func ValidateUploadSize(size, maxMB int64) error {
	if size > maxMB*bytesPerMB {
		return fmt.Errorf("file exceeds the %d MB limit", maxMB)
	}
	return nil
}

// NormalizeSection lowercases and trims a requested section key.
func NormalizeSection(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// sanitizeFilename keeps only the base name and replaces characters that are
// unsafe in object keys.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == ".." || name == string(filepath.Separator) {
		return "file"
	}
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
