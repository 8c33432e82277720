// Package receipt stores proof-of-payment files uploaded for transfer orders.
package receipt

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"
)

// ErrNotFound is returned when no receipt exists under a key.
var ErrNotFound = errors.New("receipt not found")

// Store persists receipt files under slash separated keys.
type Store interface {
	// Put writes body under key, replacing any existing file.
	Put(ctx context.Context, key, contentType string, body io.Reader) error

	// Open returns the file stored under key. The caller closes it.
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// allowedTypes maps accepted upload content types to file extensions.
var allowedTypes = map[string]string{
	"application/pdf": ".pdf",
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
}

// Extension returns the file extension for an accepted content type.
func Extension(contentType string) (string, bool) {
	mediaType, _, _ := strings.Cut(contentType, ";")
	ext, ok := allowedTypes[strings.TrimSpace(strings.ToLower(mediaType))]
	return ext, ok
}

// ContentType returns the media type stored under key, derived from its
// extension.
func ContentType(key string) string {
	ext := strings.ToLower(path.Ext(key))
	for contentType, allowed := range allowedTypes {
		if allowed == ext {
			return contentType
		}
	}
	return "application/octet-stream"
}

// cleanKey rejects keys that are absolute or escape the store root.
func cleanKey(key string) (string, bool) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", false
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", false
	}
	return cleaned, true
}
