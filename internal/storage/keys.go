package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"productshots/internal/domain"
)

// GeneratedKey is the storage key for the index-th generated angle of a
// session, e.g. generated/<session>/01-medium.png.
func GeneratedKey(sessionID string, index int, angle domain.Angle, mime string) string {
	if index < 0 {
		index = 0
	}
	ext := ExtensionForMIME(mime)
	if ext == "" {
		ext = ".bin"
	}
	return fmt.Sprintf("generated/%s/%02d-%s%s", sessionID, index+1, angle, ext)
}

// UploadKey is the storage key for a user upload.
func UploadKey(userID, id, mime string) string {
	return EnsureExtension(fmt.Sprintf("uploads/%s/%s", userID, id), mime)
}

// EnsureExtension appends the MIME extension to keys that have none.
func EnsureExtension(key, mime string) string {
	if key == "" {
		return key
	}
	expected := ExtensionForMIME(mime)
	if expected == "" {
		return key
	}
	if filepath.Ext(key) == "" {
		return key + expected
	}
	return key
}

// ExtensionForMIME returns the file extension for supported image types.
func ExtensionForMIME(mime string) string {
	switch strings.ToLower(strings.TrimSpace(mime)) {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}

// MIMEForKey infers the image type from the key extension.
func MIMEForKey(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	default:
		return ""
	}
}
