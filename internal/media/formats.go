package media

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const defaultExtension = "mp4"

var supportedExtensions = map[string]bool{
	"mp4":  true,
	"mkv":  true,
	"webm": true,
	"mov":  true,
}

var supportedMIMETypes = map[string]bool{
	"video/mp4":        true,
	"video/x-matroska": true,
	"video/webm":       true,
	"video/quicktime":  true,
}

// Extension returns the lower-cased extension of filename without the dot.
// A name without an extension is treated as mp4.
func Extension(filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(filename)), ".")
	if ext == "" {
		return defaultExtension
	}
	return ext
}

// IsSupportedVideo reports whether filename has an accepted video extension.
func IsSupportedVideo(filename string) bool {
	return supportedExtensions[Extension(filename)]
}

// IsSupportedMIME reports whether an upload's declared content type is accepted.
func IsSupportedMIME(mimeType string) bool {
	return supportedMIMETypes[strings.ToLower(strings.TrimSpace(mimeType))]
}

// TempInputPath returns a fresh input-<uuid>.<ext> path under dir for an
// upload called filename.
func TempInputPath(dir, filename string) (string, error) {
	ext := Extension(filename)
	if !supportedExtensions[ext] {
		return "", fmt.Errorf("unsupported video format: %s", ext)
	}
	return filepath.Join(dir, "input-"+uuid.NewString()+"."+ext), nil
}
