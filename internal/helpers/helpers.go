package helpers

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
)

// UserAgent is sent on every request to the archive. The browse pages are
// served to browsers; a bare Go default UA gets a different template.
const UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// BytesToSize converts a byte count to a human readable string, e.g. "1.50MB".
func BytesToSize(bytes uint64) string {
	const unit = 1024
	sizes := []string{"B", "KB", "MB", "GB", "TB"}

	if bytes == 0 {
		return "0B"
	}

	size := float64(bytes)
	i := 0
	for size >= unit && i < len(sizes)-1 {
		size /= unit
		i++
	}
	return fmt.Sprintf("%.2f%s", size, sizes[i])
}

// CheckAndMakeDir ensures a directory exists, creating it (and parents) if
// needed. Returns false if creation failed.
func CheckAndMakeDir(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err == nil {
		return info.IsDir()
	}
	if !os.IsNotExist(err) {
		log.WithError(err).Warnf("Could not stat directory %s", path)
		return false
	}
	if err := os.MkdirAll(path, 0750); err != nil {
		log.WithError(err).Errorf("Failed to create directory %s", path)
		return false
	}
	return true
}

// SanitizePath cleans a path and strips any parent-directory traversal.
func SanitizePath(path string) string {
	cleaned := filepath.Clean(path)
	parts := strings.Split(cleaned, string(filepath.Separator))
	kept := parts[:0]
	for _, p := range parts {
		if p == ".." {
			continue
		}
		kept = append(kept, p)
	}
	joined := filepath.Join(kept...)
	if filepath.IsAbs(cleaned) && !filepath.IsAbs(joined) {
		joined = string(filepath.Separator) + joined
	}
	return joined
}
