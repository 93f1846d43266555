package preset

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const (
	defaultPrefix   = "capture"
	timestampLayout = "20060102_150405"
)

var filenameUnsafe = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// SanitizeFilename replaces characters unsafe for filenames with underscores.
// An empty result falls back to "capture".
func SanitizeFilename(value string) string {
	cleaned := filenameUnsafe.ReplaceAllString(strings.TrimSpace(value), "_")
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return defaultPrefix
	}
	return cleaned
}

// outputName builds <prefix>_<tag>[_<label>]_<timestamp>.<ext>. The second
// granularity timestamp keeps consecutive captures from colliding.
func outputName(prefix, tag, label, ext string, now time.Time) string {
	parts := []string{SanitizeFilename(prefix), tag}
	if cleaned := strings.Trim(filenameUnsafe.ReplaceAllString(strings.TrimSpace(label), "_"), "_"); cleaned != "" {
		parts = append(parts, cleaned)
	}
	parts = append(parts, now.Format(timestampLayout))
	return strings.Join(parts, "_") + "." + ext
}

func logNameFor(outputPath string) string {
	base := filepath.Base(outputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".log"
}
