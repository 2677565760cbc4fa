package receipt

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
)

// DefaultMaxUploadSize is the largest accepted upload (20 MB).
const DefaultMaxUploadSize int64 = 20 << 20

// Upload validation errors
var (
	ErrNoFile          = errors.New("no file provided")
	ErrEmptyFilename   = errors.New("empty filename")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrFileTooLarge    = errors.New("file is too large")
)

// allowedExtensions are the image types accepted for upload
var allowedExtensions = map[string]bool{
	"png":  true,
	"jpg":  true,
	"jpeg": true,
	"webp": true,
	"tif":  true,
	"tiff": true,
	"bmp":  true,
	"gif":  true,
}

// AllowedFile reports whether the filename carries an accepted image extension
func AllowedFile(filename string) bool {
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return false
	}
	return allowedExtensions[strings.ToLower(filename[i+1:])]
}

// ValidateUpload checks an upload before anything is stored or scanned
func ValidateUpload(filename string, size, maxSize int64) error {
	if filename == "" {
		return ErrEmptyFilename
	}
	if !AllowedFile(filename) {
		return ErrUnsupportedType
	}
	if maxSize > 0 && size > maxSize {
		return ErrFileTooLarge
	}
	return nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)
	whitespaceRuns      = regexp.MustCompile(`\s+`)
)

// sanitizeFilename makes a client filename safe to store: directories are
// dropped, whitespace becomes underscores and only ASCII letters, digits,
// dot, dash and underscore survive. Two uploads with the same name map to
// the same stored file.
func sanitizeFilename(filename string) string {
	// Clients on Windows send backslash paths
	filename = strings.ReplaceAll(filename, "\\", "/")
	if i := strings.LastIndex(filename, "/"); i >= 0 {
		filename = filename[i+1:]
	}

	ext := strings.ToLower(filepath.Ext(filename))
	base := strings.TrimSuffix(filename, filepath.Ext(filename))

	base = whitespaceRuns.ReplaceAllString(strings.TrimSpace(base), "_")
	base = unsafeFilenameChars.ReplaceAllString(base, "")
	base = strings.Trim(base, "._")
	ext = unsafeFilenameChars.ReplaceAllString(ext, "")

	// Truncate to reasonable length (50 chars for base, plus extension)
	maxLen := 50
	if len(base) > maxLen {
		base = base[:maxLen]
	}

	if base == "" {
		base = "receipt"
	}

	return base + ext
}
