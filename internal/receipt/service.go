package receipt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/receipt-ocr/internal/format"
	"github.com/zombor/receipt-ocr/internal/scanning"
)

// IDGenerator generates unique IDs for scans
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// defaultIDGenerator generates random UUIDs
type defaultIDGenerator struct{}

func (g *defaultIDGenerator) Generate() string {
	return uuid.NewString()
}

// defaultTimeSource provides the current time
type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service handles uploads, scanning and scan history
type Service struct {
	db            DB
	scanner       scanning.Scanner
	storage       Storage
	idGenerator   IDGenerator
	timeSource    TimeSource
	maxUploadSize int64
}

// NewService creates a new Service with default ID generator and time source
func NewService(db DB, scanner scanning.Scanner, storage Storage) *Service {
	return NewServiceWithDeps(db, scanner, storage, &defaultIDGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(db DB, scanner scanning.Scanner, storage Storage, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		db:            db,
		scanner:       scanner,
		storage:       storage,
		idGenerator:   idGen,
		timeSource:    timeSrc,
		maxUploadSize: DefaultMaxUploadSize,
	}
}

// SetMaxUploadSize changes the upload limit. Non-positive values restore the default.
func (s *Service) SetMaxUploadSize(n int64) {
	if n <= 0 {
		n = DefaultMaxUploadSize
	}
	s.maxUploadSize = n
}

// MaxUploadSize returns the upload limit in bytes
func (s *Service) MaxUploadSize() int64 {
	return s.maxUploadSize
}

// ProcessUpload validates and stores an upload, scans it and records the result.
// A stored file with the same sanitized name is replaced.
func (s *Service) ProcessUpload(ctx context.Context, filename string, data []byte, contentType string) (*Scan, error) {
	if err := ValidateUpload(filename, int64(len(data)), s.maxUploadSize); err != nil {
		return nil, err
	}

	now := s.timeSource.Now()
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = scanning.ContentTypeFor(filename)
	}

	stored, err := s.storage.Save(sanitizeFilename(filename), data)
	if err != nil {
		return nil, fmt.Errorf("saving file: %w", err)
	}

	result, err := s.scanner.ScanReceipt(ctx, data, contentType)
	if err != nil {
		slog.Error("Failed to scan receipt",
			"filename", filename,
			"stored", stored,
			"content_type", contentType,
			"file_size", len(data),
			"error", err,
		)
		return nil, fmt.Errorf("scanning receipt: %w", err)
	}
	if result == nil {
		return nil, errors.New("scanning receipt: scanner returned no record")
	}

	scan := &Scan{
		ID:           s.idGenerator.Generate(),
		Filename:     stored,
		OriginalName: filename,
		ContentType:  contentType,
		Size:         int64(len(data)),
		CreatedAt:    now,
		Result:       format.Enrich(result),
	}

	if err := s.db.SaveScan(scan); err != nil {
		return nil, fmt.Errorf("saving scan to database: %w", err)
	}

	return scan, nil
}

// GetScan retrieves a scan by ID
func (s *Service) GetScan(id string) (*Scan, error) {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return nil, fmt.Errorf("getting scan: %w", err)
	}
	return scan, nil
}

// ListScans returns all scans, newest first
func (s *Service) ListScans() ([]*Scan, error) {
	scans, err := s.db.ListScans()
	if err != nil {
		return nil, fmt.Errorf("listing scans: %w", err)
	}
	return scans, nil
}

// DeleteScan removes a scan. Its stored file goes too unless another scan
// still points at it.
func (s *Service) DeleteScan(id string) error {
	scan, err := s.db.GetScan(id)
	if err != nil {
		return fmt.Errorf("getting scan for deletion: %w", err)
	}

	if err := s.db.DeleteScan(id); err != nil {
		return fmt.Errorf("deleting scan from database: %w", err)
	}

	remaining, err := s.db.ListScans()
	if err != nil {
		slog.Warn("Keeping file, could not check references", "filename", scan.Filename, "error", err)
		return nil
	}
	for _, other := range remaining {
		if other.Filename == scan.Filename {
			return nil
		}
	}

	if err := s.storage.Delete(scan.Filename); err != nil {
		// Log error, the record is already gone
		slog.Warn("Failed to delete file", "filename", scan.Filename, "error", err)
	}
	return nil
}

// GetUploadFile returns a stored upload and its content type
func (s *Service) GetUploadFile(name string) ([]byte, string, error) {
	if name == "" || name != filepath.Base(name) {
		return nil, "", fmt.Errorf("getting upload: %w", ErrInvalidName)
	}

	data, err := s.storage.Get(name)
	if err != nil {
		return nil, "", fmt.Errorf("getting upload: %w", err)
	}
	return data, scanning.ContentTypeFor(name), nil
}

// IsClientError reports whether err was caused by the upload itself
// rather than by scanning or storage
func IsClientError(err error) bool {
	return errors.Is(err, ErrNoFile) ||
		errors.Is(err, ErrEmptyFilename) ||
		errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrFileTooLarge)
}
