package receipt

import (
	"time"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

// Scan is one processed upload and its structured result
type Scan struct {
	ID           string            `json:"id"`
	Filename     string            `json:"filename"`      // Stored (sanitized) name in the upload directory
	OriginalName string            `json:"original_name"` // Name as sent by the client
	ContentType  string            `json:"content_type"`
	Size         int64             `json:"size"`
	CreatedAt    time.Time         `json:"created_at"`
	Result       *scanning.Receipt `json:"result"`
}
