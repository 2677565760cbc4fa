package scanning

import "context"

// TimestampLayout formats Meta.Timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Receipt is the structured record produced for one receipt image.
// Nil pointers are fields the extractors could not recover.
type Receipt struct {
	Meta     Meta     `json:"meta"`
	Merchant *string  `json:"merchant"`
	Date     *string  `json:"date"`
	Totals   Totals   `json:"totals"`
	Items    []Item   `json:"items"`
	RawText  string   `json:"raw_text"`
	RawLines []string `json:"raw_lines"`

	// Enrichment layer, filled by the formatter.
	Columns         *Columns         `json:"lines_2col"`
	StructuredItems []StructuredItem `json:"structured_items"`
}

// Meta describes how the record was produced.
type Meta struct {
	PreprocessVariant string `json:"preprocess_variant"`
	Timestamp         string `json:"timestamp"`
	Profile           string `json:"ocr_profile,omitempty"`
	Score             int    `json:"score"`
}

// Totals holds the summary amounts, normalized to two decimals.
type Totals struct {
	Subtotal *string `json:"subtotal"`
	Tax      *string `json:"tax"`
	Total    *string `json:"total"`
}

// Item is one purchased line.
type Item struct {
	Description string  `json:"description"`
	Amount      *string `json:"amount"`
}

// Row is a line split into a label and a trailing amount.
type Row struct {
	Left  string `json:"left"`
	Right string `json:"right"`
}

// Columns buckets every raw line as an item, a total or metadata.
type Columns struct {
	Items  []Row `json:"items"`
	Totals []Row `json:"totals"`
	Meta   []Row `json:"meta"`
}

// StructuredItem is an item recovered by the quantity/description/price parser.
type StructuredItem struct {
	Qty         string `json:"qty"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// Scanner defines the interface for receipt scanning operations
type Scanner interface {
	// ScanReceipt recognizes a receipt image and extracts its fields
	ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*Receipt, error)
	// Close closes the scanner and releases resources
	Close() error
}
