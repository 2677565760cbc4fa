// Package tesseract adapts the Tesseract OCR engine to the scanning
// Recognizer port, either in-process through libtesseract or by running
// the tesseract executable.
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

// Client recognizes images with libtesseract through gosseract.
// A fresh engine handle is used per call, so a Client is safe for
// concurrent use.
type Client struct {
	tessdataDir string
}

// NewClient creates a Client. An empty tessdataDir uses the engine default.
func NewClient(tessdataDir string) *Client {
	return &Client{tessdataDir: tessdataDir}
}

// Recognize returns the text tesseract reads from a PNG image.
func (c *Client) Recognize(ctx context.Context, png []byte, profile scanning.Profile) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if c.tessdataDir != "" {
		if err := client.SetTessdataPrefix(c.tessdataDir); err != nil {
			return "", fmt.Errorf("setting tessdata dir: %w", err)
		}
	}
	if err := client.SetLanguage(profile.Language); err != nil {
		return "", fmt.Errorf("setting language: %w", err)
	}
	if err := client.SetPageSegMode(gosseract.PageSegMode(profile.PSM)); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(png); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return text, nil
}
