package tesseract

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

// DefaultBinary is the executable looked up on PATH.
const DefaultBinary = "tesseract"

// CLI recognizes images by running the tesseract executable. The binary
// path is fixed at construction.
type CLI struct {
	binary      string
	tessdataDir string
	tempDir     string
	runner      Runner
}

// CLIOption configures a CLI recognizer.
type CLIOption func(*CLI)

// WithTessdataDir passes --tessdata-dir to every invocation.
func WithTessdataDir(dir string) CLIOption {
	return func(c *CLI) {
		c.tessdataDir = dir
	}
}

// WithRunner replaces the command runner.
func WithRunner(r Runner) CLIOption {
	return func(c *CLI) {
		c.runner = r
	}
}

// WithTempDir sets where images are staged for the executable.
func WithTempDir(dir string) CLIOption {
	return func(c *CLI) {
		c.tempDir = dir
	}
}

// NewCLI creates a CLI recognizer for the given binary path.
func NewCLI(binary string, opts ...CLIOption) *CLI {
	if binary == "" {
		binary = DefaultBinary
	}
	c := &CLI{binary: binary, runner: ExecRunner{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Recognize stages the image in a temp file and runs
// "tesseract <file> stdout --oem N --psm N -l LANG".
func (c *CLI) Recognize(ctx context.Context, png []byte, profile scanning.Profile) (string, error) {
	f, err := os.CreateTemp(c.tempDir, "receipt-*.png")
	if err != nil {
		return "", fmt.Errorf("creating temp image: %w", err)
	}
	defer os.Remove(f.Name())

	if _, err := f.Write(png); err != nil {
		f.Close()
		return "", fmt.Errorf("writing temp image: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing temp image: %w", err)
	}

	out, errb, err := c.runner.Run(ctx, c.binary, c.args(f.Name(), profile)...)
	if err != nil {
		msg := strings.TrimSpace(string(errb))
		if msg != "" {
			return "", fmt.Errorf("running %s: %w: %s", c.binary, err, msg)
		}
		return "", fmt.Errorf("running %s: %w", c.binary, err)
	}
	return string(out), nil
}

func (c *CLI) args(path string, profile scanning.Profile) []string {
	args := []string{
		path, "stdout",
		"--oem", strconv.Itoa(profile.OEM),
		"--psm", strconv.Itoa(profile.PSM),
		"-l", profile.Language,
	}
	if c.tessdataDir != "" {
		args = append(args, "--tessdata-dir", c.tessdataDir)
	}
	return args
}
