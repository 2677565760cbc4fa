package scanning

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/zombor/receipt-ocr/internal/extract"
)

// Variant is one preprocessed rendition of the source image, PNG encoded.
type Variant struct {
	Name string
	PNG  []byte
}

// Preprocessor derives the ordered variant set from a decoded image.
type Preprocessor interface {
	Variants(img image.Image) ([]Variant, error)
}

// Pipeline is the OCR Scanner: decode, preprocess, recognize every variant
// under every profile, keep the best variant and extract fields from it.
type Pipeline struct {
	preprocessor Preprocessor
	recognizer   Recognizer
	profiles     []Profile
	options      extract.Options
	workers      int
	now          func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProfiles replaces the default recognition profiles.
func WithProfiles(profiles ...Profile) Option {
	return func(p *Pipeline) {
		p.profiles = profiles
	}
}

// WithWorkers recognizes up to n variants concurrently. n <= 1 is sequential.
func WithWorkers(n int) Option {
	return func(p *Pipeline) {
		p.workers = n
	}
}

// WithExtractOptions overrides the field extraction options.
func WithExtractOptions(opts extract.Options) Option {
	return func(p *Pipeline) {
		p.options = opts
	}
}

// WithClock sets the time source for record timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// NewPipeline creates a Pipeline over the given preprocessor and engine.
func NewPipeline(pre Preprocessor, rec Recognizer, opts ...Option) *Pipeline {
	p := &Pipeline{
		preprocessor: pre,
		recognizer:   rec,
		profiles:     DefaultProfiles(DefaultLanguage),
		options:      extract.DefaultOptions(),
		workers:      1,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ScanReceipt decodes imageData and scans it.
func (p *Pipeline) ScanReceipt(ctx context.Context, imageData []byte, contentType string) (*Receipt, error) {
	img, err := DecodeImage(imageData, contentType)
	if err != nil {
		return nil, err
	}
	return p.ScanImage(ctx, img)
}

// ScanFile decodes the image at path and scans it.
func (p *Pipeline) ScanFile(ctx context.Context, path string) (*Receipt, error) {
	img, err := DecodeFile(path)
	if err != nil {
		return nil, err
	}
	return p.ScanImage(ctx, img)
}

// ScanImage runs the pipeline over an already decoded image.
func (p *Pipeline) ScanImage(ctx context.Context, img image.Image) (*Receipt, error) {
	start := time.Now()

	variants, err := p.preprocessor.Variants(img)
	if err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("preprocessing: %w", err)}
	}

	candidates, err := p.recognizeVariants(ctx, variants)
	if err != nil {
		return nil, err
	}

	best, ok := SelectBest(candidates)
	if !ok {
		return nil, errors.New("preprocessor produced no variants")
	}

	fields := extract.Extract(best.Lines, p.options)
	receipt := Assemble(best, fields, p.now())

	slog.Info("Scanned receipt",
		"variant", best.Variant,
		"profile", best.Profile.Name(),
		"score", best.Score,
		"lines", len(best.Lines),
		"items", len(receipt.Items),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return receipt, nil
}

// recognizeVariants returns one candidate per variant, in variant order
// regardless of completion order.
func (p *Pipeline) recognizeVariants(ctx context.Context, variants []Variant) ([]Candidate, error) {
	candidates := make([]Candidate, len(variants))

	if p.workers <= 1 {
		for i, v := range variants {
			c, err := p.recognizeVariant(ctx, v)
			if err != nil {
				return nil, err
			}
			candidates[i] = c
		}
		return candidates, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, v := range variants {
		g.Go(func() error {
			c, err := p.recognizeVariant(gctx, v)
			if err != nil {
				return err
			}
			candidates[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (p *Pipeline) recognizeVariant(ctx context.Context, v Variant) (Candidate, error) {
	r, err := RecognizeBest(ctx, p.recognizer, v.PNG, p.profiles)
	if err != nil {
		var rerr *RecognitionError
		if errors.As(err, &rerr) {
			rerr.Variant = v.Name
		}
		return Candidate{}, err
	}
	c := NewCandidate(v.Name, r)
	slog.Debug("Recognized variant",
		"variant", c.Variant,
		"profile", c.Profile.Name(),
		"lines", len(c.Lines),
		"score", c.Score,
	)
	return c, nil
}

// Close releases the recognizer and preprocessor when they hold resources.
func (p *Pipeline) Close() error {
	var errs []error
	if c, ok := p.recognizer.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := p.preprocessor.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
