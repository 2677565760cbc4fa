// Package preprocess renders alternative versions of a receipt photo so the
// recognizer gets several chances at poor lighting and low contrast.
package preprocess

import (
	"errors"
	"fmt"
	"image"

	"gocv.io/x/gocv"

	"github.com/zombor/receipt-ocr/internal/scanning"
)

// Variant names, in the order they are produced.
const (
	VariantGray      = "gray"
	VariantBilateral = "bilateral"
	VariantCLAHE     = "clahe"
	VariantOtsu      = "otsu"
	VariantOtsuInv   = "otsu_inv"
	VariantAdaptive  = "adaptive"
	VariantMorphOpen = "morph_open"
)

// Names lists every variant in production order.
var Names = []string{
	VariantGray,
	VariantBilateral,
	VariantCLAHE,
	VariantOtsu,
	VariantOtsuInv,
	VariantAdaptive,
	VariantMorphOpen,
}

// Settings are the tuning knobs of the variant filters.
type Settings struct {
	Scale float64

	BilateralDiameter int
	BilateralSigma    float64

	CLAHEClipLimit float64
	CLAHETileSize  int

	AdaptiveBlockSize int
	AdaptiveC         float32

	MorphKernelSize int
}

// DefaultSettings returns the filter parameters tuned for phone photos of
// thermal paper.
func DefaultSettings() Settings {
	return Settings{
		Scale:             2,
		BilateralDiameter: 7,
		BilateralSigma:    50,
		CLAHEClipLimit:    3.0,
		CLAHETileSize:     8,
		AdaptiveBlockSize: 31,
		AdaptiveC:         7,
		MorphKernelSize:   2,
	}
}

// OpenCV produces the variant set with gocv.
type OpenCV struct {
	settings Settings
}

// New creates an OpenCV preprocessor with default settings.
func New() *OpenCV {
	return NewWithSettings(DefaultSettings())
}

// NewWithSettings creates an OpenCV preprocessor with custom settings.
func NewWithSettings(s Settings) *OpenCV {
	return &OpenCV{settings: s}
}

// Variants upscales img, converts it to grayscale once, and derives every
// variant from that shared base. Each variant is encoded as PNG.
func (o *OpenCV) Variants(img image.Image) ([]scanning.Variant, error) {
	src, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("converting image to matrix: %w", err)
	}
	defer src.Close()
	if src.Empty() {
		return nil, errors.New("empty image")
	}

	up := gocv.NewMat()
	defer up.Close()
	gocv.Resize(src, &up, image.Point{}, o.settings.Scale, o.settings.Scale, gocv.InterpolationCubic)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(up, &gray, gocv.ColorBGRToGray)

	mats := make(map[string]gocv.Mat, len(Names))
	defer func() {
		for name, m := range mats {
			if name != VariantGray {
				m.Close()
			}
		}
	}()
	mats[VariantGray] = gray

	bilateral := gocv.NewMat()
	gocv.BilateralFilter(gray, &bilateral, o.settings.BilateralDiameter, o.settings.BilateralSigma, o.settings.BilateralSigma)
	mats[VariantBilateral] = bilateral

	tile := o.settings.CLAHETileSize
	clahe := gocv.NewCLAHEWithParams(o.settings.CLAHEClipLimit, image.Point{X: tile, Y: tile})
	defer clahe.Close()
	enhanced := gocv.NewMat()
	clahe.Apply(gray, &enhanced)
	mats[VariantCLAHE] = enhanced

	otsu := gocv.NewMat()
	gocv.Threshold(gray, &otsu, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	mats[VariantOtsu] = otsu

	otsuInv := gocv.NewMat()
	gocv.Threshold(gray, &otsuInv, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	mats[VariantOtsuInv] = otsuInv

	adaptive := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &adaptive, 255, gocv.AdaptiveThresholdGaussian, gocv.ThresholdBinary, o.settings.AdaptiveBlockSize, o.settings.AdaptiveC)
	mats[VariantAdaptive] = adaptive

	k := o.settings.MorphKernelSize
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(k, k))
	defer kernel.Close()
	opened := gocv.NewMat()
	gocv.MorphologyEx(otsu, &opened, gocv.MorphOpen, kernel)
	mats[VariantMorphOpen] = opened

	variants := make([]scanning.Variant, 0, len(Names))
	for _, name := range Names {
		data, err := encodePNG(mats[name])
		if err != nil {
			return nil, fmt.Errorf("encoding %s variant: %w", name, err)
		}
		variants = append(variants, scanning.Variant{Name: name, PNG: data})
	}
	return variants, nil
}

// encodePNG copies the encoded bytes out of the native buffer.
func encodePNG(m gocv.Mat) ([]byte, error) {
	buf, err := gocv.IMEncode(gocv.PNGFileExt, m)
	if err != nil {
		return nil, err
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...), nil
}
