// Package mathrender renders Typst math found in chat messages to PNG and
// keeps track of which replies should follow edits to their source message.
package mathrender

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"math"
	"time"

	"github.com/nfnt/resize"
	"github.com/pscheid92/nano/internal/metrics"
)

const (
	// DesiredResolution is the side of the square whose area a render aims for.
	DesiredResolution = 2000.0
	// MaxPageSize in points, per side.
	MaxPageSize       = 10000.0
	// MaxPixelsPerPoint stops tiny formulas from being blown up.
	MaxPixelsPerPoint = 15.0

	// probePPI is just enough resolution to measure the page.
	probePPI      = 18.0
	pointsPerInch = 72.0

	Filename = "Rendered.png"
)

var (
	ErrPageTooBig = errors.New("Page too big...")
	ErrNoPage     = errors.New("No pages found...")
)

// PixelsPerPoint picks the scale for a page of w by h points.
func PixelsPerPoint(w, h float64) (float64, error) {
	if w > MaxPageSize || h > MaxPageSize {
		return 0, ErrPageTooBig
	}
	if w <= 0 || h <= 0 {
		return 0, ErrNoPage
	}
	return math.Min(DesiredResolution/math.Sqrt(w*h), MaxPixelsPerPoint), nil
}

type Renderer struct {
	compiler Compiler
}

func NewRenderer(compiler Compiler) *Renderer {
	return &Renderer{compiler: compiler}
}

// Render compiles src below the preamble and returns a PNG. The page is
// measured with a cheap low resolution pass first, then rendered at the
// scale PixelsPerPoint picks and clamped to that pixel budget.
func (r *Renderer) Render(ctx context.Context, src string) ([]byte, error) {
	start := time.Now()
	out, err := r.render(ctx, Preamble+src)
	metrics.MathRenderDuration.Observe(time.Since(start).Seconds())
	metrics.MathRendersTotal.WithLabelValues(renderResult(err)).Inc()
	return out, err
}

func (r *Renderer) render(ctx context.Context, document string) ([]byte, error) {
	probe, err := r.compiler.Compile(ctx, document, probePPI)
	if err != nil {
		return nil, err
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(probe))
	if err != nil {
		return nil, ErrNoPage
	}

	scale := pointsPerInch / probePPI
	wPt, hPt := float64(cfg.Width)*scale, float64(cfg.Height)*scale
	ppp, err := PixelsPerPoint(wPt, hPt)
	if err != nil {
		return nil, err
	}

	raw, err := r.compiler.Compile(ctx, document, ppp*pointsPerInch)
	if err != nil {
		return nil, err
	}
	img, err := png.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode render: %w", err)
	}

	maxW := uint(math.Ceil(wPt * ppp))
	maxH := uint(math.Ceil(hPt * ppp))
	return encode(fit(img, maxW, maxH))
}

// fit shrinks img to fit within maxW by maxH, keeping its aspect ratio.
func fit(img image.Image, maxW, maxH uint) image.Image {
	b := img.Bounds()
	if uint(b.Dx()) <= maxW && uint(b.Dy()) <= maxH {
		return img
	}
	return resize.Thumbnail(maxW, maxH, img, resize.Lanczos3)
}

func encode(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode render: %w", err)
	}
	return buf.Bytes(), nil
}

func renderResult(err error) string {
	var srcErr *SourceError
	switch {
	case err == nil:
		return "success"
	case errors.As(err, &srcErr):
		return "source_error"
	case errors.Is(err, ErrPageTooBig):
		return "too_big"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	default:
		return "error"
	}
}
