package llm

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"math"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/capitalize-ai/legal-assistant/internal/model"
	"github.com/capitalize-ai/legal-assistant/pkg/metrics"
)

// maxSourcePixels bounds the decoded size of an input image.
const maxSourcePixels = 50_000_000

var (
	ErrEmptyImage   = errors.New("image has no pixels")
	ErrImageTooBig  = errors.New("image is too large to decode")
	ErrBadDimension = errors.New("computed image size is invalid")
)

// ImageOptions controls downscaling and JPEG quality.
type ImageOptions struct {
	MaxDimension int
	// Quality is used when the source width is at most CompressionThreshold,
	// CompressedQuality above it.
	Quality              int
	CompressedQuality    int
	CompressionThreshold int
}

// DefaultImageOptions mirrors the shipped configuration defaults.
func DefaultImageOptions() ImageOptions {
	return ImageOptions{
		MaxDimension:         1024,
		Quality:              80,
		CompressedQuality:    50,
		CompressionThreshold: 1000,
	}
}

// EncodedImage is a JPEG ready to be embedded in a request.
type EncodedImage struct {
	Width        int
	Height       int
	SourceWidth  int
	SourceHeight int
	Quality      int
	Data         []byte
}

// DataURI returns the image as a base64 data URI.
func (e *EncodedImage) DataURI() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(e.Data)
}

// CompressImage decodes data (JPEG, PNG, GIF or WebP), downsizes it so no
// side exceeds MaxDimension and re-encodes it as JPEG.
func CompressImage(data []byte, opts ImageOptions) (*EncodedImage, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, imageError(fmt.Errorf("failed to read image header: %w", err))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, imageError(ErrEmptyImage)
	}
	if cfg.Width*cfg.Height > maxSourcePixels {
		return nil, imageError(ErrImageTooBig)
	}

	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, imageError(fmt.Errorf("failed to decode image: %w", err))
	}
	return compress(src, opts)
}

func compress(src image.Image, opts ImageOptions) (*EncodedImage, error) {
	bounds := src.Bounds()
	sw, sh := bounds.Dx(), bounds.Dy()
	if sw <= 0 || sh <= 0 {
		return nil, imageError(ErrEmptyImage)
	}

	w, h, err := scaledSize(sw, sh, opts.MaxDimension)
	if err != nil {
		return nil, imageError(err)
	}

	out := src
	if w != sw || h != sh {
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Src, nil)
		out = dst
	}

	quality := opts.Quality
	if sw > opts.CompressionThreshold {
		quality = opts.CompressedQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: quality}); err != nil {
		return nil, imageError(fmt.Errorf("failed to encode jpeg: %w", err))
	}
	metrics.ImageBytes.Observe(float64(buf.Len()))

	return &EncodedImage{
		Width:        w,
		Height:       h,
		SourceWidth:  sw,
		SourceHeight: sh,
		Quality:      quality,
		Data:         buf.Bytes(),
	}, nil
}

// scaledSize fits w x h inside a limit x limit box keeping the aspect
// ratio. Images already small enough keep their size.
func scaledSize(w, h, limit int) (int, int, error) {
	if w <= 0 || h <= 0 || limit <= 0 {
		return 0, 0, ErrBadDimension
	}
	if w <= limit && h <= limit {
		return w, h, nil
	}

	scale := math.Min(float64(limit)/float64(w), float64(limit)/float64(h))
	if math.IsNaN(scale) || math.IsInf(scale, 0) || scale <= 0 {
		return 0, 0, ErrBadDimension
	}

	nw := clamp(int(math.Round(float64(w)*scale)), 1, limit)
	nh := clamp(int(math.Round(float64(h)*scale)), 1, limit)
	return nw, nh, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func imageError(err error) error {
	return model.NewError(model.KindImageProcessingFailure, err)
}
