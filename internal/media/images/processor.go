// Package images prepares uploaded paint photos for inline storage:
// decode, bound the dimensions, re-encode as JPEG, and compute a
// BlurHash placeholder. The original upload is never kept.
package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // Register GIF decoder
	"image/jpeg"
	_ "image/png" // Register PNG decoder
	"log/slog"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder

	"github.com/swatchbookapp/swatchbook-server/internal/domain"
)

// ErrInvalidImage is returned when an upload does not decode as any
// supported image format.
var ErrInvalidImage = errors.New("data does not decode as an image")

const (
	// maxDimension bounds the longest side of a stored photo. Paint
	// swatch photos are reference shots, not archival scans.
	maxDimension = 1024

	jpegQuality = 85
)

// Processor converts uploaded image bytes into storable paint photos.
type Processor struct {
	logger *slog.Logger
}

// NewProcessor creates a new Processor instance.
func NewProcessor(logger *slog.Logger) *Processor {
	return &Processor{logger: logger}
}

// Process decodes an upload, scales it down to the dimension bound when
// needed, and re-encodes it as JPEG. Accepts JPEG, PNG, GIF, and WebP
// input. The filename is kept for display only.
func (p *Processor) Process(data []byte, filename string) (*domain.PaintPhoto, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxDimension || bounds.Dy() > maxDimension {
		img = scaleDown(img, maxDimension)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	hash, err := ComputeBlurHash(img)
	if err != nil {
		// A photo without a placeholder is still a photo.
		if p.logger != nil {
			p.logger.Warn("blurhash computation failed", "filename", filename, "error", err)
		}
		hash = ""
	}

	if p.logger != nil {
		p.logger.Debug("processed paint photo",
			"filename", filename,
			"input_format", format,
			"input_bytes", len(data),
			"stored_bytes", buf.Len(),
			"width", bounds.Dx(),
			"height", bounds.Dy(),
		)
	}

	return &domain.PaintPhoto{
		Data:     buf.Bytes(),
		Filename: filepath.Base(filename),
		MimeType: "image/jpeg",
		BlurHash: hash,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
	}, nil
}

// scaleDown resizes img so its longest side equals bound, preserving
// aspect ratio.
func scaleDown(img image.Image, bound int) image.Image {
	bounds := img.Bounds()
	srcWidth := bounds.Dx()
	srcHeight := bounds.Dy()

	var dstWidth, dstHeight int
	if srcWidth > srcHeight {
		dstWidth = bound
		dstHeight = (srcHeight * bound) / srcWidth
		if dstHeight < 1 {
			dstHeight = 1
		}
	} else {
		dstHeight = bound
		dstWidth = (srcWidth * bound) / srcHeight
		if dstWidth < 1 {
			dstWidth = 1
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, dstWidth, dstHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, draw.Src, nil)
	return dst
}
