package emotion

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
)

// MaxImageSize is the largest upload accepted for detection.
const MaxImageSize = 5 << 20 // 5 MB

// ImageInfo describes a validated upload.
type ImageInfo struct {
	Format string
	Width  int
	Height int
}

// InspectImage checks that data is a decodable JPEG, PNG or GIF without
// decoding the full pixel buffer.
func InspectImage(data []byte) (ImageInfo, error) {
	if len(data) == 0 {
		return ImageInfo{}, fmt.Errorf("%w: empty upload", ErrInvalidImage)
	}
	if len(data) > MaxImageSize {
		return ImageInfo{}, fmt.Errorf("%w: larger than %d bytes", ErrInvalidImage, MaxImageSize)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ImageInfo{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return ImageInfo{}, fmt.Errorf("%w: zero dimensions", ErrInvalidImage)
	}

	return ImageInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
