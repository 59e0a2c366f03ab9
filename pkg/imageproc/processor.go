// Package imageproc normalises uploaded and TMDb images into resized WebP.
package imageproc

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"watch-list/pkg/utils"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

const ContentType = "image/webp"

// MaxPixels bounds the decoded canvas. A small file can declare a huge one.
const MaxPixels = 40_000_000

var ErrUnsupportedImage = errors.New("unsupported or corrupt image")

type Processor struct {
	quality   int
	maxPixels int
	widths    map[string]int
}

func NewProcessor(cfg utils.ImageConfig) *Processor {
	return &Processor{
		quality:   cfg.Quality,
		maxPixels: MaxPixels,
		widths: map[string]int{
			"poster":   cfg.PosterMaxWidth,
			"backdrop": cfg.BackdropMaxWidth,
			"profile":  cfg.ProfileMaxWidth,
		},
	}
}

// MaxWidth returns the width cap for an image kind, 0 meaning no cap.
func (p *Processor) MaxWidth(kind string) int {
	return p.widths[kind]
}

// Process decodes data, shrinks it to the kind's max width keeping the
// aspect ratio and re-encodes it as WebP. Images are never upscaled.
func (p *Processor) Process(data []byte, kind string) ([]byte, error) {
	if err := p.checkDimensions(data); err != nil {
		return nil, err
	}

	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	if maxWidth := p.MaxWidth(kind); maxWidth > 0 && img.Bounds().Dx() > maxWidth {
		img = imaging.Resize(img, maxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: float32(p.quality)}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

// checkDimensions reads only the header so oversized canvases are refused
// before any pixel buffer is allocated.
func (p *Processor) checkDimensions(data []byte) error {
	var (
		cfg image.Config
		err error
	)
	if isWebP(data) {
		cfg, err = webp.DecodeConfig(bytes.NewReader(data))
	} else {
		cfg, _, err = image.DecodeConfig(bytes.NewReader(data))
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > int64(p.maxPixels) {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, p.maxPixels)
	}
	return nil
}

func decode(data []byte) (image.Image, error) {
	if isWebP(data) {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
		}
		return img, nil
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	return img, nil
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WEBP"
}
