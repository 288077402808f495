package coin

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/taigrr/coinring/pkg/remap"
)

// Source produces the flat coin image a texture is remapped from.
type Source interface {
	Load(ctx context.Context) (*remap.PixelBuffer, error)
}

// FileSource decodes an image file. PNG, JPEG, GIF, BMP, TIFF and WebP are
// recognized by content.
type FileSource string

func (f FileSource) Load(ctx context.Context) (*remap.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file, err := os.Open(string(f))
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	Logger().Debug("source decoded", "path", string(f), "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())
	return remap.FromImage(img)
}

func (f FileSource) String() string { return string(f) }

// ImageSource wraps an image already in memory.
type ImageSource struct {
	Image image.Image
}

func (s ImageSource) Load(ctx context.Context) (*remap.PixelBuffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.Image == nil {
		return nil, &remap.InvalidBufferError{Reason: "nil image"}
	}
	return remap.FromImage(s.Image)
}
