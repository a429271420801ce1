package media

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"

	"mediafind/internal/logging"
)

const (
	thumbnailSize    = 200
	thumbnailQuality = 80

	previewSize    = 1600
	previewQuality = 85
)

// Thumbnail generates a small JPEG thumbnail of sourcePath and writes it
// to w. Video sources get a frame extracted via ffmpeg; image sources
// are decoded directly. Satisfies cache.GenerateFunc.
func Thumbnail(ctx context.Context, sourcePath string, w io.Writer) error {
	img, err := loadSource(ctx, sourcePath, thumbnailSize)
	if err != nil {
		return err
	}

	thumb := imaging.Fit(img, thumbnailSize, thumbnailSize, imaging.Lanczos)
	if err := jpeg.Encode(w, thumb, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return nil
}

// Preview generates a screen-sized JPEG preview of sourcePath and
// writes it to w. Satisfies cache.GenerateFunc.
func Preview(ctx context.Context, sourcePath string, w io.Writer) error {
	img, err := loadSource(ctx, sourcePath, previewSize)
	if err != nil {
		return err
	}

	preview := imaging.Fit(img, previewSize, previewSize, imaging.Lanczos)
	if err := jpeg.Encode(w, preview, &jpeg.Options{Quality: previewQuality}); err != nil {
		return fmt.Errorf("failed to encode preview: %w", err)
	}
	return nil
}

// loadSource decodes a source file into an image, sized roughly for a
// targetSize derivative. Images go through the vips fast path when
// available (decode-time shrinking keeps memory flat on large photos),
// then the portable decoders. Videos always go through ffmpeg.
func loadSource(ctx context.Context, sourcePath string, targetSize int) (image.Image, error) {
	switch KindOf(sourcePath) {
	case KindVideo:
		return ffmpegFrame(ctx, sourcePath, true)
	case KindImage, KindOther:
		if IsVipsAvailable() {
			img, err := loadImageWithVips(sourcePath, targetSize, targetSize)
			if err == nil {
				return img, nil
			}
			logging.Debug("vips load failed for %s: %v, falling back", sourcePath, err)
		}
		return openImage(ctx, sourcePath)
	}
	return nil, fmt.Errorf("unsupported media kind for %s", sourcePath)
}
