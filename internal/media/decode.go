package media

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"os/exec"

	"github.com/disintegration/imaging"

	"mediafind/internal/logging"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// openImage decodes a source image, trying progressively heavier
// methods: imaging (with EXIF auto-orientation), the registered stdlib
// decoders, and finally an ffmpeg decode for formats Go has no decoder
// for (HEIC, AVIF, raw files).
func openImage(ctx context.Context, path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err == nil {
		return img, nil
	}
	logging.Debug("imaging.Open failed for %s: %v, trying fallback decoders", path, err)

	img, err = decodeImageFile(path)
	if err == nil {
		return img, nil
	}
	logging.Debug("Standard decode failed for %s: %v, trying ffmpeg", path, err)

	img, err = ffmpegFrame(ctx, path, false)
	if err != nil {
		return nil, fmt.Errorf("all image decode methods failed for %s: %w", path, err)
	}
	return img, nil
}

func decodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, err
	}
	logging.Debug("Decoded image format: %s for %s", format, path)
	return img, nil
}

// ffmpegFrame extracts a single frame from path via ffmpeg. With seek
// set, it grabs the frame at one second in (better than the usually
// black first frame of a video) and retries from the start when the
// clip is shorter than that.
func ffmpegFrame(ctx context.Context, path string, seek bool) (image.Image, error) {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}

	frame, err := runFFmpegFrame(ctx, path, seek)
	if err != nil && seek {
		logging.Debug("FFmpeg seek attempt failed for %s: %v, retrying from start", path, err)
		frame, err = runFFmpegFrame(ctx, path, false)
	}
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(frame))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ffmpeg output: %w", err)
	}
	return img, nil
}

func runFFmpegFrame(ctx context.Context, path string, seek bool) ([]byte, error) {
	args := []string{"-i", path}
	if seek {
		args = []string{"-ss", "00:00:01", "-i", path}
	}
	args = append(args, "-vframes", "1", "-f", "image2pipe", "-vcodec", "png", "-")

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %v, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("ffmpeg produced no output for %s", path)
	}
	return stdout.Bytes(), nil
}
