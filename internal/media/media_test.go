package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func writeTestImage(t *testing.T, name string, width, height int) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}

	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create test image: %v", err)
	}
	defer f.Close()

	switch filepath.Ext(name) {
	case ".png":
		err = png.Encode(f, img)
	default:
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 90})
	}
	if err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return path
}

func decodeJPEG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Output is not valid JPEG: %v", err)
	}
	return img
}

func TestThumbnail(t *testing.T) {
	src := writeTestImage(t, "photo.jpg", 800, 600)

	var buf bytes.Buffer
	if err := Thumbnail(context.Background(), src, &buf); err != nil {
		t.Fatalf("Thumbnail() failed: %v", err)
	}

	thumb := decodeJPEG(t, buf.Bytes())
	bounds := thumb.Bounds()
	if bounds.Dx() > thumbnailSize || bounds.Dy() > thumbnailSize {
		t.Errorf("thumbnail is %dx%d, want both dimensions <= %d", bounds.Dx(), bounds.Dy(), thumbnailSize)
	}
	// Fit preserves aspect ratio: 800x600 -> 200x150.
	if bounds.Dx() != 200 || bounds.Dy() != 150 {
		t.Errorf("thumbnail is %dx%d, want 200x150", bounds.Dx(), bounds.Dy())
	}
}

func TestThumbnailPNGSource(t *testing.T) {
	src := writeTestImage(t, "photo.png", 400, 400)

	var buf bytes.Buffer
	if err := Thumbnail(context.Background(), src, &buf); err != nil {
		t.Fatalf("Thumbnail() failed for PNG source: %v", err)
	}
	decodeJPEG(t, buf.Bytes())
}

func TestThumbnailMissingSource(t *testing.T) {
	var buf bytes.Buffer
	err := Thumbnail(context.Background(), filepath.Join(t.TempDir(), "missing.jpg"), &buf)
	if err == nil {
		t.Fatal("Thumbnail() succeeded for missing source")
	}
}

func TestPreview(t *testing.T) {
	src := writeTestImage(t, "photo.jpg", 2400, 1200)

	var buf bytes.Buffer
	if err := Preview(context.Background(), src, &buf); err != nil {
		t.Fatalf("Preview() failed: %v", err)
	}

	preview := decodeJPEG(t, buf.Bytes())
	bounds := preview.Bounds()
	if bounds.Dx() != previewSize || bounds.Dy() != previewSize/2 {
		t.Errorf("preview is %dx%d, want %dx%d", bounds.Dx(), bounds.Dy(), previewSize, previewSize/2)
	}
}

func TestPreviewSmallSourceNotUpscaled(t *testing.T) {
	src := writeTestImage(t, "small.jpg", 320, 240)

	var buf bytes.Buffer
	if err := Preview(context.Background(), src, &buf); err != nil {
		t.Fatalf("Preview() failed: %v", err)
	}

	preview := decodeJPEG(t, buf.Bytes())
	bounds := preview.Bounds()
	if bounds.Dx() > 320 || bounds.Dy() > 240 {
		t.Errorf("preview is %dx%d, small sources must not be upscaled", bounds.Dx(), bounds.Dy())
	}
}

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want Kind
	}{
		{"a.jpg", KindImage},
		{"a.JPEG", KindImage},
		{"dir/b.webp", KindImage},
		{"c.heic", KindImage},
		{"d.mp4", KindVideo},
		{"e.MKV", KindVideo},
		{"f.txt", KindOther},
		{"noext", KindOther},
	}
	for _, tt := range tests {
		if got := KindOf(tt.path); got != tt.want {
			t.Errorf("KindOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
