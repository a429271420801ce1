package media

import (
	"path/filepath"
	"strings"
)

// Kind classifies a media file by its extension.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
	KindOther Kind = "other"
)

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".tiff": true, ".tif": true,
	".heic": true, ".heif": true, ".avif": true, ".jxl": true,
	".raw": true, ".cr2": true, ".nef": true, ".arw": true, ".dng": true,
}

var videoExts = map[string]bool{
	".mp4": true, ".mkv": true, ".avi": true, ".mov": true,
	".wmv": true, ".flv": true, ".webm": true, ".m4v": true,
	".mpeg": true, ".mpg": true, ".3gp": true, ".ts": true,
}

// KindOf returns the media kind of a path based on its extension.
func KindOf(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case imageExts[ext]:
		return KindImage
	case videoExts[ext]:
		return KindVideo
	default:
		return KindOther
	}
}

// VideoExtensions returns the recognized video file extensions.
func VideoExtensions() []string {
	exts := make([]string, 0, len(videoExts))
	for ext := range videoExts {
		exts = append(exts, ext)
	}
	return exts
}
