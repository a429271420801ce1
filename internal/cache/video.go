package cache

import (
	"os"
	"path/filepath"
	"strings"

	"mediafind/internal/logging"
)

// video480pSuffix names pre-transcoded 480p renditions in the video
// cache: {basename-without-ext}_480p.mp4.
const video480pSuffix = "_480p.mp4"

// VideoStore resolves pre-transcoded video renditions. It never
// transcodes; renditions are produced out of band (see the
// transcode480p utility) and dropped into the store directory.
type VideoStore struct {
	root string
}

// NewVideoStore creates a VideoStore rooted at root, creating the
// directory if needed.
func NewVideoStore(root string) (*VideoStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &VideoStore{root: root}, nil
}

// RenditionName maps a media path to its expected 480p rendition file
// name. Only the base name of the media path participates, so the store
// directory stays flat.
func RenditionName(mediaPath string) string {
	base := filepath.Base(filepath.FromSlash(mediaPath))
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return stem + video480pSuffix
}

// Resolve480p returns the path of the 480p rendition for mediaPath, or
// ErrNotFound when none has been transcoded yet.
func (s *VideoStore) Resolve480p(mediaPath string) (string, error) {
	path := filepath.Join(s.root, RenditionName(mediaPath))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		logging.Debug("No 480p rendition for %s", mediaPath)
		return "", ErrNotFound
	}
	return path, nil
}
