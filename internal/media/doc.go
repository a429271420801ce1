// Package media generates image derivatives: 200px thumbnails and
// 1600px previews, both JPEG. Decoding prefers libvips for its
// decode-time shrinking, falls back to pure-Go decoders, and uses
// ffmpeg for video frames and exotic image formats.
package media
