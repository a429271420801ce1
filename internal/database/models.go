package database

import "time"

// SidecarFile is one indexed sidecar row.
type SidecarFile struct {
	ID          int64
	Path        string
	Fingerprint string
	UpdatedAt   time.Time
}

// SearchMatch is one search result. SidecarPath is the indexed sidecar,
// MediaPath the media file it describes (the sidecar path with its .xmp
// suffix removed), and Value a representative metadata value that
// matched the query.
type SearchMatch struct {
	SidecarPath string `json:"sidecarPath"`
	MediaPath   string `json:"mediaPath"`
	Value       string `json:"value"`
}

// IndexStats summarizes the state of the metadata index.
type IndexStats struct {
	SidecarCount int64     `json:"sidecarCount"`
	EntryCount   int64     `json:"entryCount"`
	KeyCount     int64     `json:"keyCount"`
	LastUpdated  time.Time `json:"lastUpdated"`
}
