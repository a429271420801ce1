// Package xmp extracts searchable metadata from XMP sidecar files.
//
// Extraction is deliberately narrow: only the modification date, the
// digiKam tag list, and the Dublin Core title are pulled out, as flat
// key-value entries ready for the metadata index. Parsing never touches
// the filesystem; callers hand in the sidecar bytes.
package xmp
