package xmp

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"
	"strings"
)

// Canonical keys emitted by Extract. These are the only keys the index
// stores; everything else in a sidecar is dropped.
const (
	// KeyModifyDate is the sidecar modification timestamp. Always emitted,
	// with an empty value when the sidecar carries none.
	KeyModifyDate = "xmp:ModifyDate"
	// KeyTagsList is the shared key for tag entries, one entry per tag.
	KeyTagsList = "digiKam:TagsList"
	// KeyTitle is the media title.
	KeyTitle = "dc:title"
)

// Entry is a single extracted key-value pair.
type Entry struct {
	Key   string
	Value string
}

// ParseError indicates a malformed sidecar. Callers should skip the file
// for this run and leave any previously indexed entries untouched.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return "malformed sidecar: " + e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// IsParseError reports whether err is (or wraps) a ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// Extract parses XMP sidecar bytes and returns the recognized metadata as
// an ordered list of entries: the modification timestamp first, then one
// entry per tag, then the title (when present). It is a pure function and
// performs no I/O.
//
// Recognized fields:
//   - xmp:ModifyDate, either as an rdf:Description attribute or an element
//   - digiKam:TagsList rdf:Seq items
//   - dc:title rdf:Alt items (multiple items are joined with ";")
//
// Namespaces are matched on local names so sidecars written with either
// declared namespace URIs or bare prefixes both parse. Malformed XML
// yields a *ParseError.
func Extract(data []byte) ([]Entry, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var (
		modifyDate string
		tags       []string
		titles     []string

		stack   []string
		inTags  bool
		inSeq   bool
		inTitle bool
		inAlt   bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ParseError{Err: err}
		}

		switch t := tok.(type) {
		case xml.StartElement:
			local := t.Name.Local
			stack = append(stack, local)

			switch {
			case local == "TagsList":
				inTags = true
			case inTags && local == "Seq":
				inSeq = true
			case local == "title":
				inTitle = true
			case inTitle && local == "Alt":
				inAlt = true
			}

			if modifyDate == "" {
				for _, attr := range t.Attr {
					if attr.Name.Local == "ModifyDate" {
						modifyDate = attr.Value
					}
				}
			}

		case xml.CharData:
			text := strings.TrimSpace(string(t))
			if text == "" || len(stack) == 0 {
				continue
			}
			current := stack[len(stack)-1]
			switch {
			case inTags && inSeq && current == "li":
				tags = append(tags, text)
			case inTitle && inAlt && current == "li":
				titles = append(titles, text)
			case current == "ModifyDate" && modifyDate == "":
				modifyDate = text
			}

		case xml.EndElement:
			local := t.Name.Local
			switch {
			case inSeq && local == "Seq":
				inSeq = false
			case inTags && local == "TagsList":
				inTags = false
			case inAlt && local == "Alt":
				inAlt = false
			case inTitle && local == "title":
				inTitle = false
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}

	entries := make([]Entry, 0, len(tags)+2)
	entries = append(entries, Entry{Key: KeyModifyDate, Value: modifyDate})
	for _, tag := range tags {
		entries = append(entries, Entry{Key: KeyTagsList, Value: tag})
	}
	if len(titles) > 0 {
		entries = append(entries, Entry{Key: KeyTitle, Value: strings.Join(titles, ";")})
	}

	return entries, nil
}
