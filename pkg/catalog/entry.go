// Package catalog holds the entry store loaded from the static search index:
// the ordered catalog entries and their display labels.
package catalog

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// MediaType classifies an entry and drives result grouping.
type MediaType int

const (
	MediaUnknown MediaType = iota
	MediaMovie
	MediaSeries
	MediaEpisode
)

var mediaTypeNames = map[MediaType]string{
	MediaMovie:   "movie",
	MediaSeries:  "series",
	MediaEpisode: "episode",
}

// ParseMediaType maps the wire name to a MediaType.
func ParseMediaType(s string) (MediaType, error) {
	for t, name := range mediaTypeNames {
		if name == s {
			return t, nil
		}
	}
	return MediaUnknown, fmt.Errorf("unknown media type %q", s)
}

func (t MediaType) String() string {
	if name, ok := mediaTypeNames[t]; ok {
		return name
	}
	return "unknown"
}

// Label is the singular display name used on result items.
func (t MediaType) Label() string {
	switch t {
	case MediaMovie:
		return "Movie"
	case MediaSeries:
		return "Series"
	case MediaEpisode:
		return "Episode"
	}
	return ""
}

// SectionLabel is the plural heading of a result section.
func (t MediaType) SectionLabel() string {
	switch t {
	case MediaMovie:
		return "Movies"
	case MediaSeries:
		return "TV Series"
	case MediaEpisode:
		return "Episodes"
	}
	return ""
}

func (t MediaType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *MediaType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("media_type must be a string: %w", err)
	}
	parsed, err := ParseMediaType(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Entry is one catalog item. Its position in the Index is its identifier.
type Entry struct {
	Key       string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Meta      string    `json:"meta"`
	MediaType MediaType `json:"media_type"`
	Year      *int      `json:"year,omitempty"`
	URL       string    `json:"url"`
	PosterURL string    `json:"poster_url"`
}

// SearchText is the text fed to the text index for this entry.
func (e Entry) SearchText() string {
	if e.Meta == "" {
		return e.Title
	}
	return e.Title + " " + e.Meta
}

// TypeLabel renders the type and year descriptor, e.g. "Movie (2014)".
func (e Entry) TypeLabel() string {
	label := e.MediaType.Label()
	if e.Year != nil {
		label += " (" + strconv.Itoa(*e.Year) + ")"
	}
	return label
}

// Index is the ordered entry store for one session. It is never mutated
// after the loader publishes it.
type Index struct {
	Entries []Entry `json:"entries"`
}

// Len reports the number of entries.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Entries)
}

// At resolves an identifier. ok is false when id is out of range.
func (idx *Index) At(id int) (Entry, bool) {
	if idx == nil || id < 0 || id >= len(idx.Entries) {
		return Entry{}, false
	}
	return idx.Entries[id], true
}
