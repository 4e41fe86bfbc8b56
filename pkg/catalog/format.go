package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// ErrMalformed is returned when a payload is not shaped like a search index.
var ErrMalformed = errors.New("malformed search index")

// maxIndexBytes caps the size of an index payload.
const maxIndexBytes = 64 << 20

type wireIndex struct {
	Entries *[]json.RawMessage `json:"entries"`
}

// Decode parses a search index payload. Entry order on the wire fixes
// identifier assignment.
func Decode(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxIndexBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read index payload: %w", err)
	}
	if len(data) > maxIndexBytes {
		return nil, fmt.Errorf("%w: payload exceeds %d bytes", ErrMalformed, maxIndexBytes)
	}
	return DecodeBytes(data)
}

// DecodeBytes parses an in-memory search index payload.
func DecodeBytes(data []byte) (*Index, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: payload is not a JSON object", ErrMalformed)
	}

	var wire wireIndex
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if wire.Entries == nil {
		return nil, fmt.Errorf("%w: missing \"entries\" array", ErrMalformed)
	}

	idx := &Index{Entries: make([]Entry, 0, len(*wire.Entries))}
	for i, raw := range *wire.Entries {
		entry, err := decodeEntry(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrMalformed, i, err)
		}
		idx.Entries = append(idx.Entries, entry)
	}
	return idx, nil
}

func decodeEntry(raw json.RawMessage) (Entry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return Entry{}, errors.New("entry is not an object")
	}
	var e Entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return Entry{}, err
	}
	if e.MediaType == MediaUnknown {
		return Entry{}, errors.New("missing media_type")
	}
	return e, nil
}
