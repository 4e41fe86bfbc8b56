package search

import (
	"github.com/bastiangx/nascast/pkg/catalog"
	"github.com/charmbracelet/log"
)

// DefaultEpisodeCap bounds the episodes bucket for display.
const DefaultEpisodeCap = 10

// GroupedResult partitions one query's ranked entries by media type.
// It is rebuilt per query and discarded once rendered or superseded.
type GroupedResult struct {
	Movies   []catalog.Entry
	Series   []catalog.Entry
	Episodes []catalog.Entry
}

// Section is one non-empty bucket in display order.
type Section struct {
	Type    catalog.MediaType
	Entries []catalog.Entry
}

// Label is the section header, e.g. "Movies".
func (s Section) Label() string {
	return s.Type.SectionLabel()
}

func (g GroupedResult) Len() int {
	return len(g.Movies) + len(g.Series) + len(g.Episodes)
}

func (g GroupedResult) Empty() bool {
	return g.Len() == 0
}

// Sections returns the non-empty buckets ordered movies, series, episodes.
func (g GroupedResult) Sections() []Section {
	var out []Section
	for _, s := range []Section{
		{Type: catalog.MediaMovie, Entries: g.Movies},
		{Type: catalog.MediaSeries, Entries: g.Series},
		{Type: catalog.MediaEpisode, Entries: g.Episodes},
	} {
		if len(s.Entries) > 0 {
			out = append(out, s)
		}
	}
	return out
}

// Group resolves ids against idx and buckets them by media type, keeping the
// ranked order inside each bucket. Out-of-range ids are logged and skipped.
// Episodes are truncated to episodeCap after classification; a cap <= 0
// disables truncation.
func Group(ids []int, idx *catalog.Index, episodeCap int, logger *log.Logger) GroupedResult {
	if logger == nil {
		logger = log.Default()
	}

	var g GroupedResult
	for _, id := range ids {
		entry, ok := idx.At(id)
		if !ok {
			logger.Warnf("Skipping entry id %d: outside index of %d entries", id, idx.Len())
			continue
		}
		switch entry.MediaType {
		case catalog.MediaMovie:
			g.Movies = append(g.Movies, entry)
		case catalog.MediaSeries:
			g.Series = append(g.Series, entry)
		case catalog.MediaEpisode:
			g.Episodes = append(g.Episodes, entry)
		default:
			logger.Warnf("Skipping entry id %d: unknown media type", id)
		}
	}

	if episodeCap > 0 && len(g.Episodes) > episodeCap {
		logger.Debugf("Truncating %d episodes to %d", len(g.Episodes), episodeCap)
		g.Episodes = g.Episodes[:episodeCap]
	}
	return g
}
