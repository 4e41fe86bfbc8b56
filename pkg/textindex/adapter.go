package textindex

import (
	"sync/atomic"

	"github.com/charmbracelet/log"
)

// Adapter fronts an Engine for one session. Entries are added by position
// while loading; Search answers only after MarkReady.
type Adapter struct {
	engine Engine
	texts  []string
	ready  atomic.Bool
}

func NewAdapter(engine Engine) *Adapter {
	if engine == nil {
		engine = NewPrefixEngine()
	}
	return &Adapter{engine: engine}
}

// Add feeds the searchable text of the entry at position id.
// Adds after MarkReady are ignored: a published index is immutable.
func (a *Adapter) Add(id int, text string) {
	if a.ready.Load() {
		log.Warnf("Ignoring add for id %d: index already published", id)
		return
	}
	if id < 0 {
		log.Warnf("Ignoring add for negative id %d", id)
		return
	}
	for len(a.texts) <= id {
		a.texts = append(a.texts, "")
	}
	a.texts[id] = text
	a.engine.Add(id, text)
}

// MarkReady publishes the adapter for searching.
func (a *Adapter) MarkReady() {
	a.ready.Store(true)
}

func (a *Adapter) Ready() bool {
	return a.ready.Load()
}

// Search returns ranked entry ids, or nil before the adapter is ready.
func (a *Adapter) Search(query string, limit int) []int {
	if !a.ready.Load() {
		return nil
	}
	ids := a.engine.Search(query, limit)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// Text returns the searchable text stored for id.
func (a *Adapter) Text(id int) (string, bool) {
	if id < 0 || id >= len(a.texts) {
		return "", false
	}
	return a.texts[id], true
}

// Len reports the number of positions fed to the adapter.
func (a *Adapter) Len() int {
	return len(a.texts)
}

func (a *Adapter) Stats() map[string]int {
	stats := map[string]int{
		"entries": len(a.texts),
		"ready":   0,
	}
	if a.ready.Load() {
		stats["ready"] = 1
	}
	if s, ok := a.engine.(interface{ Stats() map[string]int }); ok {
		for k, v := range s.Stats() {
			stats[k] = v
		}
	}
	return stats
}
