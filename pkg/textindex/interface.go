// Package textindex is the text index adapter: it owns the mapping from entry
// position to searchable text and fronts a tokenize-and-rank engine.
package textindex

// Engine is the external full-text capability the adapter delegates to.
type Engine interface {
	// Add indexes text under id.
	Add(id int, text string)

	// Search returns at most limit ids ordered by relevance.
	// A limit <= 0 means no limit.
	Search(query string, limit int) []int
}
