package textindex

import (
	"sort"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

type posting struct {
	id  int
	pos int
}

type postingList struct {
	hits []posting
}

// PrefixEngine is a forward-tokenizing engine: every indexed token is a trie
// key, and a query term matches all tokens it is a prefix of.
//
// Add must not run concurrently with Search. The loader populates the engine
// fully before publishing it, after which it is read-only.
type PrefixEngine struct {
	trie      *patricia.Trie
	documents int
	tokens    int
}

func NewPrefixEngine() *PrefixEngine {
	return &PrefixEngine{
		trie: patricia.NewTrie(),
	}
}

func (e *PrefixEngine) Add(id int, text string) {
	for pos, tok := range Tokenize(text) {
		key := patricia.Prefix(tok)
		if item := e.trie.Get(key); item != nil {
			pl := item.(*postingList)
			pl.hits = append(pl.hits, posting{id: id, pos: pos})
		} else {
			e.trie.Insert(key, &postingList{hits: []posting{{id: id, pos: pos}}})
		}
		e.tokens++
	}
	e.documents++
}

// termScore favours exact token matches and tokens near the start of the
// text, where the title sits.
func termScore(exact bool, pos int) float64 {
	score := 1.0 / float64(pos+1)
	if exact {
		score += 1.0
	}
	return score
}

// Search matches every query term as a prefix (AND across terms) and ranks
// by summed term scores. Equal scores keep ascending id order.
func (e *PrefixEngine) Search(query string, limit int) []int {
	terms := Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	var scores map[int]float64
	for i, term := range terms {
		best := make(map[int]float64)
		err := e.trie.VisitSubtree(patricia.Prefix(term), func(p patricia.Prefix, item patricia.Item) error {
			exact := len(p) == len(term)
			for _, hit := range item.(*postingList).hits {
				if s := termScore(exact, hit.pos); s > best[hit.id] {
					best[hit.id] = s
				}
			}
			return nil
		})
		if err != nil {
			log.Errorf("Error visiting trie subtree for %q: %v", term, err)
			return nil
		}

		if i == 0 {
			scores = best
			continue
		}
		for id := range scores {
			if s, ok := best[id]; ok {
				scores[id] += s
			} else {
				delete(scores, id)
			}
		}
	}

	ids := make([]int, 0, len(scores))
	for id := range scores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

func (e *PrefixEngine) Stats() map[string]int {
	terms := 0
	_ = e.trie.Visit(func(_ patricia.Prefix, _ patricia.Item) error {
		terms++
		return nil
	})
	return map[string]int{
		"documents": e.documents,
		"tokens":    e.tokens,
		"terms":     terms,
	}
}
