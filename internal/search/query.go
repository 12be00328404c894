package search

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-blog/domain"
)

const (
	defaultLimit  = 20
	snippetRadius = 8
)

// Query describes one search. Every term must match (AND semantics).
type Query struct {
	Text string
	// IncludeDrafts widens the result set beyond published posts.
	IncludeDrafts bool
	// Limit caps the result count; zero means the default of 20.
	Limit int
}

// Result is one scored hit.
type Result struct {
	ID      uuid.UUID     `json:"id"`
	Slug    string        `json:"slug"`
	Title   string        `json:"title"`
	Status  domain.Status `json:"status"`
	Date    time.Time     `json:"date"`
	Score   int           `json:"score"`
	Snippet string        `json:"snippet,omitempty"`
}

// Search runs the query against the index. Results come back ordered by
// score, then date (newest first), then slug.
func (ix *Index) Search(ctx context.Context, query Query) ([]Result, error) {
	terms := uniqueTerms(tokenize(query.Text))
	if len(terms) == 0 {
		return nil, ErrEmptyQuery
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultLimit
	}

	var results []Result
	err := ix.db.View(func(txn *badger.Txn) error {
		candidates, err := matchAllTerms(ctx, txn, terms)
		if err != nil {
			return err
		}

		for id, score := range candidates {
			doc, err := loadDocument(txn, id)
			if err != nil {
				// A posting without its document is an index torn mid-write;
				// the next rebuild heals it.
				continue
			}
			if !query.IncludeDrafts && doc.Status != domain.StatusPublished {
				continue
			}
			results = append(results, Result{
				ID:      doc.ID,
				Slug:    doc.Slug,
				Title:   doc.Title,
				Status:  doc.Status,
				Date:    doc.Date,
				Score:   score,
				Snippet: buildSnippet(doc.Plain, terms),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Date.Equal(results[j].Date) {
			return results[i].Date.After(results[j].Date)
		}
		return results[i].Slug < results[j].Slug
	})
	if len(results) > limit {
		results = results[:limit]
	}

	ix.logger.Debug("search: query served",
		"terms", strings.Join(terms, " "),
		"hits", len(results),
	)
	return results, nil
}

// matchAllTerms intersects the posting lists of every term, accumulating
// the summed frequency as the score. An empty posting list short-circuits.
func matchAllTerms(ctx context.Context, txn *badger.Txn, terms []string) (map[uuid.UUID]int, error) {
	var matched map[uuid.UUID]int
	for _, term := range terms {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		postings, err := scanTerm(txn, term)
		if err != nil {
			return nil, err
		}
		if len(postings) == 0 {
			return nil, nil
		}

		if matched == nil {
			matched = postings
			continue
		}
		for id, score := range matched {
			freq, ok := postings[id]
			if !ok {
				delete(matched, id)
				continue
			}
			matched[id] = score + freq
		}
		if len(matched) == 0 {
			return nil, nil
		}
	}
	return matched, nil
}

func scanTerm(txn *badger.Txn, term string) (map[uuid.UUID]int, error) {
	postings := make(map[uuid.UUID]int)
	prefix := termPrefix(term)

	it := txn.NewIterator(badger.DefaultIteratorOptions)
	defer it.Close()

	for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
		item := it.Item()
		id, err := uuid.Parse(string(item.Key()[len(prefix):]))
		if err != nil {
			continue
		}
		var value postingValue
		if err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, &value)
		}); err != nil {
			return nil, err
		}
		postings[id] = value.Freq
	}
	return postings, nil
}

func loadDocument(txn *badger.Txn, id uuid.UUID) (indexedDocument, error) {
	var doc indexedDocument
	item, err := txn.Get(docKey(id))
	if err != nil {
		return doc, err
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &doc)
	})
	return doc, err
}

// buildSnippet extracts a window of the original text around the first term
// hit, keeping the author's punctuation and casing. A title-only match falls
// back to the opening words.
func buildSnippet(plain string, terms []string) string {
	words := strings.Fields(plain)
	if len(words) == 0 {
		return ""
	}

	wanted := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		wanted[term] = struct{}{}
	}

	match := -1
	for i, word := range words {
		if wordMatches(word, wanted) {
			match = i
			break
		}
	}

	start, end := 0, min(len(words), 2*snippetRadius+1)
	if match >= 0 {
		start = max(0, match-snippetRadius)
		end = min(len(words), match+snippetRadius+1)
	}

	var b strings.Builder
	if start > 0 {
		b.WriteString("... ")
	}
	b.WriteString(strings.Join(words[start:end], " "))
	if end < len(words) {
		b.WriteString(" ...")
	}
	return b.String()
}

// wordMatches folds one raw word and reports whether any of its fragments
// is a wanted term; "Content-Type:" folds to "content" and "type".
func wordMatches(word string, wanted map[string]struct{}) bool {
	for _, part := range strings.Fields(foldText(word)) {
		if _, ok := wanted[part]; ok {
			return true
		}
	}
	return false
}
