package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/goliatone/go-blog/domain"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

var (
	ErrDirRequired   = errors.New("search: index directory required")
	ErrPostRequired  = errors.New("search: post with id required")
	ErrEmptyQuery    = errors.New("search: query has no searchable terms")
	ErrIndexDisabled = errors.New("search: index disabled by configuration")
)

// titleBoost weights a term hit in the title or tags over one in the body.
const titleBoost = 3

// Index is a Badger-backed inverted index over posts. It is safe for
// concurrent use; Badger serializes the write transactions.
type Index struct {
	db     *badger.DB
	dir    string
	logger interfaces.Logger
}

// Option configures an Index.
type Option func(*Index)

// WithLogger overrides the index logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// Open opens (or creates) the index database at dir.
func Open(dir string, opts ...Option) (*Index, error) {
	if dir == "" {
		return nil, ErrDirRequired
	}

	ix := &Index{
		dir:    dir,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(ix)
	}

	badgerOpts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithSyncWrites(false).
		WithNumVersionsToKeep(1)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("search: open index at %s: %w", dir, err)
	}
	ix.db = db

	return ix, nil
}

// Close releases the underlying database.
func (ix *Index) Close() error {
	return ix.db.Close()
}

// IndexPost writes (or rewrites) one post into the index. Stale postings
// from a previous version of the post are removed in the same transaction.
func (ix *Index) IndexPost(post *posts.Post) error {
	if post == nil || post.ID == uuid.Nil {
		return ErrPostRequired
	}

	doc, freqs := buildIndexedDocument(post)
	payload, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("search: encode document %s: %w", post.Slug, err)
	}

	err = ix.db.Update(func(txn *badger.Txn) error {
		if err := removeStalePostings(txn, doc.ID, doc.Terms); err != nil {
			return err
		}
		if err := txn.Set(docKey(doc.ID), payload); err != nil {
			return err
		}
		for _, term := range doc.Terms {
			posting, err := json.Marshal(postingValue{Freq: freqs[term]})
			if err != nil {
				return err
			}
			if err := txn.Set(postingKey(term, doc.ID), posting); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("search: index %s: %w", post.Slug, err)
	}

	ix.logger.Debug("search: indexed post",
		"slug", post.Slug,
		"terms", len(doc.Terms),
	)
	return nil
}

// Rebuild drops the whole index and re-indexes the given posts. Import and
// sync runs call this so the index tracks the store rather than drifting
// behind it.
func (ix *Index) Rebuild(ctx context.Context, items []*posts.Post) error {
	if err := ix.db.DropAll(); err != nil {
		return fmt.Errorf("search: drop index: %w", err)
	}

	indexed := 0
	for _, post := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		if post == nil {
			continue
		}
		if err := ix.IndexPost(post); err != nil {
			return err
		}
		indexed++
	}

	ix.logger.Info("search: index rebuilt", "posts", indexed)
	return nil
}

// indexedDocument is the stored per-post record. Terms carries every term
// the post was indexed under so a reindex can delete its own stale postings
// without scanning the keyspace.
type indexedDocument struct {
	ID     uuid.UUID     `json:"id"`
	Slug   string        `json:"slug"`
	Title  string        `json:"title"`
	Status domain.Status `json:"status"`
	Date   time.Time     `json:"date"`
	Plain  string        `json:"plain"`
	Terms  []string      `json:"terms"`
}

type postingValue struct {
	Freq int `json:"freq"`
}

func buildIndexedDocument(post *posts.Post) (indexedDocument, map[string]int) {
	freqs := make(map[string]int)
	for _, term := range tokenize(post.Body) {
		freqs[term]++
	}
	for _, term := range tokenize(post.Title) {
		freqs[term] += titleBoost
	}
	for _, tag := range post.Tags {
		for _, term := range tokenize(tag) {
			freqs[term] += titleBoost
		}
	}

	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	status := post.Status
	if post.EffectiveStatus != "" {
		status = post.EffectiveStatus
	}

	return indexedDocument{
		ID:     post.ID,
		Slug:   post.Slug,
		Title:  post.Title,
		Status: status,
		Date:   post.Date,
		Plain:  post.Body,
		Terms:  terms,
	}, freqs
}

// removeStalePostings deletes the postings recorded by the previous version
// of the document, skipping terms the new version still carries.
func removeStalePostings(txn *badger.Txn, id uuid.UUID, keep []string) error {
	item, err := txn.Get(docKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var previous indexedDocument
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &previous)
	}); err != nil {
		return err
	}

	kept := make(map[string]struct{}, len(keep))
	for _, term := range keep {
		kept[term] = struct{}{}
	}
	for _, term := range previous.Terms {
		if _, still := kept[term]; still {
			continue
		}
		if err := txn.Delete(postingKey(term, id)); err != nil {
			return err
		}
	}
	return nil
}

func docKey(id uuid.UUID) []byte {
	return []byte("doc:" + id.String())
}

func postingKey(term string, id uuid.UUID) []byte {
	return []byte("idx:" + term + ":" + id.String())
}

func termPrefix(term string) []byte {
	return []byte("idx:" + term + ":")
}
