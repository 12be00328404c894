package post

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryPostRepository is an in-memory implementation for scaffolding and tests.
type MemoryPostRepository struct {
	mu        sync.RWMutex
	posts     map[uuid.UUID]*Post
	slugIndex map[string]uuid.UUID
	versions  map[uuid.UUID][]*PostVersion
}

var _ PostRepository = (*MemoryPostRepository)(nil)

// NewMemoryPostRepository creates an empty in-memory post repository.
func NewMemoryPostRepository() *MemoryPostRepository {
	return &MemoryPostRepository{
		posts:     make(map[uuid.UUID]*Post),
		slugIndex: make(map[string]uuid.UUID),
		versions:  make(map[uuid.UUID][]*PostVersion),
	}
}

// Create inserts the supplied post.
func (m *MemoryPostRepository) Create(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := clonePost(record)
	m.posts[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePost(copied), nil
}

// GetByID retrieves a post by identifier.
func (m *MemoryPostRepository) GetByID(_ context.Context, id uuid.UUID) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.posts[id]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: id.String()}
	}
	return clonePost(rec), nil
}

// GetBySlug retrieves a post by slug, returning NotFoundError when absent.
func (m *MemoryPostRepository) GetBySlug(_ context.Context, slug string) (*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.slugIndex[slug]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: slug}
	}
	return clonePost(m.posts[id]), nil
}

// List returns all post entries.
func (m *MemoryPostRepository) List(_ context.Context) ([]*Post, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Post, 0, len(m.posts))
	for _, rec := range m.posts {
		out = append(out, clonePost(rec))
	}
	return out, nil
}

// Update replaces a stored post, keeping the slug index consistent.
func (m *MemoryPostRepository) Update(_ context.Context, record *Post) (*Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.posts[record.ID]
	if !ok {
		return nil, &NotFoundError{Resource: "post", Key: record.ID.String()}
	}
	if existing.Slug != record.Slug {
		delete(m.slugIndex, existing.Slug)
	}

	copied := clonePost(record)
	m.posts[copied.ID] = copied
	m.slugIndex[copied.Slug] = copied.ID
	return clonePost(copied), nil
}

// CreateVersion appends a version snapshot for a post.
func (m *MemoryPostRepository) CreateVersion(_ context.Context, version *PostVersion) (*PostVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneVersion(version)
	m.versions[copied.PostID] = append(m.versions[copied.PostID], copied)
	return cloneVersion(copied), nil
}

// ListVersions returns all versions for a post ordered by version number.
func (m *MemoryPostRepository) ListVersions(_ context.Context, postID uuid.UUID) ([]*PostVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.versions[postID]
	out := make([]*PostVersion, 0, len(stored))
	for _, version := range stored {
		out = append(out, cloneVersion(version))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

// GetVersion fetches a specific version number for a post.
func (m *MemoryPostRepository) GetVersion(_ context.Context, postID uuid.UUID, number int) (*PostVersion, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, version := range m.versions[postID] {
		if version.Version == number {
			return cloneVersion(version), nil
		}
	}
	return nil, &NotFoundError{Resource: "post_version", Key: fmt.Sprintf("%s:%d", postID, number)}
}

// UpdateVersion replaces a stored version snapshot.
func (m *MemoryPostRepository) UpdateVersion(_ context.Context, version *PostVersion) (*PostVersion, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := m.versions[version.PostID]
	for i, candidate := range stored {
		if candidate.ID == version.ID {
			copied := cloneVersion(version)
			stored[i] = copied
			return cloneVersion(copied), nil
		}
	}
	return nil, &NotFoundError{Resource: "post_version", Key: version.ID.String()}
}

func clonePost(src *Post) *Post {
	if src == nil {
		return nil
	}

	copied := *src
	copied.Summary = cloneStringPtr(src.Summary)
	copied.Tags = cloneTags(src.Tags)
	copied.Author = cloneStringPtr(src.Author)
	copied.Template = cloneStringPtr(src.Template)
	copied.SourcePath = cloneStringPtr(src.SourcePath)
	copied.Checksum = cloneStringPtr(src.Checksum)
	copied.Metadata = cloneMap(src.Metadata)
	copied.PublishedVersion = cloneIntPtr(src.PublishedVersion)
	copied.PublishAt = cloneTimePtr(src.PublishAt)
	copied.PublishedAt = cloneTimePtr(src.PublishedAt)
	copied.ArchivedAt = cloneTimePtr(src.ArchivedAt)
	copied.Versions = nil
	return &copied
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
