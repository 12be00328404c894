package post

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/go-repository-cache/cache"
	repositorycache "github.com/goliatone/go-repository-cache/repositorycache"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BunPostRepository persists posts through go-repository-bun with optional
// read-through caching. Version snapshots are queried through bun directly
// since they are filtered by post rather than fetched by identifier.
type BunPostRepository struct {
	db   *bun.DB
	repo repository.Repository[*Post]
}

var _ PostRepository = (*BunPostRepository)(nil)

func NewBunPostRepository(db *bun.DB) *BunPostRepository {
	return NewBunPostRepositoryWithCache(db, nil, nil)
}

func NewBunPostRepositoryWithCache(db *bun.DB, cacheService cache.CacheService, keySerializer cache.KeySerializer) *BunPostRepository {
	base := NewPostRepository(db)
	wrapped := wrapWithCache(base, cacheService, keySerializer)
	return &BunPostRepository{db: db, repo: wrapped}
}

func (r *BunPostRepository) Create(ctx context.Context, record *Post) (*Post, error) {
	created, err := r.repo.Create(ctx, record)
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (r *BunPostRepository) GetByID(ctx context.Context, id uuid.UUID) (*Post, error) {
	result, err := r.repo.GetByID(ctx, id.String())
	if err != nil {
		return nil, mapRepositoryError(err, "post", id.String())
	}
	return result, nil
}

func (r *BunPostRepository) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	result, err := r.repo.GetByIdentifier(ctx, slug)
	if err != nil {
		return nil, mapRepositoryError(err, "post", slug)
	}
	return result, nil
}

func (r *BunPostRepository) List(ctx context.Context) ([]*Post, error) {
	records, _, err := r.repo.List(ctx)
	return records, err
}

func (r *BunPostRepository) Update(ctx context.Context, record *Post) (*Post, error) {
	updated, err := r.repo.Update(ctx, record)
	if err != nil {
		return nil, mapRepositoryError(err, "post", record.ID.String())
	}
	return updated, nil
}

func (r *BunPostRepository) CreateVersion(ctx context.Context, version *PostVersion) (*PostVersion, error) {
	if _, err := r.db.NewInsert().Model(version).Exec(ctx); err != nil {
		return nil, fmt.Errorf("post_version insert error: %w", err)
	}
	return version, nil
}

func (r *BunPostRepository) ListVersions(ctx context.Context, postID uuid.UUID) ([]*PostVersion, error) {
	versions := []*PostVersion{}
	if err := r.db.NewSelect().
		Model(&versions).
		Where("post_id = ?", postID).
		Order("version ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("post_version list error: %w", err)
	}
	return versions, nil
}

func (r *BunPostRepository) GetVersion(ctx context.Context, postID uuid.UUID, number int) (*PostVersion, error) {
	version := new(PostVersion)
	err := r.db.NewSelect().
		Model(version).
		Where("post_id = ?", postID).
		Where("version = ?", number).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "post_version", Key: fmt.Sprintf("%s:%d", postID, number)}
		}
		return nil, fmt.Errorf("post_version get error: %w", err)
	}
	return version, nil
}

func (r *BunPostRepository) UpdateVersion(ctx context.Context, version *PostVersion) (*PostVersion, error) {
	res, err := r.db.NewUpdate().
		Model(version).
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("post_version update error: %w", err)
	}
	if rows, rowsErr := res.RowsAffected(); rowsErr == nil && rows == 0 {
		return nil, &NotFoundError{Resource: "post_version", Key: version.ID.String()}
	}
	return version, nil
}

func mapRepositoryError(err error, resource, key string) error {
	if err == nil {
		return nil
	}
	if goerrors.IsCategory(err, repository.CategoryDatabaseNotFound) {
		return &NotFoundError{
			Resource: resource,
			Key:      key,
		}
	}
	return fmt.Errorf("%s repository error: %w", resource, err)
}

func wrapWithCache[T any](base repository.Repository[T], cacheService cache.CacheService, keySerializer cache.KeySerializer) repository.Repository[T] {
	if cacheService == nil || keySerializer == nil {
		return base
	}
	return repositorycache.New(base, cacheService, keySerializer)
}
