package post

import (
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

func NewPostRepository(db *bun.DB) repository.Repository[*Post] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*Post]{
		NewRecord: func() *Post { return &Post{} },
		GetID: func(p *Post) uuid.UUID {
			return p.ID
		},
		SetID: func(p *Post, id uuid.UUID) {
			p.ID = id
		},
		GetIdentifier: func() string {
			return "slug"
		},
		GetIdentifierValue: func(p *Post) string {
			return p.Slug
		},
	})
}

// NewPostVersionRepository creates a repository for PostVersion entities.
func NewPostVersionRepository(db *bun.DB) repository.Repository[*PostVersion] {
	return repository.MustNewRepository(db, repository.ModelHandlers[*PostVersion]{
		NewRecord: func() *PostVersion { return &PostVersion{} },
		GetID: func(pv *PostVersion) uuid.UUID {
			return pv.ID
		},
		SetID: func(pv *PostVersion, id uuid.UUID) {
			pv.ID = id
		},
		GetIdentifier: func() string {
			return "id"
		},
		GetIdentifierValue: func(pv *PostVersion) string {
			if pv == nil {
				return ""
			}
			return pv.ID.String()
		},
	})
}
