package post

import blogposts "github.com/goliatone/go-blog/posts"

type (
	Service                   = blogposts.Service
	CreatePostRequest         = blogposts.CreatePostRequest
	UpdatePostRequest         = blogposts.UpdatePostRequest
	ListOptions               = blogposts.ListOptions
	PublishPostRequest        = blogposts.PublishPostRequest
	SchedulePostRequest       = blogposts.SchedulePostRequest
	ArchivePostRequest        = blogposts.ArchivePostRequest
	CreatePostDraftRequest    = blogposts.CreatePostDraftRequest
	PublishPostDraftRequest   = blogposts.PublishPostDraftRequest
	RestorePostVersionRequest = blogposts.RestorePostVersionRequest

	NotFoundError = blogposts.NotFoundError
)

var (
	ErrPostIDRequired           = blogposts.ErrPostIDRequired
	ErrTitleRequired            = blogposts.ErrTitleRequired
	ErrDateRequired             = blogposts.ErrDateRequired
	ErrDateInvalid              = blogposts.ErrDateInvalid
	ErrSlugRequired             = blogposts.ErrSlugRequired
	ErrSlugInvalid              = blogposts.ErrSlugInvalid
	ErrSlugExists               = blogposts.ErrSlugExists
	ErrVersioningDisabled       = blogposts.ErrVersioningDisabled
	ErrVersionRequired          = blogposts.ErrVersionRequired
	ErrVersionConflict          = blogposts.ErrVersionConflict
	ErrVersionAlreadyPublished  = blogposts.ErrVersionAlreadyPublished
	ErrVersionRetentionExceeded = blogposts.ErrVersionRetentionExceeded
	ErrSchedulingDisabled       = blogposts.ErrSchedulingDisabled
	ErrScheduleTimestampInvalid = blogposts.ErrScheduleTimestampInvalid
)
