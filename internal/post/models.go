package post

import blogposts "github.com/goliatone/go-blog/posts"

type (
	Post                = blogposts.Post
	PostVersion         = blogposts.PostVersion
	PostVersionSnapshot = blogposts.PostVersionSnapshot
)

var PostVersionSnapshotSchema = blogposts.PostVersionSnapshotSchema
