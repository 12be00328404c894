package scheduler

import "github.com/google/uuid"

const (
	JobTypePostPublish = "blog.post.publish"
)

func PostPublishJobKey(id uuid.UUID) string {
	return "post:" + id.String() + ":publish"
}
