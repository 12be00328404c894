package posts

import (
	"errors"
	"fmt"
)

var (
	ErrPostIDRequired           = errors.New("posts: post id required")
	ErrTitleRequired            = errors.New("posts: title is required")
	ErrDateRequired             = errors.New("posts: date is required")
	ErrDateInvalid              = errors.New("posts: date is invalid")
	ErrSlugRequired             = errors.New("posts: slug is required")
	ErrSlugInvalid              = errors.New("posts: slug contains invalid characters")
	ErrSlugExists               = errors.New("posts: slug already exists")
	ErrVersioningDisabled       = errors.New("posts: versioning feature disabled")
	ErrVersionRequired          = errors.New("posts: version identifier required")
	ErrVersionConflict          = errors.New("posts: base version mismatch")
	ErrVersionAlreadyPublished  = errors.New("posts: version already published")
	ErrVersionRetentionExceeded = errors.New("posts: version retention limit reached")
	ErrSchedulingDisabled       = errors.New("posts: scheduling feature disabled")
	ErrScheduleTimestampInvalid = errors.New("posts: schedule timestamp is invalid")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}
