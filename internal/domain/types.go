package domain

import "strings"

// Status represents lifecycle states for blog posts
type Status string

const (
	// StatusDraft indicates a post still under preparation
	StatusDraft Status = "draft"
	// StatusPublished identifies a post visible on the published site
	StatusPublished Status = "published"
	// StatusArchived marks a post retained for history but excluded from the site
	StatusArchived Status = "archived"
	// StatusScheduled marks a post with a future publish time configured
	StatusScheduled Status = "scheduled"
)

// ParseStatus coerces arbitrary status strings into a known Status. Unknown or
// empty values resolve to StatusDraft so malformed front-matter never leaks an
// unpublished post onto the site.
func ParseStatus(input string) Status {
	normalized := Status(strings.ToLower(strings.TrimSpace(input)))
	switch normalized {
	case StatusDraft, StatusPublished, StatusArchived, StatusScheduled:
		return normalized
	default:
		return StatusDraft
	}
}

// IsValid reports whether the status is one of the known lifecycle states.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived, StatusScheduled:
		return true
	default:
		return false
	}
}

// Visible reports whether posts in this status belong on the published site.
func (s Status) Visible() bool {
	return s == StatusPublished
}
