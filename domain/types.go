package domain

import internaldomain "github.com/goliatone/go-blog/internal/domain"

// Status represents lifecycle states for blog posts.
type Status = internaldomain.Status

const (
	// StatusDraft indicates a post still under preparation.
	StatusDraft = internaldomain.StatusDraft
	// StatusPublished identifies a post visible on the published site.
	StatusPublished = internaldomain.StatusPublished
	// StatusArchived marks a post retained for history but excluded from the site.
	StatusArchived = internaldomain.StatusArchived
	// StatusScheduled marks a post with a future publish time configured.
	StatusScheduled = internaldomain.StatusScheduled
)

// ParseStatus coerces arbitrary status strings into a known Status.
func ParseStatus(input string) Status {
	return internaldomain.ParseStatus(input)
}
