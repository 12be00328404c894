package identity

import (
	"strconv"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// PostUUID returns the stable identifier for the post behind a slug. Posts
// imported from markdown keep their identity across fresh databases because
// the slug, not the row, is the durable name.
func PostUUID(slug string) uuid.UUID {
	return UUID("go-blog:post:" + strings.TrimSpace(slug))
}

// VersionUUID returns the stable identifier for one version snapshot of a post.
func VersionUUID(postID uuid.UUID, version int) uuid.UUID {
	return UUID("go-blog:post_version:" + postID.String() + ":" + strconv.Itoa(version))
}
