package lint

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

// checkDuplicates compares document bodies pairwise and reports near-copies.
// Only pairs with at least one draft participate: two published posts that
// resemble each other are an editorial choice, a draft shadowing a post (or
// another draft) is usually a fork someone forgot about. The issue lands on
// the non-canonical copy and names the one to keep; resolution stays manual.
func (l *Linter) checkDuplicates(docs []*interfaces.Document) []Issue {
	type corpusEntry struct {
		doc      *interfaces.Document
		shingles map[string]struct{}
	}

	entries := make([]corpusEntry, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		words := normalizeProse(doc.Body)
		if len(words) == 0 {
			continue
		}
		entries = append(entries, corpusEntry{
			doc:      doc,
			shingles: shingleSet(words, l.shingleSize),
		})
	}

	issues := []Issue{}
	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			if !a.doc.FrontMatter.Draft && !b.doc.FrontMatter.Draft {
				continue
			}

			similarity := jaccard(a.shingles, b.shingles)
			threshold := l.threshold
			if slugsRelated(a.doc.Slug, b.doc.Slug) {
				// Slugs like "oauth-notes" and "oauth-notes-final" already
				// suggest a fork; a looser bar catches partial rewrites.
				threshold *= 0.75
			}
			if similarity < threshold {
				continue
			}

			canonical, duplicate := l.pickCanonical(a.doc, b.doc)
			issues = append(issues, Issue{
				Severity: SeverityInfo,
				Rule:     RuleNearDuplicates,
				Slug:     duplicate.Slug,
				Path:     duplicate.FilePath,
				Message: fmt.Sprintf("near-duplicate of %s (similarity %.2f); canonical copy is %s",
					canonical.Slug, similarity, canonical.FilePath),
			})
		}
	}
	return issues
}

// pickCanonical decides which of two near-duplicates the author most likely
// means to keep: the published copy over the draft, then the latest
// front-matter date, then the newest file on disk.
func (l *Linter) pickCanonical(a, b *interfaces.Document) (canonical, duplicate *interfaces.Document) {
	if a.FrontMatter.Draft != b.FrontMatter.Draft {
		if a.FrontMatter.Draft {
			return b, a
		}
		return a, b
	}
	if !a.FrontMatter.Date.Equal(b.FrontMatter.Date) {
		if a.FrontMatter.Date.After(b.FrontMatter.Date) {
			return a, b
		}
		return b, a
	}
	if a.LastModified.After(b.LastModified) {
		return a, b
	}
	return b, a
}

// normalizeProse lowers the body to comparable words: fenced code stripped,
// punctuation dropped, whitespace collapsed.
func normalizeProse(body []byte) []string {
	var prose strings.Builder
	eachProseLine(body, func(_ int, line string) {
		prose.WriteString(line)
		prose.WriteByte('\n')
	})

	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, prose.String())

	return strings.Fields(cleaned)
}

// shingleSet builds the set of overlapping k-word windows. Bodies shorter
// than one window collapse to a single shingle so tiny notes still compare.
func shingleSet(words []string, size int) map[string]struct{} {
	if size <= 0 {
		size = defaultShingleSize
	}
	set := make(map[string]struct{})
	if len(words) < size {
		set[strings.Join(words, " ")] = struct{}{}
		return set
	}
	for i := 0; i+size <= len(words); i++ {
		set[strings.Join(words[i:i+size], " ")] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	smaller, larger := a, b
	if len(b) < len(a) {
		smaller, larger = b, a
	}
	shared := 0
	for shingle := range smaller {
		if _, ok := larger[shingle]; ok {
			shared++
		}
	}
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0
	}
	return float64(shared) / float64(union)
}

// slugsRelated reports whether one slug extends the other with a suffix
// segment, the usual shape of "-final", "-v2", and "-old" forks.
func slugsRelated(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" || a == b {
		return false
	}
	shorter, longer := a, b
	if len(b) < len(a) {
		shorter, longer = b, a
	}
	return strings.HasPrefix(longer, shorter+"-")
}
