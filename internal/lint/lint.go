package lint

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/internal/validation"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

// Severity grades a lint finding. Only structural failures (a file that could
// not be loaded at all) are errors; everything the corpus can live with is a
// warning or informational.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Rule names, stable for filtering and tooling.
const (
	RuleTitleRequired  = "title-required"
	RuleDateValid      = "date-valid"
	RuleSlugValid      = "slug-valid"
	RuleKnownTypos     = "known-typos"
	RuleNearDuplicates = "near-duplicates"
	RuleMetadataSchema = "metadata-schema"
	RuleFileError      = "file-error"
)

// Issue captures a single lint finding. Line is 1-based within the markdown
// body (front-matter excluded); zero means the finding is not line-scoped.
type Issue struct {
	Severity Severity
	Rule     string
	Slug     string
	Path     string
	Line     int
	Message  string
}

// Report aggregates the findings for one lint run.
type Report struct {
	Issues  []Issue
	Checked int
}

// Count returns the number of issues at the given severity.
func (r *Report) Count(severity Severity) int {
	total := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			total++
		}
	}
	return total
}

// HasErrors reports whether any structural failures were recorded.
func (r *Report) HasErrors() bool {
	return r.Count(SeverityError) > 0
}

// ByRule returns the issues recorded for a single rule, in report order.
func (r *Report) ByRule(rule string) []Issue {
	matched := make([]Issue, 0)
	for _, issue := range r.Issues {
		if issue.Rule == rule {
			matched = append(matched, issue)
		}
	}
	return matched
}

// Option configures a Linter.
type Option func(*Linter)

// WithTypoOverrides merges additional typo entries over the built-in catalog.
// An override with an empty replacement removes the catalog entry.
func WithTypoOverrides(overrides map[string]string) Option {
	return func(l *Linter) {
		for typo, replacement := range overrides {
			key := strings.ToLower(strings.TrimSpace(typo))
			if key == "" {
				continue
			}
			if strings.TrimSpace(replacement) == "" {
				delete(l.typos, key)
				continue
			}
			l.typos[key] = replacement
		}
	}
}

// WithDuplicateThreshold overrides the Jaccard similarity threshold above
// which two documents count as near-duplicates.
func WithDuplicateThreshold(threshold float64) Option {
	return func(l *Linter) {
		if threshold > 0 && threshold <= 1 {
			l.threshold = threshold
		}
	}
}

// WithShingleSize overrides the word-window size used for similarity.
func WithShingleSize(size int) Option {
	return func(l *Linter) {
		if size > 0 {
			l.shingleSize = size
		}
	}
}

// WithLogger overrides the linter logger.
func WithLogger(logger interfaces.Logger) Option {
	return func(l *Linter) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithClock overrides the clock used to decide whether a date is still ahead.
func WithClock(clock func() time.Time) Option {
	return func(l *Linter) {
		if clock != nil {
			l.now = clock
		}
	}
}

const (
	defaultDuplicateThreshold = 0.6
	defaultShingleSize        = 5
)

// Linter runs the rule set over documents.
type Linter struct {
	typos       map[string]string
	threshold   float64
	shingleSize int
	logger      interfaces.Logger
	now         func() time.Time

	metadataSchema map[string]any
	metadata       *validation.CompiledSchema
	metadataErr    error
	metadataReady  bool
}

// New constructs a Linter with the built-in typo catalog and default
// similarity settings.
func New(opts ...Option) *Linter {
	l := &Linter{
		typos:       defaultTypoCatalog(),
		threshold:   defaultDuplicateThreshold,
		shingleSize: defaultShingleSize,
		logger:      logging.NoOp(),
		now:         time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Lint checks every document plus the corpus-level rules and folds loader
// failures in as error-severity issues. loadErr may be nil, a single error,
// or a joined error from the markdown service.
func (l *Linter) Lint(docs []*interfaces.Document, loadErr error) *Report {
	report := &Report{Issues: []Issue{}}

	for _, err := range flattenErrors(loadErr) {
		report.Issues = append(report.Issues, fileIssue(err))
	}
	report.Issues = append(report.Issues, l.metadataSchemaIssue()...)

	for _, doc := range docs {
		if doc == nil {
			continue
		}
		report.Issues = append(report.Issues, l.LintDocument(doc)...)
	}

	report.Issues = append(report.Issues, l.checkDuplicates(docs)...)
	report.Checked = len(docs)

	sortIssues(report.Issues)

	l.logger.Debug("lint: run complete",
		"documents", report.Checked,
		"issues", len(report.Issues),
		"errors", report.Count(SeverityError),
	)
	return report
}

// LintDocument runs the per-document rules only; corpus rules such as
// near-duplicate detection need the full slice and live in Lint.
func (l *Linter) LintDocument(doc *interfaces.Document) []Issue {
	issues := []Issue{}
	issues = append(issues, l.checkTitle(doc)...)
	issues = append(issues, l.checkDate(doc)...)
	issues = append(issues, l.checkSlug(doc)...)
	issues = append(issues, l.checkTypos(doc)...)
	issues = append(issues, l.checkMetadata(doc)...)
	return issues
}

func (l *Linter) checkTitle(doc *interfaces.Document) []Issue {
	if strings.TrimSpace(doc.FrontMatter.Title) != "" {
		return nil
	}
	return []Issue{{
		Severity: SeverityWarning,
		Rule:     RuleTitleRequired,
		Slug:     doc.Slug,
		Path:     doc.FilePath,
		Message:  "front-matter title is missing or empty",
	}}
}

func (l *Linter) checkDate(doc *interfaces.Document) []Issue {
	raw := rawDateValue(doc)

	if raw == "" && doc.FrontMatter.Date.IsZero() {
		return []Issue{{
			Severity: SeverityWarning,
			Rule:     RuleDateValid,
			Slug:     doc.Slug,
			Path:     doc.FilePath,
			Message:  "front-matter date is missing",
		}}
	}

	// A raw value that refuses to parse never reaches the linter as a
	// document; unparsable dates fail the file's load. The remaining case is
	// a date that parsed but carries no timezone offset.
	if raw != "" && !markdown.DateHasOffset(raw) {
		return []Issue{{
			Severity: SeverityWarning,
			Rule:     RuleDateValid,
			Slug:     doc.Slug,
			Path:     doc.FilePath,
			Message:  fmt.Sprintf("date %q has no timezone offset; it was read as UTC", raw),
		}}
	}
	return nil
}

func (l *Linter) checkSlug(doc *interfaces.Document) []Issue {
	slug := strings.TrimSpace(doc.Slug)
	if slug == "" {
		slug = strings.TrimSpace(doc.FrontMatter.Slug)
	}
	if slug == "" {
		return []Issue{{
			Severity: SeverityWarning,
			Rule:     RuleSlugValid,
			Path:     doc.FilePath,
			Message:  "no slug in the header and none derivable from the file name",
		}}
	}
	if !posts.IsValidSlug(slug) {
		return []Issue{{
			Severity: SeverityWarning,
			Rule:     RuleSlugValid,
			Slug:     slug,
			Path:     doc.FilePath,
			Message:  fmt.Sprintf("slug %q does not normalize cleanly", slug),
		}}
	}
	return nil
}

func (l *Linter) checkTypos(doc *interfaces.Document) []Issue {
	hits := scanTypos(doc.Body, l.typos)
	if len(hits) == 0 {
		return nil
	}
	issues := make([]Issue, 0, len(hits))
	for _, hit := range hits {
		issues = append(issues, Issue{
			Severity: SeverityInfo,
			Rule:     RuleKnownTypos,
			Slug:     doc.Slug,
			Path:     doc.FilePath,
			Line:     hit.Line,
			Message:  fmt.Sprintf("%q looks like a typo of %q", hit.Found, hit.Want),
		})
	}
	return issues
}

func fileIssue(err error) Issue {
	var fileErr *markdown.FileError
	if errors.As(err, &fileErr) {
		return Issue{
			Severity: SeverityError,
			Rule:     RuleFileError,
			Path:     fileErr.Path,
			Message:  fileErr.Err.Error(),
		}
	}
	return Issue{
		Severity: SeverityError,
		Rule:     RuleFileError,
		Message:  err.Error(),
	}
}

// flattenErrors expands joined errors so each loader failure becomes its own
// issue.
func flattenErrors(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, inner := range joined.Unwrap() {
			out = append(out, flattenErrors(inner)...)
		}
		return out
	}
	return []error{err}
}

func rawDateValue(doc *interfaces.Document) string {
	value, ok := doc.FrontMatter.Raw["date"]
	if !ok {
		return ""
	}
	text, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func sortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Path != issues[j].Path {
			return issues[i].Path < issues[j].Path
		}
		if issues[i].Line != issues[j].Line {
			return issues[i].Line < issues[j].Line
		}
		return issues[i].Rule < issues[j].Rule
	})
}
