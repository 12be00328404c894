package lint

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/validation"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

// WithMetadataSchema enables front-matter validation against a site-defined
// schema. Drafts are checked without required fields; a schema that does not
// compile surfaces as a single error-severity issue on the run.
func WithMetadataSchema(schema map[string]any) Option {
	return func(l *Linter) {
		l.metadataSchema = schema
	}
}

func (l *Linter) ensureMetadataSchema() {
	if l.metadataReady {
		return
	}
	l.metadataReady = true
	if len(l.metadataSchema) == 0 {
		return
	}
	compiled, err := validation.Compile(l.metadataSchema)
	if err != nil {
		l.metadataErr = err
		return
	}
	l.metadata = compiled
}

func (l *Linter) metadataSchemaIssue() []Issue {
	l.ensureMetadataSchema()
	if l.metadataErr == nil {
		return nil
	}
	return []Issue{{
		Severity: SeverityError,
		Rule:     RuleMetadataSchema,
		Message:  fmt.Sprintf("metadata schema does not compile: %v", l.metadataErr),
	}}
}

func (l *Linter) checkMetadata(doc *interfaces.Document) []Issue {
	l.ensureMetadataSchema()
	if l.metadata == nil {
		return nil
	}

	payload := doc.FrontMatter.Raw
	if payload == nil {
		payload = map[string]any{}
	}

	var err error
	if documentIsDraft(doc) {
		err = l.metadata.ValidatePartial(payload)
	} else {
		err = l.metadata.Validate(payload)
	}
	if err == nil {
		return nil
	}

	issues := make([]Issue, 0)
	for _, found := range validation.Issues(err) {
		location := strings.TrimSpace(found.Location)
		if location == "" {
			location = "#"
		} else if !strings.HasPrefix(location, "#") {
			location = "#" + location
		}
		message := found.Message
		if message == "" {
			message = "front-matter does not match the metadata schema"
		}
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Rule:     RuleMetadataSchema,
			Slug:     doc.Slug,
			Path:     doc.FilePath,
			Message:  fmt.Sprintf("front-matter %s: %s", location, message),
		})
	}
	return issues
}

// Drafts only count as such when the file says so; a status-less header is
// linted against the full contract.
func documentIsDraft(doc *interfaces.Document) bool {
	if doc.FrontMatter.Draft {
		return true
	}
	status := strings.TrimSpace(doc.FrontMatter.Status)
	if status == "" {
		return false
	}
	return domain.ParseStatus(status) == domain.StatusDraft
}
