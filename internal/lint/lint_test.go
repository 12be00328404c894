package lint

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/internal/markdown"
	"github.com/goliatone/go-blog/pkg/interfaces"
)

func proseDoc(slug, path string, draft bool, date time.Time, body string) *interfaces.Document {
	raw := map[string]any{"draft": draft}
	if !date.IsZero() {
		raw["date"] = date.Format(time.RFC3339)
	}
	return &interfaces.Document{
		FilePath: path,
		Slug:     slug,
		Body:     []byte(body),
		FrontMatter: interfaces.FrontMatter{
			Title: "Notes on " + slug,
			Slug:  slug,
			Date:  date,
			Draft: draft,
			Raw:   raw,
		},
	}
}

func TestLintCleanDocument(t *testing.T) {
	doc := proseDoc("deploy-notes", "posts/deploy-notes.md", false,
		time.Date(2024, 4, 11, 8, 0, 0, 0, time.FixedZone("EDT", -4*3600)),
		"Small wins from this week's deploys, mostly around connection reuse.")

	report := New().Lint([]*interfaces.Document{doc}, nil)

	if len(report.Issues) != 0 {
		t.Fatalf("expected a clean report, got %#v", report.Issues)
	}
	if report.Checked != 1 {
		t.Fatalf("expected 1 checked document, got %d", report.Checked)
	}
	if report.HasErrors() {
		t.Fatalf("expected no errors")
	}
}

func TestLintReportsMissingTitle(t *testing.T) {
	doc := proseDoc("untitled", "posts/untitled.md", true,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), "Body only.")
	doc.FrontMatter.Title = "   "

	report := New().Lint([]*interfaces.Document{doc}, nil)

	issues := report.ByRule(RuleTitleRequired)
	if len(issues) != 1 {
		t.Fatalf("expected one title issue, got %#v", report.Issues)
	}
	if issues[0].Severity != SeverityWarning {
		t.Fatalf("expected a warning, got %s", issues[0].Severity)
	}
	if issues[0].Path != "posts/untitled.md" {
		t.Fatalf("expected the file path on the issue, got %q", issues[0].Path)
	}
}

func TestLintReportsDateWithoutOffset(t *testing.T) {
	doc := proseDoc("offsetless", "posts/offsetless.md", true,
		time.Date(2024, 5, 20, 18, 45, 0, 0, time.UTC), "Body.")
	doc.FrontMatter.Raw["date"] = "2024-05-20 18:45:00"

	report := New().Lint([]*interfaces.Document{doc}, nil)

	issues := report.ByRule(RuleDateValid)
	if len(issues) != 1 {
		t.Fatalf("expected one date issue, got %#v", report.Issues)
	}
	if issues[0].Severity != SeverityWarning {
		t.Fatalf("expected a warning, got %s", issues[0].Severity)
	}
	if !strings.Contains(issues[0].Message, "no timezone offset") {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestLintReportsMissingDate(t *testing.T) {
	doc := proseDoc("undated", "posts/undated.md", true, time.Time{}, "Body.")

	report := New().Lint([]*interfaces.Document{doc}, nil)

	issues := report.ByRule(RuleDateValid)
	if len(issues) != 1 || !strings.Contains(issues[0].Message, "missing") {
		t.Fatalf("expected a missing-date issue, got %#v", report.Issues)
	}
}

func TestLintReportsUnderivableSlug(t *testing.T) {
	doc := proseDoc("", "posts/???.md", true,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), "Body.")
	doc.FrontMatter.Slug = ""

	report := New().Lint([]*interfaces.Document{doc}, nil)

	issues := report.ByRule(RuleSlugValid)
	if len(issues) != 1 {
		t.Fatalf("expected one slug issue, got %#v", report.Issues)
	}
	if !strings.Contains(issues[0].Message, "none derivable") {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestLintReportsUnnormalizedSlug(t *testing.T) {
	doc := proseDoc("Hello World", "posts/hello.md", true,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), "Body.")

	report := New().Lint([]*interfaces.Document{doc}, nil)

	issues := report.ByRule(RuleSlugValid)
	if len(issues) != 1 {
		t.Fatalf("expected one slug issue, got %#v", report.Issues)
	}
	if !strings.Contains(issues[0].Message, "does not normalize") {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestLintFlagsTyposOutsideFencedCode(t *testing.T) {
	body := strings.Join([]string{
		"Intro paragraph.",
		"",
		"Set the content type to aplication/json before sending.",
		"",
		"```http",
		"Content-Type: aplication/json",
		"```",
		"",
		"The response is varified downstream.",
	}, "\n")
	doc := proseDoc("callbacks", "posts/callbacks.md", false,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.FixedZone("EDT", -4*3600)), body)

	report := New().Lint([]*interfaces.Document{doc}, nil)

	issues := report.ByRule(RuleKnownTypos)
	if len(issues) != 2 {
		t.Fatalf("expected two typo issues, got %#v", report.Issues)
	}
	if issues[0].Line != 3 || !strings.Contains(issues[0].Message, "application/json") {
		t.Fatalf("unexpected first typo issue: %#v", issues[0])
	}
	if issues[1].Line != 9 || !strings.Contains(issues[1].Message, "verified") {
		t.Fatalf("unexpected second typo issue: %#v", issues[1])
	}
	for _, issue := range issues {
		if issue.Severity != SeverityInfo {
			t.Fatalf("expected typo findings to be informational, got %s", issue.Severity)
		}
	}
}

func TestLintTypoOverrides(t *testing.T) {
	linter := New(WithTypoOverrides(map[string]string{
		"behaviour": "behavior",
		"varified":  "",
	}))
	doc := proseDoc("overrides", "posts/overrides.md", false,
		time.Date(2024, 5, 1, 9, 0, 0, 0, time.FixedZone("EDT", -4*3600)),
		"The behaviour was varified by hand.")

	report := linter.Lint([]*interfaces.Document{doc}, nil)

	issues := report.ByRule(RuleKnownTypos)
	if len(issues) != 1 {
		t.Fatalf("expected only the override to fire, got %#v", issues)
	}
	if !strings.Contains(issues[0].Message, "behavior") {
		t.Fatalf("unexpected message %q", issues[0].Message)
	}
}

func TestLintFoldsLoaderFailures(t *testing.T) {
	loadErr := errors.Join(
		&markdown.FileError{Path: "broken-date.md", Err: errors.New(`markdown: unrecognized date "whenever"`)},
	)

	report := New().Lint(nil, loadErr)

	if !report.HasErrors() {
		t.Fatalf("expected a structural error")
	}
	issues := report.ByRule(RuleFileError)
	if len(issues) != 1 {
		t.Fatalf("expected one file issue, got %#v", report.Issues)
	}
	if issues[0].Severity != SeverityError {
		t.Fatalf("expected error severity, got %s", issues[0].Severity)
	}
	if issues[0].Path != "broken-date.md" {
		t.Fatalf("expected the failing path, got %q", issues[0].Path)
	}
}

func TestLintIssueOrderingIsDeterministic(t *testing.T) {
	first := proseDoc("", "posts/a.md", true, time.Time{}, "Body.")
	first.FrontMatter.Title = ""
	first.FrontMatter.Slug = ""
	second := proseDoc("later", "posts/b.md", true, time.Time{}, "Body.")

	report := New().Lint([]*interfaces.Document{second, first}, nil)

	for i := 1; i < len(report.Issues); i++ {
		prev, curr := report.Issues[i-1], report.Issues[i]
		if prev.Path > curr.Path {
			t.Fatalf("issues not ordered by path: %q before %q", prev.Path, curr.Path)
		}
	}
	if len(report.Issues) == 0 || report.Issues[0].Path != "posts/a.md" {
		t.Fatalf("expected posts/a.md issues first, got %#v", report.Issues)
	}
}
