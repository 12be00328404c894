package lint

import (
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-blog/pkg/interfaces"
)

const oauthBody = "Shopify sends the webhook as soon as the merchant approves the charge. " +
	"Verify the HMAC first, then exchange the temporary code for a permanent token. " +
	"Store the token beside the shop domain and never log it anywhere."

func TestLintNearDuplicateDrafts(t *testing.T) {
	published := proseDoc("shopify-oauth", "posts/shopify-oauth.md", false,
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.FixedZone("EST", -5*3600)), oauthBody)
	fork := proseDoc("shopify-oauth-final", "posts/drafts/shopify-oauth-final.md", true,
		time.Date(2024, 3, 18, 9, 0, 0, 0, time.FixedZone("EDT", -4*3600)),
		oauthBody+" Rotation happens on reinstall only.")
	unrelated := proseDoc("garden-irrigation", "posts/garden-irrigation.md", true,
		time.Date(2024, 3, 12, 9, 0, 0, 0, time.UTC),
		"Drip lines beat sprinklers for raised beds; the soil stays evenly damp without wetting the leaves.")

	report := New().Lint([]*interfaces.Document{published, fork, unrelated}, nil)

	issues := report.ByRule(RuleNearDuplicates)
	if len(issues) != 1 {
		t.Fatalf("expected one duplicate issue, got %#v", report.Issues)
	}
	issue := issues[0]
	if issue.Severity != SeverityInfo {
		t.Fatalf("expected an informational finding, got %s", issue.Severity)
	}
	if issue.Slug != "shopify-oauth-final" {
		t.Fatalf("expected the issue on the draft fork, got %q", issue.Slug)
	}
	if issue.Path != "posts/drafts/shopify-oauth-final.md" {
		t.Fatalf("expected the fork path, got %q", issue.Path)
	}
	if !strings.Contains(issue.Message, "posts/shopify-oauth.md") {
		t.Fatalf("expected the canonical path in %q", issue.Message)
	}
}

func TestLintBothPublishedNotReported(t *testing.T) {
	first := proseDoc("shopify-oauth", "posts/shopify-oauth.md", false,
		time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC), oauthBody)
	second := proseDoc("shopify-oauth-annotated", "posts/shopify-oauth-annotated.md", false,
		time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC),
		oauthBody+" Rotation happens on reinstall only.")

	report := New().Lint([]*interfaces.Document{first, second}, nil)

	if issues := report.ByRule(RuleNearDuplicates); len(issues) != 0 {
		t.Fatalf("expected published pairs to pass, got %#v", issues)
	}
}

func TestLintDuplicateTieBreaksByDate(t *testing.T) {
	older := proseDoc("redis-caching", "posts/redis-caching.md", true,
		time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), oauthBody)
	newer := proseDoc("caching-redraft", "posts/caching-redraft.md", true,
		time.Date(2024, 2, 8, 9, 0, 0, 0, time.UTC), oauthBody)

	report := New().Lint([]*interfaces.Document{older, newer}, nil)

	issues := report.ByRule(RuleNearDuplicates)
	if len(issues) != 1 {
		t.Fatalf("expected one duplicate issue, got %#v", report.Issues)
	}
	if issues[0].Slug != "redis-caching" {
		t.Fatalf("expected the later date to win, issue landed on %q", issues[0].Slug)
	}
	if !strings.Contains(issues[0].Message, "posts/caching-redraft.md") {
		t.Fatalf("expected the newer copy named canonical in %q", issues[0].Message)
	}
}

func TestLintDuplicateTieBreaksByModTime(t *testing.T) {
	date := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	stale := proseDoc("draft-one", "posts/draft-one.md", true, date, oauthBody)
	stale.LastModified = time.Date(2024, 2, 2, 10, 0, 0, 0, time.UTC)
	fresh := proseDoc("draft-two", "posts/draft-two.md", true, date, oauthBody)
	fresh.LastModified = time.Date(2024, 2, 2, 16, 0, 0, 0, time.UTC)

	report := New().Lint([]*interfaces.Document{stale, fresh}, nil)

	issues := report.ByRule(RuleNearDuplicates)
	if len(issues) != 1 {
		t.Fatalf("expected one duplicate issue, got %#v", report.Issues)
	}
	if issues[0].Slug != "draft-one" {
		t.Fatalf("expected the newer file to win, issue landed on %q", issues[0].Slug)
	}
}

func TestLintDuplicateThresholdOverride(t *testing.T) {
	first := proseDoc("redis-caching", "posts/redis-caching.md", true,
		time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC), oauthBody)
	second := proseDoc("caching-redraft", "posts/caching-redraft.md", true,
		time.Date(2024, 2, 8, 9, 0, 0, 0, time.UTC),
		oauthBody+" Rotation happens on reinstall only.")

	strict := New(WithDuplicateThreshold(0.95))
	if issues := strict.Lint([]*interfaces.Document{first, second}, nil).ByRule(RuleNearDuplicates); len(issues) != 0 {
		t.Fatalf("expected the strict threshold to suppress the pair, got %#v", issues)
	}

	loose := New(WithDuplicateThreshold(0.5))
	if issues := loose.Lint([]*interfaces.Document{first, second}, nil).ByRule(RuleNearDuplicates); len(issues) != 1 {
		t.Fatalf("expected the default-ish threshold to flag the pair, got %#v", issues)
	}
}
