package domain

import "testing"

func TestParseStatus(t *testing.T) {
	cases := []struct {
		input string
		want  Status
	}{
		{"draft", StatusDraft},
		{"published", StatusPublished},
		{"  Published  ", StatusPublished},
		{"SCHEDULED", StatusScheduled},
		{"archived", StatusArchived},
		{"", StatusDraft},
		{"bogus", StatusDraft},
	}

	for _, tc := range cases {
		if got := ParseStatus(tc.input); got != tc.want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestStatusVisible(t *testing.T) {
	if !StatusPublished.Visible() {
		t.Fatal("expected published status to be visible")
	}
	for _, status := range []Status{StatusDraft, StatusScheduled, StatusArchived} {
		if status.Visible() {
			t.Fatalf("expected %q to be hidden", status)
		}
	}
}

func TestStatusIsValid(t *testing.T) {
	if Status("review").IsValid() {
		t.Fatal("unexpected valid status")
	}
	if !StatusScheduled.IsValid() {
		t.Fatal("expected scheduled to be valid")
	}
}
