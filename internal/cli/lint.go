package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	markdowncmd "github.com/goliatone/go-blog/internal/commands/markdown"
	"github.com/goliatone/go-blog/internal/lint"
)

var (
	lintDir     string
	lintPattern string
)

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Report content smells across the corpus",
	Long: `Load every markdown file and report missing titles, malformed dates,
likely typos, schema violations, and near-duplicate drafts. Findings
are informational; lint never blocks a publish.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := getRuntime(cmd)
		if err != nil {
			return err
		}

		var report *lint.Report
		handler := markdowncmd.NewLintDirectoryHandler(rt.Module.Markdown(), rt.Module.Lint(), rt.Logger, markdowncmd.FeatureGates{})
		msg := markdowncmd.LintDirectoryCommand{
			Directory: lintDir,
			Pattern:   lintPattern,
			ReportCallback: func(r *lint.Report) {
				report = r
			},
		}
		if err := handler.Execute(cmd.Context(), msg); err != nil {
			return fmt.Errorf("lint failed: %w", err)
		}
		if report == nil {
			fmt.Println("No files checked.")
			return nil
		}

		printLintReport(report)
		return nil
	},
}

func printLintReport(report *lint.Report) {
	for _, issue := range report.Issues {
		location := issue.Path
		if location == "" {
			location = issue.Slug
		}
		if issue.Line > 0 {
			location = fmt.Sprintf("%s:%d", location, issue.Line)
		}
		fmt.Printf("  %s %s [%s] %s\n", severityMarker(issue.Severity), location, issue.Rule, issue.Message)
	}

	errs := report.Count(lint.SeverityError)
	warnings := report.Count(lint.SeverityWarning)
	if len(report.Issues) == 0 {
		fmt.Printf("Checked %d file(s). No issues.\n", report.Checked)
		return
	}
	fmt.Printf("Checked %d file(s): %d error(s), %d warning(s), %d note(s).\n",
		report.Checked, errs, warnings, len(report.Issues)-errs-warnings)
}

func severityMarker(severity lint.Severity) string {
	switch severity {
	case lint.SeverityError:
		return "✗"
	case lint.SeverityWarning:
		return "⚠"
	default:
		return "○"
	}
}

func init() {
	lintCmd.Flags().StringVar(&lintDir, "dir", ".", "directory to lint, relative to the content root")
	lintCmd.Flags().StringVar(&lintPattern, "pattern", "", "narrow the walk to matching file names")
}
