// Package lint runs editorial quality checks over a loaded markdown corpus:
// missing titles, dates without a timezone offset, slugs that do not
// normalize, known typos in prose, and near-duplicate drafts. Checks report;
// they never gate an import and never touch a source file.
package lint
