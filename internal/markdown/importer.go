package markdown

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/goliatone/go-blog/internal/domain"
	"github.com/goliatone/go-blog/internal/identity"
	"github.com/goliatone/go-blog/internal/logging"
	"github.com/goliatone/go-blog/pkg/interfaces"
	"github.com/goliatone/go-blog/posts"
)

var (
	ErrPostServiceRequired = errors.New("markdown importer: post service is required")
	ErrSlugMissing         = errors.New("markdown importer: document slug is required")
)

// ImporterConfig encapsulates dependencies required to persist markdown documents.
type ImporterConfig struct {
	Posts  posts.Service
	Logger interfaces.Logger
	Clock  func() time.Time
}

// Importer synchronises markdown documents with the post store. Entries whose
// source files disappear are archived, never deleted.
type Importer struct {
	posts  posts.Service
	logger interfaces.Logger
	now    func() time.Time
}

// NewImporter builds an Importer from the supplied configuration.
func NewImporter(cfg ImporterConfig) *Importer {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoOp()
	}
	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	return &Importer{
		posts:  cfg.Posts,
		logger: logger,
		now:    now,
	}
}

// ImportDocument imports a single markdown document.
func (i *Importer) ImportDocument(ctx context.Context, doc *interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.posts == nil {
		return nil, ErrPostServiceRequired
	}
	acc := newImportAccumulator()
	if err := i.applyGroup(ctx, groupKey(doc), []*interfaces.Document{doc}, opts, true, acc); err != nil {
		acc.addError(err)
	}
	return acc.result(), firstError(acc.errors)
}

// ImportDocuments imports an arbitrary slice of documents, grouping them by slug.
func (i *Importer) ImportDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.ImportOptions) (*interfaces.ImportResult, error) {
	if i.posts == nil {
		return nil, ErrPostServiceRequired
	}

	grouped := groupBySlug(docs)
	acc := newImportAccumulator()
	for _, slug := range sortedKeys(grouped) {
		group := sortDocuments(grouped[slug])
		if err := i.applyGroup(ctx, slug, group, opts, true, acc); err != nil {
			acc.addError(err)
		}
	}
	return acc.result(), firstError(acc.errors)
}

// SyncDocuments imports all provided documents and optionally archives stored
// posts whose source files are gone.
func (i *Importer) SyncDocuments(ctx context.Context, docs []*interfaces.Document, opts interfaces.SyncOptions) (*interfaces.SyncResult, error) {
	if i.posts == nil {
		return nil, ErrPostServiceRequired
	}

	grouped := groupBySlug(docs)
	acc := newSyncAccumulator()

	for _, slug := range sortedKeys(grouped) {
		group := sortDocuments(grouped[slug])
		res := newImportAccumulator()
		if err := i.applyGroup(ctx, slug, group, opts.ImportOptions, opts.UpdateExisting, res); err != nil {
			res.addError(err)
		}
		acc.merge(res.result())
	}

	if opts.ArchiveOrphans {
		if err := i.archiveOrphaned(ctx, grouped, opts, acc); err != nil {
			acc.addError(err)
		}
	}

	return acc.result(), firstError(acc.errors)
}

func (i *Importer) applyGroup(ctx context.Context, slug string, docs []*interfaces.Document, opts interfaces.ImportOptions, updateExisting bool, acc *importAccumulator) error {
	if slug == "" {
		return ErrSlugMissing
	}
	if len(docs) == 0 {
		return nil
	}

	doc := i.canonicalDocument(docs)
	if err := validateDocument(doc); err != nil {
		return err
	}
	if len(docs) > 1 {
		i.logger.Warn("markdown importer: multiple sources share a slug",
			"slug", slug,
			"sources", len(docs),
			"canonical", doc.FilePath,
		)
	}

	status := i.statusForDocument(doc, opts)
	checksum := hex.EncodeToString(doc.Checksum)
	logger := logging.WithMarkdownContext(i.logger, doc.FilePath, slug, "")

	existing, err := i.lookupPost(ctx, slug)
	if err != nil {
		return fmt.Errorf("markdown importer: lookup post %s: %w", slug, err)
	}

	if existing == nil {
		return i.createPost(ctx, doc, slug, status, checksum, opts, acc, logger)
	}
	return i.updatePost(ctx, doc, existing, status, checksum, opts, updateExisting, acc, logger)
}

func (i *Importer) createPost(ctx context.Context, doc *interfaces.Document, slug string, status domain.Status, checksum string, opts interfaces.ImportOptions, acc *importAccumulator, logger interfaces.Logger) error {
	if opts.DryRun {
		acc.skip(uuid.Nil)
		return nil
	}

	req := posts.CreatePostRequest{
		ID:         identity.PostUUID(slug),
		Slug:       slug,
		Title:      strings.TrimSpace(doc.FrontMatter.Title),
		Summary:    optionalString(doc.FrontMatter.Summary),
		Body:       string(doc.Body),
		HTML:       string(doc.BodyHTML),
		Status:     string(status),
		Date:       doc.FrontMatter.Date,
		Tags:       append([]string(nil), doc.FrontMatter.Tags...),
		Author:     optionalString(doc.FrontMatter.Author),
		Template:   optionalString(doc.FrontMatter.Template),
		SourcePath: optionalString(doc.FilePath),
		Checksum:   optionalString(checksum),
		Metadata:   documentMetadata(doc),
	}

	switch status {
	case domain.StatusPublished:
		// The front-matter date is the publication timestamp.
		published := doc.FrontMatter.Date
		req.PublishedAt = &published
	case domain.StatusScheduled:
		publishAt := doc.FrontMatter.Date
		req.PublishAt = &publishAt
	}

	created, err := i.posts.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("markdown importer: create post %s: %w", slug, err)
	}
	acc.created(created.ID)

	if status == domain.StatusScheduled {
		if err := i.schedulePublish(ctx, created.ID, doc.FrontMatter.Date); err != nil {
			return err
		}
		acc.scheduled(created.ID)
	}

	logging.WithMarkdownContext(logger, "", "", "create").Info("markdown importer: imported post", "status", string(status))
	return nil
}

func (i *Importer) updatePost(ctx context.Context, doc *interfaces.Document, existing *posts.Post, status domain.Status, checksum string, opts interfaces.ImportOptions, updateExisting bool, acc *importAccumulator, logger interfaces.Logger) error {
	unchanged := checksum != "" && existing.Checksum != nil && *existing.Checksum == checksum
	// An archived post whose source file is present again must be restored,
	// so the checksum short-circuit does not apply to it.
	if unchanged && existing.Status != domain.StatusArchived {
		acc.skip(existing.ID)
		return nil
	}
	if !updateExisting {
		acc.skip(existing.ID)
		return nil
	}
	if opts.DryRun {
		acc.skip(existing.ID)
		return nil
	}

	title := strings.TrimSpace(doc.FrontMatter.Title)
	summary := doc.FrontMatter.Summary
	body := string(doc.Body)
	html := string(doc.BodyHTML)
	date := doc.FrontMatter.Date
	author := doc.FrontMatter.Author
	template := doc.FrontMatter.Template
	sourcePath := doc.FilePath

	req := posts.UpdatePostRequest{
		ID:         existing.ID,
		Title:      &title,
		Summary:    &summary,
		Body:       &body,
		HTML:       &html,
		Date:       &date,
		Tags:       append([]string{}, doc.FrontMatter.Tags...),
		Author:     &author,
		Template:   &template,
		SourcePath: &sourcePath,
		Checksum:   &checksum,
		Metadata:   documentMetadata(doc),
	}
	if status != domain.StatusScheduled {
		statusValue := string(status)
		req.Status = &statusValue
	}

	wasScheduled := existing.PublishAt != nil

	updated, err := i.posts.Update(ctx, req)
	if err != nil {
		return fmt.Errorf("markdown importer: update post %s: %w", existing.Slug, err)
	}
	acc.updated(updated.ID)

	if status == domain.StatusScheduled {
		if err := i.schedulePublish(ctx, updated.ID, doc.FrontMatter.Date); err != nil {
			return err
		}
		acc.scheduled(updated.ID)
	} else if wasScheduled {
		if err := i.cancelSchedule(ctx, updated.ID); err != nil {
			return err
		}
	}

	logging.WithMarkdownContext(logger, "", "", "update").Info("markdown importer: refreshed post", "status", string(status))
	return nil
}

// schedulePublish registers the scheduler job backing a future-dated post.
// When scheduling is disabled the post still carries its publish timestamp;
// only the automatic dispatch is missing.
func (i *Importer) schedulePublish(ctx context.Context, id uuid.UUID, at time.Time) error {
	runAt := at
	if _, err := i.posts.Schedule(ctx, posts.SchedulePostRequest{ID: id, PublishAt: &runAt}); err != nil {
		if errors.Is(err, posts.ErrSchedulingDisabled) {
			return nil
		}
		return fmt.Errorf("markdown importer: schedule post %s: %w", id, err)
	}
	return nil
}

func (i *Importer) cancelSchedule(ctx context.Context, id uuid.UUID) error {
	if _, err := i.posts.Schedule(ctx, posts.SchedulePostRequest{ID: id, PublishAt: nil}); err != nil {
		if errors.Is(err, posts.ErrSchedulingDisabled) {
			return nil
		}
		return fmt.Errorf("markdown importer: cancel schedule %s: %w", id, err)
	}
	return nil
}

// archiveOrphaned retires stored posts whose source files vanished from the
// corpus. Only file-backed posts participate; entries created through the API
// have no source path and are left alone. Nothing is ever deleted.
func (i *Importer) archiveOrphaned(ctx context.Context, docs map[string][]*interfaces.Document, opts interfaces.SyncOptions, acc *syncAccumulator) error {
	existing, err := i.posts.List(ctx, posts.ListOptions{})
	if err != nil {
		return fmt.Errorf("markdown importer: list posts: %w", err)
	}

	docSlugs := make(map[string]struct{}, len(docs))
	for slug := range docs {
		docSlugs[slug] = struct{}{}
	}

	for _, record := range existing {
		if record == nil || record.SourcePath == nil {
			continue
		}
		if _, ok := docSlugs[record.Slug]; ok {
			continue
		}
		if record.Status == domain.StatusArchived {
			continue
		}
		if opts.DryRun {
			acc.archived++
			continue
		}
		if _, err := i.posts.Archive(ctx, posts.ArchivePostRequest{
			ID:     record.ID,
			Reason: "source file removed",
		}); err != nil {
			return fmt.Errorf("markdown importer: archive orphan %s: %w", record.Slug, err)
		}
		logging.WithMarkdownContext(i.logger, *record.SourcePath, record.Slug, "archive").Info("markdown importer: archived orphaned post")
		acc.archived++
	}

	return nil
}

func (i *Importer) lookupPost(ctx context.Context, slug string) (*posts.Post, error) {
	record, err := i.posts.GetBySlug(ctx, slug)
	if err != nil {
		if posts.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return record, nil
}

// statusForDocument maps front-matter onto a lifecycle status. An explicit
// draft flag wins: true parks the entry, false publishes it now or schedules
// it when the date is still ahead. Without the flag an explicit status key
// applies, then the configured default.
func (i *Importer) statusForDocument(doc *interfaces.Document, opts interfaces.ImportOptions) domain.Status {
	if value, ok := draftFlag(doc.FrontMatter); ok {
		if value {
			return domain.StatusDraft
		}
		if !doc.FrontMatter.Date.IsZero() && doc.FrontMatter.Date.After(i.now()) {
			return domain.StatusScheduled
		}
		return domain.StatusPublished
	}

	if raw := strings.TrimSpace(doc.FrontMatter.Status); raw != "" {
		return domain.ParseStatus(raw)
	}
	if fallback := strings.TrimSpace(opts.DefaultStatus); fallback != "" {
		return domain.ParseStatus(fallback)
	}
	return domain.StatusDraft
}

// canonicalDocument picks which source wins when several files carry the same
// slug: a live entry beats a draft, then the latest front-matter date, then
// the newest modification time. Runner-ups stay on disk for lint to report.
func (i *Importer) canonicalDocument(docs []*interfaces.Document) *interfaces.Document {
	best := docs[0]
	for _, candidate := range docs[1:] {
		if i.preferDocument(candidate, best) {
			best = candidate
		}
	}
	return best
}

func (i *Importer) preferDocument(candidate, current *interfaces.Document) bool {
	if candidate == nil {
		return false
	}
	if current == nil {
		return true
	}

	now := i.now()
	candidateRank := documentRank(candidate, now)
	currentRank := documentRank(current, now)
	if candidateRank != currentRank {
		return candidateRank > currentRank
	}
	if !candidate.FrontMatter.Date.Equal(current.FrontMatter.Date) {
		return candidate.FrontMatter.Date.After(current.FrontMatter.Date)
	}
	return candidate.LastModified.After(current.LastModified)
}

func documentRank(doc *interfaces.Document, now time.Time) int {
	if value, ok := draftFlag(doc.FrontMatter); ok && !value {
		if doc.FrontMatter.Date.IsZero() || !doc.FrontMatter.Date.After(now) {
			return 1
		}
	}
	return 0
}

// draftFlag reports the draft value and whether the key was present at all,
// so a file without the flag can fall through to status defaults.
func draftFlag(meta interfaces.FrontMatter) (bool, bool) {
	if _, ok := meta.Raw["draft"]; !ok {
		return false, false
	}
	return meta.Draft, true
}

func validateDocument(doc *interfaces.Document) error {
	if doc == nil {
		return errors.New("markdown importer: nil document")
	}
	if groupKey(doc) == "" {
		return ErrSlugMissing
	}
	return nil
}

func groupKey(doc *interfaces.Document) string {
	if doc == nil {
		return ""
	}
	if slug := strings.TrimSpace(doc.Slug); slug != "" {
		return slug
	}
	return strings.TrimSpace(doc.FrontMatter.Slug)
}

func groupBySlug(docs []*interfaces.Document) map[string][]*interfaces.Document {
	result := map[string][]*interfaces.Document{}
	for _, doc := range docs {
		key := groupKey(doc)
		result[key] = append(result[key], doc)
	}
	return result
}

func sortedKeys(groups map[string][]*interfaces.Document) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func sortDocuments(docs []*interfaces.Document) []*interfaces.Document {
	slices.SortFunc(docs, func(a, b *interfaces.Document) int {
		if a == nil || b == nil {
			return 0
		}
		return strings.Compare(a.FilePath, b.FilePath)
	})
	return docs
}

func documentMetadata(doc *interfaces.Document) map[string]any {
	return map[string]any{
		"source":       "markdown",
		"front_matter": cloneMap(doc.FrontMatter.Raw),
	}
}

func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

type importAccumulator struct {
	createdIDs   []uuid.UUID
	updatedIDs   []uuid.UUID
	skippedIDs   []uuid.UUID
	scheduledIDs []uuid.UUID
	errors       []error
}

func newImportAccumulator() *importAccumulator {
	return &importAccumulator{
		createdIDs:   []uuid.UUID{},
		updatedIDs:   []uuid.UUID{},
		skippedIDs:   []uuid.UUID{},
		scheduledIDs: []uuid.UUID{},
		errors:       []error{},
	}
}

func (a *importAccumulator) created(id uuid.UUID) {
	if id != uuid.Nil {
		a.createdIDs = append(a.createdIDs, id)
	}
}

func (a *importAccumulator) updated(id uuid.UUID) {
	if id != uuid.Nil {
		a.updatedIDs = append(a.updatedIDs, id)
	}
}

func (a *importAccumulator) skip(id uuid.UUID) {
	if id != uuid.Nil {
		a.skippedIDs = append(a.skippedIDs, id)
	}
}

func (a *importAccumulator) scheduled(id uuid.UUID) {
	if id != uuid.Nil {
		a.scheduledIDs = append(a.scheduledIDs, id)
	}
}

func (a *importAccumulator) addError(err error) {
	if err != nil {
		a.errors = append(a.errors, err)
	}
}

func (a *importAccumulator) result() *interfaces.ImportResult {
	return &interfaces.ImportResult{
		CreatedPostIDs:   a.createdIDs,
		UpdatedPostIDs:   a.updatedIDs,
		SkippedPostIDs:   a.skippedIDs,
		ScheduledPostIDs: a.scheduledIDs,
		Errors:           a.errors,
	}
}

type syncAccumulator struct {
	created   int
	updated   int
	skipped   int
	scheduled int
	archived  int
	errors    []error
}

func newSyncAccumulator() *syncAccumulator {
	return &syncAccumulator{
		errors: []error{},
	}
}

func (s *syncAccumulator) merge(res *interfaces.ImportResult) {
	if res == nil {
		return
	}
	s.created += len(res.CreatedPostIDs)
	s.updated += len(res.UpdatedPostIDs)
	s.skipped += len(res.SkippedPostIDs)
	s.scheduled += len(res.ScheduledPostIDs)
	s.errors = append(s.errors, res.Errors...)
}

func (s *syncAccumulator) addError(err error) {
	if err != nil {
		s.errors = append(s.errors, err)
	}
}

func (s *syncAccumulator) result() *interfaces.SyncResult {
	return &interfaces.SyncResult{
		Created:   s.created,
		Updated:   s.updated,
		Skipped:   s.skipped,
		Scheduled: s.scheduled,
		Archived:  s.archived,
		Errors:    s.errors,
	}
}

func firstError(errs []error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
