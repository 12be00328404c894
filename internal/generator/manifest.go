package generator

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ManifestFileName is the manifest's location inside the output directory.
// The export command reads it to verify a build before packaging.
const ManifestFileName = ".generator-manifest.json"

const manifestFileVersion = 1

// Manifest records what the last build produced so later runs can skip
// unchanged work, prune stale artifacts, and prove the output directory
// still matches what was generated.
type Manifest struct {
	Version     int                        `json:"version"`
	GeneratedAt time.Time                  `json:"generated_at"`
	Posts       map[string]ManifestPost    `json:"posts"`
	Pages       map[string]ManifestPage    `json:"pages"`
	Assets      map[string]ManifestAsset   `json:"assets"`
	Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
}

// ManifestPost tracks a rendered post page.
type ManifestPost struct {
	PostID       string    `json:"post_id"`
	Slug         string    `json:"slug"`
	Route        string    `json:"route"`
	Output       string    `json:"output"`
	Template     string    `json:"template"`
	Hash         string    `json:"hash"`
	Checksum     string    `json:"checksum"`
	LastModified time.Time `json:"last_modified"`
	RenderedAt   time.Time `json:"rendered_at"`
}

// ManifestPage tracks an aggregate artifact: the home index, tag and
// archive pages, feeds, the sitemap, and robots.txt.
type ManifestPage struct {
	Key        string    `json:"key"`
	Kind       string    `json:"kind"`
	Route      string    `json:"route"`
	Output     string    `json:"output"`
	Checksum   string    `json:"checksum"`
	RenderedAt time.Time `json:"rendered_at"`
}

// ManifestAsset tracks a copied static file.
type ManifestAsset struct {
	Key      string    `json:"key"`
	Theme    string    `json:"theme,omitempty"`
	Source   string    `json:"source"`
	Output   string    `json:"output"`
	Checksum string    `json:"checksum"`
	Size     int64     `json:"size"`
	CopiedAt time.Time `json:"copied_at"`
}

// ManifestArtifact is the flattened view of a tracked output file.
type ManifestArtifact struct {
	Output   string
	Checksum string
}

// NewManifest returns an empty manifest at the current version.
func NewManifest() *Manifest {
	return &Manifest{
		Version:  manifestFileVersion,
		Posts:    map[string]ManifestPost{},
		Pages:    map[string]ManifestPage{},
		Assets:   map[string]ManifestAsset{},
		Metadata: map[string]json.RawMessage{},
	}
}

// ParseManifest decodes manifest JSON, tolerating missing maps from older
// or hand-truncated files.
func ParseManifest(data []byte) (*Manifest, error) {
	if len(data) == 0 {
		return NewManifest(), nil
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("generator: parse manifest: %w", err)
	}
	if manifest.Posts == nil {
		manifest.Posts = map[string]ManifestPost{}
	}
	if manifest.Pages == nil {
		manifest.Pages = map[string]ManifestPage{}
	}
	if manifest.Assets == nil {
		manifest.Assets = map[string]ManifestAsset{}
	}
	if manifest.Metadata == nil {
		manifest.Metadata = map[string]json.RawMessage{}
	}
	if manifest.Version == 0 {
		manifest.Version = manifestFileVersion
	}
	return &manifest, nil
}

// ReadManifestDir loads the manifest from an output directory on disk.
// A missing file surfaces as an fs.ErrNotExist wrapped error so callers
// can distinguish "never built" from a corrupt manifest.
func ReadManifestDir(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("generator: read manifest: %w", err)
	}
	return ParseManifest(data)
}

// Marshal serializes the manifest with entries sorted by key so repeated
// builds of identical content produce identical bytes.
func (m *Manifest) Marshal() ([]byte, error) {
	if m == nil {
		return nil, nil
	}
	type orderedManifest struct {
		Version     int                        `json:"version"`
		GeneratedAt time.Time                  `json:"generated_at"`
		Posts       []ManifestPost             `json:"posts"`
		Pages       []ManifestPage             `json:"pages"`
		Assets      []ManifestAsset            `json:"assets"`
		Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
	}
	ordered := orderedManifest{
		Version:     m.Version,
		GeneratedAt: m.GeneratedAt,
		Metadata:    m.Metadata,
	}
	if ordered.Version == 0 {
		ordered.Version = manifestFileVersion
	}
	if len(m.Posts) > 0 {
		ordered.Posts = make([]ManifestPost, 0, len(m.Posts))
		for _, entry := range m.Posts {
			ordered.Posts = append(ordered.Posts, entry)
		}
		sort.Slice(ordered.Posts, func(i, j int) bool {
			if ordered.Posts[i].Slug == ordered.Posts[j].Slug {
				return ordered.Posts[i].PostID < ordered.Posts[j].PostID
			}
			return ordered.Posts[i].Slug < ordered.Posts[j].Slug
		})
	}
	if len(m.Pages) > 0 {
		ordered.Pages = make([]ManifestPage, 0, len(m.Pages))
		for _, entry := range m.Pages {
			ordered.Pages = append(ordered.Pages, entry)
		}
		sort.Slice(ordered.Pages, func(i, j int) bool {
			return ordered.Pages[i].Key < ordered.Pages[j].Key
		})
	}
	if len(m.Assets) > 0 {
		ordered.Assets = make([]ManifestAsset, 0, len(m.Assets))
		for _, entry := range m.Assets {
			ordered.Assets = append(ordered.Assets, entry)
		}
		sort.Slice(ordered.Assets, func(i, j int) bool {
			return ordered.Assets[i].Key < ordered.Assets[j].Key
		})
	}
	return json.MarshalIndent(ordered, "", "  ")
}

// UnmarshalJSON accepts both the map layout used in memory and the sorted
// slice layout Marshal writes.
func (m *Manifest) UnmarshalJSON(data []byte) error {
	var onDisk struct {
		Version     int                        `json:"version"`
		GeneratedAt time.Time                  `json:"generated_at"`
		Posts       []ManifestPost             `json:"posts"`
		Pages       []ManifestPage             `json:"pages"`
		Assets      []ManifestAsset            `json:"assets"`
		Metadata    map[string]json.RawMessage `json:"metadata,omitempty"`
	}
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return err
	}
	m.Version = onDisk.Version
	m.GeneratedAt = onDisk.GeneratedAt
	m.Metadata = onDisk.Metadata
	m.Posts = make(map[string]ManifestPost, len(onDisk.Posts))
	for _, entry := range onDisk.Posts {
		m.Posts[strings.ToLower(strings.TrimSpace(entry.PostID))] = entry
	}
	m.Pages = make(map[string]ManifestPage, len(onDisk.Pages))
	for _, entry := range onDisk.Pages {
		m.Pages[entry.Key] = entry
	}
	m.Assets = make(map[string]ManifestAsset, len(onDisk.Assets))
	for _, entry := range onDisk.Assets {
		m.Assets[entry.Key] = entry
	}
	return nil
}

// Artifacts lists every tracked output file, sorted by path.
func (m *Manifest) Artifacts() []ManifestArtifact {
	if m == nil {
		return nil
	}
	artifacts := make([]ManifestArtifact, 0, len(m.Posts)+len(m.Pages)+len(m.Assets))
	for _, entry := range m.Posts {
		artifacts = append(artifacts, ManifestArtifact{Output: entry.Output, Checksum: entry.Checksum})
	}
	for _, entry := range m.Pages {
		artifacts = append(artifacts, ManifestArtifact{Output: entry.Output, Checksum: entry.Checksum})
	}
	for _, entry := range m.Assets {
		artifacts = append(artifacts, ManifestArtifact{Output: entry.Output, Checksum: entry.Checksum})
	}
	sort.Slice(artifacts, func(i, j int) bool {
		return artifacts[i].Output < artifacts[j].Output
	})
	return artifacts
}

func (m *Manifest) postKey(postID uuid.UUID) string {
	return strings.ToLower(postID.String())
}

func (m *Manifest) lookupPost(postID uuid.UUID) (ManifestPost, bool) {
	if m == nil || len(m.Posts) == 0 {
		return ManifestPost{}, false
	}
	entry, ok := m.Posts[m.postKey(postID)]
	return entry, ok
}

func (m *Manifest) setPost(entry ManifestPost) {
	if m == nil {
		return
	}
	if m.Posts == nil {
		m.Posts = map[string]ManifestPost{}
	}
	m.Posts[strings.ToLower(strings.TrimSpace(entry.PostID))] = entry
}

func (m *Manifest) shouldSkipPost(postID uuid.UUID, hash, output string) bool {
	entry, ok := m.lookupPost(postID)
	if !ok {
		return false
	}
	if entry.Hash != hash {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

func (m *Manifest) lookupPage(key string) (ManifestPage, bool) {
	if m == nil || len(m.Pages) == 0 {
		return ManifestPage{}, false
	}
	entry, ok := m.Pages[key]
	return entry, ok
}

func (m *Manifest) setPage(entry ManifestPage) {
	if m == nil {
		return
	}
	if m.Pages == nil {
		m.Pages = map[string]ManifestPage{}
	}
	m.Pages[entry.Key] = entry
}

func (m *Manifest) shouldSkipPage(key, checksum, output string) bool {
	entry, ok := m.lookupPage(key)
	if !ok {
		return false
	}
	if entry.Checksum != checksum {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

func (m *Manifest) lookupAsset(key string) (ManifestAsset, bool) {
	if m == nil || len(m.Assets) == 0 {
		return ManifestAsset{}, false
	}
	entry, ok := m.Assets[key]
	return entry, ok
}

func (m *Manifest) setAsset(entry ManifestAsset) {
	if m == nil {
		return
	}
	if m.Assets == nil {
		m.Assets = map[string]ManifestAsset{}
	}
	if entry.Key == "" {
		entry.Key = entry.Source
	}
	m.Assets[entry.Key] = entry
}

func (m *Manifest) shouldSkipAsset(key, checksum, output string) bool {
	entry, ok := m.lookupAsset(key)
	if !ok {
		return false
	}
	if entry.Checksum != checksum {
		return false
	}
	return strings.TrimSpace(entry.Output) == strings.TrimSpace(output)
}

// prune drops every entry whose key is absent from live and returns the
// output paths the dropped entries pointed at.
func (m *Manifest) prune(live map[string]struct{}) []string {
	if m == nil {
		return nil
	}
	var removed []string
	for key, entry := range m.Posts {
		if _, ok := live["post:"+key]; !ok {
			removed = append(removed, entry.Output)
			delete(m.Posts, key)
		}
	}
	for key, entry := range m.Pages {
		if _, ok := live["page:"+key]; !ok {
			removed = append(removed, entry.Output)
			delete(m.Pages, key)
		}
	}
	for key, entry := range m.Assets {
		if _, ok := live["asset:"+key]; !ok {
			removed = append(removed, entry.Output)
			delete(m.Assets, key)
		}
	}
	sort.Strings(removed)
	return removed
}
