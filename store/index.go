package store

import (
	"sort"
	"sync"

	"github.com/BaSui01/artifactflow/types"
)

// IndexEntry is the lightweight projection of an artifact kept in
// memory for filtered queries without touching disk.
type IndexEntry struct {
	ID               string               `json:"id"`
	Type             types.ArtifactType   `json:"type"`
	Producer         string               `json:"producer"`
	Status           types.ArtifactStatus `json:"status"`
	CreatedAt        int64                `json:"created_at"`
	UpdatedAt        int64                `json:"updated_at"`
	ContentRef       string               `json:"content_ref"`
	ParentArtifactID string               `json:"parent_artifact_id,omitempty"`
}

// QueryOptions filters index queries. Filters are exact-match and
// AND-combined; Limit/Offset page over the filtered result in creation
// order.
type QueryOptions struct {
	Type             types.ArtifactType   `json:"type,omitempty"`
	Producer         string               `json:"producer,omitempty"`
	Status           types.ArtifactStatus `json:"status,omitempty"`
	ParentArtifactID string               `json:"parent_artifact_id,omitempty"`
	Limit            int                  `json:"limit,omitempty"`
	Offset           int                  `json:"offset,omitempty"`
}

// Index is the in-memory lookup structure over artifact metadata. It is
// a projection of persisted metadata, never the source of truth: it
// must always be reconstructible via Rebuild.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*IndexEntry
	order   []string // ids in creation order
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{entries: make(map[string]*IndexEntry)}
}

func entryFromArtifact(artifact *types.Artifact) *IndexEntry {
	return &IndexEntry{
		ID:               artifact.ID,
		Type:             artifact.Type,
		Producer:         artifact.Producer,
		Status:           artifact.Status,
		CreatedAt:        artifact.CreatedAt,
		UpdatedAt:        artifact.UpdatedAt,
		ContentRef:       artifact.ContentRef,
		ParentArtifactID: artifact.ParentArtifactID(),
	}
}

// Add inserts a new entry. Adding an existing id replaces it in place.
func (ix *Index) Add(artifact *types.Artifact) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.entries[artifact.ID]; !exists {
		ix.order = append(ix.order, artifact.ID)
	}
	ix.entries[artifact.ID] = entryFromArtifact(artifact)
}

// Update replaces an entry in place, preserving its creation-order
// position. Unknown ids are added.
func (ix *Index) Update(artifact *types.Artifact) {
	ix.Add(artifact)
}

// Remove deletes an entry.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if _, exists := ix.entries[id]; !exists {
		return
	}
	delete(ix.entries, id)
	for i, candidate := range ix.order {
		if candidate == id {
			ix.order = append(ix.order[:i], ix.order[i+1:]...)
			break
		}
	}
}

// Get returns the entry for id.
func (ix *Index) Get(id string) (*IndexEntry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	entry, ok := ix.entries[id]
	if !ok {
		return nil, false
	}
	copied := *entry
	return &copied, true
}

// Has reports whether id is indexed.
func (ix *Index) Has(id string) bool {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.entries[id]
	return ok
}

// Query returns entries matching the filter in creation order.
func (ix *Index) Query(opts QueryOptions) []*IndexEntry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var matched []*IndexEntry
	for _, id := range ix.order {
		entry := ix.entries[id]
		if !matches(entry, opts) {
			continue
		}
		copied := *entry
		matched = append(matched, &copied)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(matched) {
			return []*IndexEntry{}
		}
		matched = matched[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(matched) {
		matched = matched[:opts.Limit]
	}

	return matched
}

func matches(entry *IndexEntry, opts QueryOptions) bool {
	if opts.Type != "" && entry.Type != opts.Type {
		return false
	}
	if opts.Producer != "" && entry.Producer != opts.Producer {
		return false
	}
	if opts.Status != "" && entry.Status != opts.Status {
		return false
	}
	if opts.ParentArtifactID != "" && entry.ParentArtifactID != opts.ParentArtifactID {
		return false
	}
	return true
}

// Count returns the number of indexed artifacts.
func (ix *Index) Count() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.entries)
}

// CountByType tallies indexed artifacts per type.
func (ix *Index) CountByType() map[types.ArtifactType]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	counts := make(map[types.ArtifactType]int)
	for _, entry := range ix.entries {
		counts[entry.Type]++
	}
	return counts
}

// Clear drops every entry.
func (ix *Index) Clear() {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.entries = make(map[string]*IndexEntry)
	ix.order = nil
}

// Rebuild replaces the index contents from a full metadata scan,
// restoring creation order.
func (ix *Index) Rebuild(artifacts []*types.Artifact) {
	sorted := make([]*types.Artifact, len(artifacts))
	copy(sorted, artifacts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt < sorted[j].CreatedAt
	})

	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.entries = make(map[string]*IndexEntry, len(sorted))
	ix.order = make([]string, 0, len(sorted))
	for _, artifact := range sorted {
		ix.entries[artifact.ID] = entryFromArtifact(artifact)
		ix.order = append(ix.order, artifact.ID)
	}
}
