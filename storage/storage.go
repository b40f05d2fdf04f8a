// Package storage provides the durable persistence layer for artifacts:
// metadata and content blobs on the local filesystem, plus an archive
// area for retired artifacts.
//
// Not-found is a first-class, non-exceptional outcome and is reported
// via ErrNotFound; every other I/O failure propagates to the caller
// unchanged.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/BaSui01/artifactflow/types"
)

// Common errors
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

// ContentInfo describes a persisted content blob.
type ContentInfo struct {
	// ContentRef is the opaque locator for the blob, resolvable by
	// LoadContent. References are keyed by artifact id, not by hash.
	ContentRef string `json:"content_ref"`

	// Hash is the SHA-256 hex digest of the content, for integrity
	// checks and telemetry. Storage does not deduplicate by hash.
	Hash string `json:"hash"`

	// Size is the content length in bytes.
	Size int64 `json:"size"`
}

// ArchiveOptions selects which artifacts an archive batch may retire.
type ArchiveOptions struct {
	// OlderThan is the minimum age (against updated_at) for archiving.
	OlderThan time.Duration `json:"older_than" yaml:"older_than"`

	// Statuses is the allow-list of archivable statuses. Empty means
	// DefaultArchivableStatuses.
	Statuses []types.ArtifactStatus `json:"statuses,omitempty" yaml:"statuses,omitempty"`
}

// DefaultArchivableStatuses returns the statuses archived when the
// caller does not narrow the allow-list.
func DefaultArchivableStatuses() []types.ArtifactStatus {
	return []types.ArtifactStatus{types.StatusCompleted, types.StatusApproved}
}

// ArchiveResult reports the outcome of one archive batch.
type ArchiveResult struct {
	ArchivedCount int      `json:"archived_count"`
	ArchivedIDs   []string `json:"archived_ids"`
}

// Stats summarizes the live store contents.
type Stats struct {
	TotalArtifacts    int   `json:"total_artifacts"`
	TotalContentBytes int64 `json:"total_content_bytes"`
	OldestCreatedAt   int64 `json:"oldest_created_at"`
	NewestCreatedAt   int64 `json:"newest_created_at"`
}

// Store is the persistence contract consumed by the artifact store
// facade. It holds no business rules, only storage operations.
type Store interface {
	// SaveMetadata serializes the artifact to pretty JSON, fully
	// overwriting any previous metadata record.
	SaveMetadata(ctx context.Context, artifact *types.Artifact) error

	// SaveContent writes the raw content blob for the artifact id and
	// returns its locator, SHA-256 hash and byte size.
	SaveContent(ctx context.Context, id, content string) (ContentInfo, error)

	// LoadMetadata returns ErrNotFound when no record exists.
	LoadMetadata(ctx context.Context, id string) (*types.Artifact, error)

	// LoadContent resolves a content reference. ErrNotFound when the
	// blob is missing.
	LoadContent(ctx context.Context, contentRef string) (string, error)

	// Delete removes metadata and content. Missing files are ignored;
	// other errors propagate.
	Delete(ctx context.Context, artifact *types.Artifact) error

	// ArchiveOldArtifacts moves eligible artifacts from the candidate
	// set into the archive area. Each artifact is archived
	// independently; per-artifact failures are logged and skipped.
	ArchiveOldArtifacts(ctx context.Context, artifacts []*types.Artifact, opts ArchiveOptions) (ArchiveResult, error)

	// LoadAllMetadata enumerates every metadata record, skipping files
	// that fail to parse. Used for index rebuild and full scans.
	LoadAllMetadata(ctx context.Context) ([]*types.Artifact, error)

	// GetStorageStats returns best-effort store statistics.
	GetStorageStats(ctx context.Context) (*Stats, error)

	// Clear removes and recreates the live content and metadata areas.
	// The archive is untouched.
	Clear(ctx context.Context) error
}
