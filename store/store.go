// Copyright (c) ArtifactFlow Authors.
// Licensed under the MIT License.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/BaSui01/artifactflow/internal/cache"
	"github.com/BaSui01/artifactflow/internal/metrics"
	"github.com/BaSui01/artifactflow/storage"
	"github.com/BaSui01/artifactflow/summarize"
	"github.com/BaSui01/artifactflow/types"
	"github.com/BaSui01/artifactflow/validate"
)

// tempArtifactID is the placeholder id of the throwaway shell used by
// StoreValidatedArtifact to validate content before anything is
// persisted.
const tempArtifactID = "temp"

// Options configures the store facade.
type Options struct {
	// MaxCacheSize bounds the in-process content cache. Zero means
	// cache.DefaultMaxSize. Ignored when Cache is set.
	MaxCacheSize int

	// MaxBriefLength caps summary briefs. Zero means
	// summarize.DefaultMaxBriefLength.
	MaxBriefLength int

	// ArchiveOlderThan is the archive age cutoff applied when an
	// archive batch does not specify one. Zero leaves batches without
	// a cutoff as-is.
	ArchiveOlderThan time.Duration

	// Cache overrides the default in-process FIFO cache, e.g. with the
	// Redis backend.
	Cache cache.Cache

	// Collector receives store metrics. May be nil.
	Collector *metrics.Collector
}

// StoreArtifactOptions is the write-path request.
type StoreArtifactOptions struct {
	Type     types.ArtifactType `json:"type"`
	Producer string             `json:"producer"`
	Content  string             `json:"content"`
	Metadata map[string]any     `json:"metadata,omitempty"`
}

// UpdateOptions is the mutation request. Nil fields are left untouched;
// Metadata is shallow-merged, never wholesale replaced.
type UpdateOptions struct {
	Content  *string               `json:"content,omitempty"`
	Status   *types.ArtifactStatus `json:"status,omitempty"`
	Metadata map[string]any        `json:"metadata,omitempty"`
}

// Store orchestrates summarization, persistence, validation, indexing
// and caching behind the operations the agent pipeline consumes.
type Store struct {
	persist    storage.Store
	validator  *validate.Validator
	summarizer *summarize.Summarizer
	index      *Index
	cache      cache.Cache
	collector  *metrics.Collector
	logger     *zap.Logger

	loadGroup        singleflight.Group
	updateLocks      *keyedMutex
	archiveOlderThan time.Duration
	now              func() time.Time
}

// NewStore wires the facade and rebuilds the index from persisted
// metadata.
func NewStore(ctx context.Context, persist storage.Store, validator *validate.Validator, logger *zap.Logger, opts Options) (*Store, error) {
	if persist == nil {
		return nil, types.NewError(types.ErrInvalidArgument, "persistence layer is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if validator == nil {
		validator = validate.NewValidator(logger, opts.Collector)
	}

	contentCache := opts.Cache
	if contentCache == nil {
		contentCache = cache.NewFIFOCache(opts.MaxCacheSize)
	}

	s := &Store{
		persist:          persist,
		validator:        validator,
		summarizer:       summarize.New(opts.MaxBriefLength),
		index:            NewIndex(),
		cache:            contentCache,
		collector:        opts.Collector,
		logger:           logger.With(zap.String("component", "artifact_store")),
		updateLocks:      newKeyedMutex(),
		archiveOlderThan: opts.ArchiveOlderThan,
		now:              time.Now,
	}

	artifacts, err := persist.LoadAllMetadata(ctx)
	if err != nil {
		return nil, types.NewError(types.ErrStorageFailure, "failed to rebuild artifact index").WithCause(err)
	}
	s.index.Rebuild(artifacts)

	s.logger.Info("artifact store initialized", zap.Int("indexed", s.index.Count()))
	return s, nil
}

// generateID builds "{type}_{timestamp}_{random}": monotonic-ish and
// collision-resistant via the random suffix.
func (s *Store) generateID(artifactType types.ArtifactType) string {
	suffix := uuid.NewString()[:8]
	return fmt.Sprintf("%s_%d_%s", artifactType, s.now().UnixMilli(), suffix)
}

// StoreArtifact persists a new artifact: summarize, write content then
// metadata, index, cache. It only fails when persistence fails.
func (s *Store) StoreArtifact(ctx context.Context, opts StoreArtifactOptions) (*types.Artifact, error) {
	id := s.generateID(opts.Type)
	now := s.now().UnixMilli()

	info, err := s.persist.SaveContent(ctx, id, opts.Content)
	if err != nil {
		return nil, types.NewError(types.ErrStorageFailure,
			fmt.Sprintf("failed to persist content for %s", id)).WithArtifactID(id).WithCause(err)
	}

	artifact := &types.Artifact{
		ID:         id,
		Type:       opts.Type,
		Status:     types.StatusInProgress,
		Producer:   opts.Producer,
		CreatedAt:  now,
		UpdatedAt:  now,
		Version:    1,
		Summary:    s.summarizer.GenerateSummary(opts.Type, opts.Content),
		Metadata:   types.MergeMetadata(nil, opts.Metadata),
		ContentRef: info.ContentRef,
	}

	if err := s.persist.SaveMetadata(ctx, artifact); err != nil {
		return nil, types.NewError(types.ErrStorageFailure,
			fmt.Sprintf("failed to persist metadata for %s", id)).WithArtifactID(id).WithCause(err)
	}

	s.index.Add(artifact)
	if err := s.cache.Set(ctx, id, opts.Content); err != nil {
		s.logger.Warn("failed to cache artifact content", zap.String("id", id), zap.Error(err))
	}

	if s.collector != nil {
		s.collector.RecordStored(string(opts.Type))
	}

	s.logger.Info("artifact stored",
		zap.String("id", id),
		zap.String("type", string(opts.Type)),
		zap.String("producer", opts.Producer),
		zap.Int64("size", info.Size),
	)

	return artifact, nil
}

// StoreValidatedArtifact validates the intended content against a
// throwaway artifact shell and persists only when validation passes.
// No invalid artifact is ever persisted through this path.
func (s *Store) StoreValidatedArtifact(ctx context.Context, opts StoreArtifactOptions, validationOpts *validate.Options) (*types.Artifact, error) {
	shell := &types.Artifact{
		ID:       tempArtifactID,
		Type:     opts.Type,
		Status:   types.StatusInProgress,
		Producer: opts.Producer,
		Version:  1,
	}

	result := s.validator.ValidateArtifact(shell, opts.Content, validationOpts)
	if !result.Valid {
		return nil, types.NewError(types.ErrValidationFailed,
			fmt.Sprintf("artifact validation failed: %s", result.ErrorSummary()))
	}

	return s.StoreArtifact(ctx, opts)
}

// UpdateArtifact mutates content, status and/or metadata of an existing
// artifact. Content changes bump the version, regenerate the summary
// and rewrite the blob under the same content reference. Updates to the
// same id are serialized.
func (s *Store) UpdateArtifact(ctx context.Context, id string, opts UpdateOptions) (*types.Artifact, error) {
	unlock := s.updateLocks.Lock(id)
	defer unlock()

	artifact, err := s.loadRequired(ctx, id)
	if err != nil {
		return nil, err
	}

	artifact.UpdatedAt = s.now().UnixMilli()

	if opts.Content != nil {
		artifact.Version++
		artifact.Summary = s.summarizer.GenerateSummary(artifact.Type, *opts.Content)

		// Same id, same contentRef: overwrite, not append.
		if _, err := s.persist.SaveContent(ctx, id, *opts.Content); err != nil {
			return nil, types.NewError(types.ErrStorageFailure,
				fmt.Sprintf("failed to rewrite content for %s", id)).WithArtifactID(id).WithCause(err)
		}
		if err := s.cache.Set(ctx, id, *opts.Content); err != nil {
			s.logger.Warn("failed to refresh cached content", zap.String("id", id), zap.Error(err))
		}
	}

	if opts.Status != nil {
		artifact.Status = *opts.Status
	}

	if opts.Metadata != nil {
		artifact.Metadata = types.MergeMetadata(artifact.Metadata, opts.Metadata)
	}

	if err := s.persist.SaveMetadata(ctx, artifact); err != nil {
		return nil, types.NewError(types.ErrStorageFailure,
			fmt.Sprintf("failed to persist metadata for %s", id)).WithArtifactID(id).WithCause(err)
	}

	s.index.Update(artifact)
	if s.collector != nil {
		s.collector.RecordUpdated(string(artifact.Type))
	}

	return artifact, nil
}

// UpdateStatus is the minimal mutation: status and updated_at only. The
// version is never bumped.
func (s *Store) UpdateStatus(ctx context.Context, id string, status types.ArtifactStatus) (*types.Artifact, error) {
	return s.UpdateArtifact(ctx, id, UpdateOptions{Status: &status})
}

// GetArtifact returns the index projection for id, or nil when the
// artifact is not indexed. The summary is intentionally blank in the
// projection; callers needing it must load metadata.
func (s *Store) GetArtifact(id string) *types.Artifact {
	entry, ok := s.index.Get(id)
	if !ok {
		return nil
	}
	return projectEntry(entry)
}

// LoadArtifactContent resolves an artifact's content: cache hit
// short-circuits, otherwise metadata resolves the content reference and
// the blob is loaded from disk and cached. storage.ErrNotFound when
// either metadata or content is missing.
func (s *Store) LoadArtifactContent(ctx context.Context, id string) (string, error) {
	if content, err := s.cache.Get(ctx, id); err == nil {
		if s.collector != nil {
			s.collector.RecordCacheHit()
		}
		return content, nil
	} else if !cache.IsCacheMiss(err) {
		s.logger.Warn("content cache lookup failed", zap.String("id", id), zap.Error(err))
	}

	if s.collector != nil {
		s.collector.RecordCacheMiss()
	}

	// Concurrent misses for the same id collapse into one disk read.
	content, err, _ := s.loadGroup.Do(id, func() (any, error) {
		artifact, err := s.persist.LoadMetadata(ctx, id)
		if err != nil {
			return nil, err
		}

		loaded, err := s.persist.LoadContent(ctx, artifact.ContentRef)
		if err != nil {
			return nil, err
		}

		if cacheErr := s.cache.Set(ctx, id, loaded); cacheErr != nil {
			s.logger.Warn("failed to cache loaded content", zap.String("id", id), zap.Error(cacheErr))
		}
		return loaded, nil
	})
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", storage.ErrNotFound
		}
		return "", types.NewError(types.ErrStorageFailure,
			fmt.Sprintf("failed to load content for %s", id)).WithArtifactID(id).WithCause(err)
	}

	return content.(string), nil
}

// ValidateBeforeDownstream loads the artifact's metadata and content
// and runs the downstream validation gate. Missing metadata or content
// is an error here, unlike the plain read paths.
func (s *Store) ValidateBeforeDownstream(ctx context.Context, id string) error {
	artifact, err := s.persist.LoadMetadata(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.NewError(types.ErrArtifactNotFound,
				fmt.Sprintf("artifact not found: %s", id)).WithArtifactID(id)
		}
		return err
	}

	content, err := s.LoadArtifactContent(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.NewError(types.ErrContentUnresolved,
				fmt.Sprintf("content not found for artifact: %s", id)).WithArtifactID(id)
		}
		return err
	}

	return s.validator.ValidateBeforeDownstream(artifact, content)
}

// QueryArtifacts returns lightweight projections matching the filter,
// in creation order.
func (s *Store) QueryArtifacts(opts QueryOptions) []*types.Artifact {
	entries := s.index.Query(opts)
	out := make([]*types.Artifact, 0, len(entries))
	for _, entry := range entries {
		out = append(out, projectEntry(entry))
	}
	return out
}

// GetArtifactsByType is a convenience wrapper over QueryArtifacts.
func (s *Store) GetArtifactsByType(artifactType types.ArtifactType) []*types.Artifact {
	return s.QueryArtifacts(QueryOptions{Type: artifactType})
}

// GetArtifactsByProducer is a convenience wrapper over QueryArtifacts.
func (s *Store) GetArtifactsByProducer(producer string) []*types.Artifact {
	return s.QueryArtifacts(QueryOptions{Producer: producer})
}

// GetArtifactsByStatus is a convenience wrapper over QueryArtifacts.
func (s *Store) GetArtifactsByStatus(status types.ArtifactStatus) []*types.Artifact {
	return s.QueryArtifacts(QueryOptions{Status: status})
}

// GetAllSummaries loads every artifact's summary from persisted
// metadata.
func (s *Store) GetAllSummaries(ctx context.Context) ([]types.ArtifactSummary, error) {
	artifacts, err := s.persist.LoadAllMetadata(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]types.ArtifactSummary, 0, len(artifacts))
	for _, artifact := range artifacts {
		summaries = append(summaries, artifact.Summary)
	}
	return summaries, nil
}

// ArchiveOldArtifacts relocates old artifacts in archivable statuses to
// the archive area and drops them from the index and cache. A batch
// without an age cutoff falls back to the configured default.
func (s *Store) ArchiveOldArtifacts(ctx context.Context, opts storage.ArchiveOptions) (storage.ArchiveResult, error) {
	if opts.OlderThan <= 0 {
		opts.OlderThan = s.archiveOlderThan
	}

	artifacts, err := s.persist.LoadAllMetadata(ctx)
	if err != nil {
		return storage.ArchiveResult{}, err
	}

	result, err := s.persist.ArchiveOldArtifacts(ctx, artifacts, opts)
	if err != nil {
		return result, err
	}

	for _, id := range result.ArchivedIDs {
		s.index.Remove(id)
		if err := s.cache.Delete(ctx, id); err != nil {
			s.logger.Warn("failed to drop archived content from cache", zap.String("id", id), zap.Error(err))
		}
	}

	if s.collector != nil && result.ArchivedCount > 0 {
		s.collector.RecordArchived(result.ArchivedCount)
	}

	return result, nil
}

// DeleteArtifact hard-deletes an artifact's metadata and content.
// Deleting an unknown id is an error.
func (s *Store) DeleteArtifact(ctx context.Context, id string) error {
	unlock := s.updateLocks.Lock(id)
	defer unlock()

	artifact, err := s.loadRequired(ctx, id)
	if err != nil {
		return err
	}

	if err := s.persist.Delete(ctx, artifact); err != nil {
		return err
	}

	s.index.Remove(id)
	if err := s.cache.Delete(ctx, id); err != nil {
		s.logger.Warn("failed to drop deleted content from cache", zap.String("id", id), zap.Error(err))
	}

	if s.collector != nil {
		s.collector.RecordDeleted(string(artifact.Type))
	}

	s.logger.Info("artifact deleted", zap.String("id", id))
	return nil
}

// Clear wipes the live store: persisted content and metadata, the
// index, and the cache. The archive is untouched.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.persist.Clear(ctx); err != nil {
		return err
	}
	s.index.Clear()
	return s.cache.Clear(ctx)
}

// GetStorageStats returns persistence statistics and refreshes the
// content size gauge.
func (s *Store) GetStorageStats(ctx context.Context) (*storage.Stats, error) {
	stats, err := s.persist.GetStorageStats(ctx)
	if err != nil {
		return nil, err
	}
	if s.collector != nil {
		s.collector.SetContentBytes(stats.TotalContentBytes)
	}
	return stats, nil
}

// Validator exposes the underlying validator for rule management and
// direct stage access.
func (s *Store) Validator() *validate.Validator {
	return s.validator
}

// AddValidationRule registers a custom validation rule.
func (s *Store) AddValidationRule(rule *validate.Rule) error {
	return s.validator.AddValidationRule(rule)
}

// RemoveValidationRule unregisters a custom validation rule.
func (s *Store) RemoveValidationRule(id string) bool {
	return s.validator.RemoveValidationRule(id)
}

// GetValidationStatistics returns a snapshot of the validator counters.
func (s *Store) GetValidationStatistics() validate.Statistics {
	return s.validator.GetStatistics()
}

// ComputeContentHash returns the SHA-256 hex digest of content.
func (s *Store) ComputeContentHash(content string) string {
	return validate.ComputeContentHash(content, validate.DefaultHashAlgorithm)
}

// Close releases the content cache.
func (s *Store) Close() error {
	return s.cache.Close()
}

// loadRequired loads metadata for mutation entry points, which error on
// missing artifacts instead of returning nil.
func (s *Store) loadRequired(ctx context.Context, id string) (*types.Artifact, error) {
	artifact, err := s.persist.LoadMetadata(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, types.NewError(types.ErrArtifactNotFound,
				fmt.Sprintf("artifact not found: %s", id)).WithArtifactID(id)
		}
		return nil, err
	}
	return artifact, nil
}

// projectEntry builds the lightweight artifact projection returned by
// query and get operations. The summary stays blank on purpose.
func projectEntry(entry *IndexEntry) *types.Artifact {
	artifact := &types.Artifact{
		ID:         entry.ID,
		Type:       entry.Type,
		Status:     entry.Status,
		Producer:   entry.Producer,
		CreatedAt:  entry.CreatedAt,
		UpdatedAt:  entry.UpdatedAt,
		ContentRef: entry.ContentRef,
	}
	if entry.ParentArtifactID != "" {
		artifact.Metadata = map[string]any{types.MetaParentArtifactID: entry.ParentArtifactID}
	}
	return artifact
}
