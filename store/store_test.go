package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BaSui01/artifactflow/storage"
	"github.com/BaSui01/artifactflow/types"
	"github.com/BaSui01/artifactflow/validate"
)

func newTestStore(t *testing.T, opts Options) *Store {
	t.Helper()
	persist, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)

	s, err := NewStore(context.Background(), persist, nil, nil, opts)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// TestStoreArtifact tests the permissive write path
func TestStoreArtifact(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	artifact, err := s.StoreArtifact(ctx, StoreArtifactOptions{
		Type:     types.ArtifactTypeCode,
		Producer: "coder_agent",
		Content:  "// File: main.go\nfunc main() {}",
		Metadata: map[string]any{"parent_artifact_id": "task_1_x"},
	})
	require.NoError(t, err)

	t.Run("RecordShape", func(t *testing.T) {
		assert.Regexp(t, regexp.MustCompile(`^code_\d+_[0-9a-f]{8}$`), artifact.ID)
		assert.Equal(t, types.StatusInProgress, artifact.Status)
		assert.Equal(t, 1, artifact.Version)
		assert.Equal(t, artifact.CreatedAt, artifact.UpdatedAt)
		assert.Equal(t, artifact.ID+".content", artifact.ContentRef)
		assert.Equal(t, "Code for main.go", artifact.Summary.Brief)
		assert.Equal(t, "task_1_x", artifact.ParentArtifactID())
	})

	t.Run("ContentRoundTrip", func(t *testing.T) {
		content, err := s.LoadArtifactContent(ctx, artifact.ID)
		require.NoError(t, err)
		assert.Equal(t, "// File: main.go\nfunc main() {}", content)
	})

	t.Run("Indexed", func(t *testing.T) {
		got := s.GetArtifact(artifact.ID)
		require.NotNil(t, got)
		assert.Equal(t, "coder_agent", got.Producer)
		assert.Equal(t, "task_1_x", got.ParentArtifactID())
	})

	t.Run("UniqueIDs", func(t *testing.T) {
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
				Type:     types.ArtifactTypeUserTask,
				Producer: "planner",
				Content:  "task description here",
			})
			require.NoError(t, err)
			require.False(t, seen[a.ID], "duplicate id %s", a.ID)
			seen[a.ID] = true
		}
	})

	t.Run("InvalidContentStillStored", func(t *testing.T) {
		a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type:     types.ArtifactTypeCode,
			Producer: "coder_agent",
			Content:  "",
		})
		require.NoError(t, err, "plain store path never validates")
		assert.NotNil(t, s.GetArtifact(a.ID))
	})
}

// TestStoreValidatedArtifact tests the validated write path
func TestStoreValidatedArtifact(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	t.Run("RejectsInvalid", func(t *testing.T) {
		before := s.index.Count()
		_, err := s.StoreValidatedArtifact(ctx, StoreArtifactOptions{
			Type:     types.ArtifactTypeCode,
			Producer: "coder_agent",
			Content:  "",
		}, nil)

		require.Error(t, err)
		assert.Equal(t, types.ErrValidationFailed, types.GetErrorCode(err))
		assert.Equal(t, before, s.index.Count(), "nothing may be persisted on rejection")
	})

	t.Run("AcceptsValid", func(t *testing.T) {
		artifact, err := s.StoreValidatedArtifact(ctx, StoreArtifactOptions{
			Type:     types.ArtifactTypeCode,
			Producer: "coder_agent",
			Content:  "func main() {}",
		}, nil)
		require.NoError(t, err)
		assert.NotNil(t, s.GetArtifact(artifact.ID))
	})
}

// TestUpdateArtifact tests the mutation path
func TestUpdateArtifact(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	stored, err := s.StoreArtifact(ctx, StoreArtifactOptions{
		Type:     types.ArtifactTypeCode,
		Producer: "coder_agent",
		Content:  "func main() {}",
		Metadata: map[string]any{"attempt": 1},
	})
	require.NoError(t, err)

	t.Run("ContentBumpsVersion", func(t *testing.T) {
		newContent := "// File: app.go\nfunc run() {}"
		updated, err := s.UpdateArtifact(ctx, stored.ID, UpdateOptions{Content: &newContent})
		require.NoError(t, err)

		assert.Equal(t, 2, updated.Version)
		assert.Equal(t, stored.ContentRef, updated.ContentRef, "content ref stays id-keyed")
		assert.Equal(t, "Code for app.go", updated.Summary.Brief)

		content, err := s.LoadArtifactContent(ctx, stored.ID)
		require.NoError(t, err)
		assert.Equal(t, newContent, content)
	})

	t.Run("MetadataMergesShallow", func(t *testing.T) {
		updated, err := s.UpdateArtifact(ctx, stored.ID, UpdateOptions{
			Metadata: map[string]any{"reviewed": true},
		})
		require.NoError(t, err)

		assert.Equal(t, 2, updated.Version, "metadata-only update must not bump version")
		assert.Equal(t, true, updated.Metadata["reviewed"])
		assert.NotNil(t, updated.Metadata["attempt"], "existing keys survive the merge")
	})

	t.Run("UpdateStatus", func(t *testing.T) {
		updated, err := s.UpdateStatus(ctx, stored.ID, types.StatusCompleted)
		require.NoError(t, err)
		assert.Equal(t, types.StatusCompleted, updated.Status)
		assert.Equal(t, 2, updated.Version)

		got := s.GetArtifact(stored.ID)
		require.NotNil(t, got)
		assert.Equal(t, types.StatusCompleted, got.Status)
	})

	t.Run("UnknownID", func(t *testing.T) {
		_, err := s.UpdateArtifact(ctx, "code_0_missing0", UpdateOptions{})
		require.Error(t, err)
		assert.Equal(t, types.ErrArtifactNotFound, types.GetErrorCode(err))
		assert.Contains(t, err.Error(), "code_0_missing0")
	})
}

// TestQueryArtifacts tests index-backed filtering
func TestQueryArtifacts(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	// 固定递增时钟保证创建顺序可断言
	var tick int64 = 1_700_000_000_000
	s.now = func() time.Time {
		tick += 10
		return time.UnixMilli(tick)
	}

	task, _ := s.StoreArtifact(ctx, StoreArtifactOptions{
		Type: types.ArtifactTypeUserTask, Producer: "user", Content: "build the thing properly",
	})
	var codeIDs []string
	for i := 0; i < 3; i++ {
		a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type:     types.ArtifactTypeCode,
			Producer: fmt.Sprintf("coder_%d", i%2),
			Content:  "func main() {}",
			Metadata: map[string]any{"parent_artifact_id": task.ID},
		})
		require.NoError(t, err)
		codeIDs = append(codeIDs, a.ID)
	}

	t.Run("ByType", func(t *testing.T) {
		got := s.GetArtifactsByType(types.ArtifactTypeCode)
		require.Len(t, got, 3)
		for i, a := range got {
			assert.Equal(t, codeIDs[i], a.ID, "creation order must be preserved")
		}
	})

	t.Run("ByProducer", func(t *testing.T) {
		assert.Len(t, s.GetArtifactsByProducer("coder_0"), 2)
		assert.Len(t, s.GetArtifactsByProducer("coder_1"), 1)
	})

	t.Run("ByStatus", func(t *testing.T) {
		assert.Len(t, s.GetArtifactsByStatus(types.StatusInProgress), 4)
		assert.Empty(t, s.GetArtifactsByStatus(types.StatusApproved))
	})

	t.Run("ByParent", func(t *testing.T) {
		got := s.QueryArtifacts(QueryOptions{ParentArtifactID: task.ID})
		assert.Len(t, got, 3)
	})

	t.Run("CombinedFilters", func(t *testing.T) {
		got := s.QueryArtifacts(QueryOptions{
			Type:     types.ArtifactTypeCode,
			Producer: "coder_0",
		})
		assert.Len(t, got, 2)
	})

	t.Run("Pagination", func(t *testing.T) {
		page := s.QueryArtifacts(QueryOptions{Type: types.ArtifactTypeCode, Limit: 2})
		assert.Len(t, page, 2)

		rest := s.QueryArtifacts(QueryOptions{Type: types.ArtifactTypeCode, Offset: 2})
		assert.Len(t, rest, 1)

		assert.Empty(t, s.QueryArtifacts(QueryOptions{Offset: 100}))
	})
}

// TestIndexRebuild tests that a fresh facade over the same directory
// reconstructs the index from persisted metadata
func TestIndexRebuild(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	persist, err := storage.NewFileStore(dir, nil)
	require.NoError(t, err)
	first, err := NewStore(ctx, persist, nil, nil, Options{})
	require.NoError(t, err)

	a, err := first.StoreArtifact(ctx, StoreArtifactOptions{
		Type: types.ArtifactTypeDocumentation, Producer: "documenter", Content: "# Docs\nbody",
	})
	require.NoError(t, err)
	require.NoError(t, first.Close())

	reopened, err := NewStore(ctx, persist, nil, nil, Options{})
	require.NoError(t, err)
	defer reopened.Close()

	got := reopened.GetArtifact(a.ID)
	require.NotNil(t, got, "index must be rebuilt from disk")
	assert.Equal(t, "documenter", got.Producer)

	content, err := reopened.LoadArtifactContent(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Docs\nbody", content)
}

// TestLoadArtifactContent tests cache fallback and not-found semantics
func TestLoadArtifactContent(t *testing.T) {
	s := newTestStore(t, Options{MaxCacheSize: 2})
	ctx := context.Background()

	t.Run("EvictedContentReloadsFromDisk", func(t *testing.T) {
		var ids []string
		for i := 0; i < 3; i++ {
			a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
				Type:     types.ArtifactTypeCode,
				Producer: "coder_agent",
				Content:  fmt.Sprintf("content %d", i),
			})
			require.NoError(t, err)
			ids = append(ids, a.ID)
		}

		// 容量 2,最早的条目已被逐出,仍须能从磁盘读回
		for i, id := range ids {
			content, err := s.LoadArtifactContent(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, fmt.Sprintf("content %d", i), content)
		}
	})

	t.Run("MissingArtifact", func(t *testing.T) {
		_, err := s.LoadArtifactContent(ctx, "nope")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

// TestValidateBeforeDownstreamFacade tests the consumption gate wiring
func TestValidateBeforeDownstreamFacade(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	t.Run("ValidPasses", func(t *testing.T) {
		a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "func main() {}",
		})
		require.NoError(t, err)
		assert.NoError(t, s.ValidateBeforeDownstream(ctx, a.ID))
	})

	t.Run("InvalidBlocked", func(t *testing.T) {
		a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "",
		})
		require.NoError(t, err)

		err = s.ValidateBeforeDownstream(ctx, a.ID)
		require.Error(t, err)
		assert.Equal(t, types.ErrValidationFailed, types.GetErrorCode(err))
	})

	t.Run("MissingArtifact", func(t *testing.T) {
		err := s.ValidateBeforeDownstream(ctx, "ghost")
		require.Error(t, err)
		assert.Equal(t, types.ErrArtifactNotFound, types.GetErrorCode(err))
	})
}

// TestArchiveAndDelete tests lifecycle management through the facade
func TestArchiveAndDelete(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	t.Run("Archive", func(t *testing.T) {
		// 用回拨时钟制造旧产物
		past := time.Now().Add(-48 * time.Hour)
		s.now = func() time.Time { return past }

		old, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "old stuff",
		})
		require.NoError(t, err)
		_, err = s.UpdateStatus(ctx, old.ID, types.StatusCompleted)
		require.NoError(t, err)

		s.now = time.Now
		fresh, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "fresh stuff",
		})
		require.NoError(t, err)
		_, err = s.UpdateStatus(ctx, fresh.ID, types.StatusCompleted)
		require.NoError(t, err)

		result, err := s.ArchiveOldArtifacts(ctx, storage.ArchiveOptions{OlderThan: 24 * time.Hour})
		require.NoError(t, err)

		assert.Equal(t, 1, result.ArchivedCount)
		assert.Equal(t, []string{old.ID}, result.ArchivedIDs)
		assert.Nil(t, s.GetArtifact(old.ID), "archived artifacts leave the index")
		assert.NotNil(t, s.GetArtifact(fresh.ID))

		_, err = s.LoadArtifactContent(ctx, old.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "to delete",
		})
		require.NoError(t, err)

		require.NoError(t, s.DeleteArtifact(ctx, a.ID))
		assert.Nil(t, s.GetArtifact(a.ID))

		_, err = s.LoadArtifactContent(ctx, a.ID)
		assert.ErrorIs(t, err, storage.ErrNotFound)

		err = s.DeleteArtifact(ctx, a.ID)
		require.Error(t, err)
		assert.Equal(t, types.ErrArtifactNotFound, types.GetErrorCode(err))
	})
}

// TestArchiveDefaultCutoff tests the configured fallback archive age
func TestArchiveDefaultCutoff(t *testing.T) {
	s := newTestStore(t, Options{ArchiveOlderThan: 24 * time.Hour})
	ctx := context.Background()

	past := time.Now().Add(-48 * time.Hour)
	s.now = func() time.Time { return past }
	old, err := s.StoreArtifact(ctx, StoreArtifactOptions{
		Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "old stuff",
	})
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, old.ID, types.StatusCompleted)
	require.NoError(t, err)

	s.now = time.Now
	fresh, err := s.StoreArtifact(ctx, StoreArtifactOptions{
		Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "fresh stuff",
	})
	require.NoError(t, err)
	_, err = s.UpdateStatus(ctx, fresh.ID, types.StatusCompleted)
	require.NoError(t, err)

	// 批次未指定年龄阈值,使用配置的默认值
	result, err := s.ArchiveOldArtifacts(ctx, storage.ArchiveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{old.ID}, result.ArchivedIDs)
	assert.NotNil(t, s.GetArtifact(fresh.ID), "fresh artifacts stay inside the default age")
}

// flakyStore 包装真实持久层,按开关注入 I/O 故障
type flakyStore struct {
	storage.Store
	failSaves bool
	failLoads bool
}

var errDiskFull = errors.New("disk full")

func (f *flakyStore) SaveMetadata(ctx context.Context, artifact *types.Artifact) error {
	if f.failSaves {
		return errDiskFull
	}
	return f.Store.SaveMetadata(ctx, artifact)
}

func (f *flakyStore) SaveContent(ctx context.Context, id, content string) (storage.ContentInfo, error) {
	if f.failSaves {
		return storage.ContentInfo{}, errDiskFull
	}
	return f.Store.SaveContent(ctx, id, content)
}

func (f *flakyStore) LoadContent(ctx context.Context, contentRef string) (string, error) {
	if f.failLoads {
		return "", errDiskFull
	}
	return f.Store.LoadContent(ctx, contentRef)
}

// TestStorageFailureSurfaced tests structured codes on persistence I/O
// failures, distinct from the not-found sentinel
func TestStorageFailureSurfaced(t *testing.T) {
	persist, err := storage.NewFileStore(t.TempDir(), nil)
	require.NoError(t, err)
	flaky := &flakyStore{Store: persist}

	s, err := NewStore(context.Background(), flaky, nil, nil, Options{})
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	t.Run("StoreArtifact", func(t *testing.T) {
		flaky.failSaves = true
		defer func() { flaky.failSaves = false }()

		_, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "x",
		})
		require.Error(t, err)
		assert.Equal(t, types.ErrStorageFailure, types.GetErrorCode(err))
		assert.ErrorIs(t, err, errDiskFull, "the cause must stay unwrappable")
	})

	t.Run("UpdateArtifact", func(t *testing.T) {
		a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "x",
		})
		require.NoError(t, err)

		flaky.failSaves = true
		defer func() { flaky.failSaves = false }()

		_, err = s.UpdateStatus(ctx, a.ID, types.StatusCompleted)
		require.Error(t, err)
		assert.Equal(t, types.ErrStorageFailure, types.GetErrorCode(err))
	})

	t.Run("LoadContent", func(t *testing.T) {
		a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
			Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "x",
		})
		require.NoError(t, err)
		require.NoError(t, s.cache.Clear(ctx))

		flaky.failLoads = true
		defer func() { flaky.failLoads = false }()

		_, err = s.LoadArtifactContent(ctx, a.ID)
		require.Error(t, err)
		assert.Equal(t, types.ErrStorageFailure, types.GetErrorCode(err))
		assert.NotErrorIs(t, err, storage.ErrNotFound)
	})
}

// TestStoreAuxiliary tests summaries, stats, clear and hash helpers
func TestStoreAuxiliary(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	_, err := s.StoreArtifact(ctx, StoreArtifactOptions{
		Type: types.ArtifactTypeImplementationPlan, Producer: "planner", Content: "# Plan\n## Steps",
	})
	require.NoError(t, err)
	_, err = s.StoreArtifact(ctx, StoreArtifactOptions{
		Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "func main() {}",
	})
	require.NoError(t, err)

	t.Run("GetAllSummaries", func(t *testing.T) {
		summaries, err := s.GetAllSummaries(ctx)
		require.NoError(t, err)
		assert.Len(t, summaries, 2)
	})

	t.Run("StorageStats", func(t *testing.T) {
		stats, err := s.GetStorageStats(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.TotalArtifacts)
		assert.Positive(t, stats.TotalContentBytes)
	})

	t.Run("ValidatorAccess", func(t *testing.T) {
		require.NotNil(t, s.Validator())

		noop := func(input validate.RuleInput) (*types.ValidationIssue, error) { return nil, nil }
		require.NoError(t, s.AddValidationRule(&validate.Rule{ID: "r", Enabled: true, Check: noop}))
		assert.True(t, s.RemoveValidationRule("r"))

		stats := s.GetValidationStatistics()
		assert.Zero(t, stats.TotalValidations)
	})

	t.Run("ComputeContentHash", func(t *testing.T) {
		assert.Equal(t,
			"ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad",
			s.ComputeContentHash("abc"))
	})

	t.Run("Clear", func(t *testing.T) {
		require.NoError(t, s.Clear(ctx))
		assert.Zero(t, s.index.Count())
		summaries, err := s.GetAllSummaries(ctx)
		require.NoError(t, err)
		assert.Empty(t, summaries)
	})
}

// TestConcurrentUpdates tests that per-id serialization keeps versions
// strictly monotonic under concurrency
func TestConcurrentUpdates(t *testing.T) {
	s := newTestStore(t, Options{})
	ctx := context.Background()

	a, err := s.StoreArtifact(ctx, StoreArtifactOptions{
		Type: types.ArtifactTypeCode, Producer: "coder_agent", Content: "v0",
	})
	require.NoError(t, err)

	const workers = 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			content := fmt.Sprintf("revision %d", i)
			_, err := s.UpdateArtifact(ctx, a.ID, UpdateOptions{Content: &content})
			errs <- err
		}(i)
	}
	for i := 0; i < workers; i++ {
		require.NoError(t, <-errs)
	}

	final, err := s.persist.LoadMetadata(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1+workers, final.Version, "every content update must bump the version exactly once")
}

// TestErrorsIgnored ensures the not-found sentinel survives wrapping
func TestErrorsIgnored(t *testing.T) {
	s := newTestStore(t, Options{})

	_, err := s.LoadArtifactContent(context.Background(), "absent")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
